// Package radiometer reads line-oriented radiometer log files.
//
// A data line is a whitespace separated list of fields:
//
//	timestamp | elevation | azimuth | offset | offset | start frequency (MHz) |
//	spacing (MHz) | mode | channel count | ... | temperatures (K)
//
// Temperatures start at a fixed field offset. Lines starting with the comment
// marker are headers and are ignored.
package radiometer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/roman-kulish/radiometer/internal/spectrum"
)

const (
	// CommentMarker starts a header or comment line.
	CommentMarker = '*'

	fieldTimestamp = 0
	fieldElevation = 1
	fieldAzimuth   = 2
	fieldStartFreq = 5
	fieldSpacing   = 6

	// MinTempOffset is the number of leading metadata fields the reader
	// interprets. Temperatures cannot start before it.
	MinTempOffset = fieldSpacing + 1

	maxLineSize = 1 << 20
)

// Option configures a Reader.
type Option func(*Reader)

// WithChannels sets the number of temperature readings per line.
func WithChannels(n int) Option {
	return func(r *Reader) {
		r.channels = n
	}
}

// WithTempOffset sets the field index of the first temperature reading.
func WithTempOffset(n int) Option {
	return func(r *Reader) {
		r.tempOffset = n
	}
}

// WithCommentMarker overrides the byte that marks comment lines.
func WithCommentMarker(b byte) Option {
	return func(r *Reader) {
		r.marker = b
	}
}

// WithLogger sets the logger for the reader
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger.With(slog.String("component", "radiometer"))
	}
}

// Reader iterates over the scan records of a radiometer log. It is not safe
// for concurrent use and cannot be restarted; create a new Reader over a
// reopened source instead.
type Reader struct {
	scanner *bufio.Scanner
	logger  *slog.Logger

	channels   int
	tempOffset int
	marker     byte

	layout   *spectrum.Layout // fixed by the first data line
	current  *spectrum.ScanRecord
	lineNo   int
	lines    int
	comments int
	err      error
}

// NewReader creates a new Reader over src with a discard logger
func NewReader(src io.Reader, options ...Option) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	r := Reader{
		scanner:    scanner,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		channels:   spectrum.DefaultChannels,
		tempOffset: spectrum.DefaultTempOffset,
		marker:     CommentMarker,
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Next advances to the next data record. It returns false at the end of the
// input or on the first error; check Error to tell them apart.
func (r *Reader) Next(ctx context.Context) bool {
	if r.err != nil {
		return false
	}
	if r.channels <= 0 {
		r.err = fmt.Errorf("invalid channel count: %d", r.channels)
		return false
	}
	if r.tempOffset < MinTempOffset {
		r.err = fmt.Errorf("invalid temperature offset: %d, must be at least %d", r.tempOffset, MinTempOffset)
		return false
	}

	for r.scanner.Scan() {
		select {
		case <-ctx.Done():
			r.err = ctx.Err()
			return false
		default:
		}

		r.lineNo++
		line := r.scanner.Text()

		if len(line) > 0 && line[0] == r.marker {
			r.comments++
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		record, err := r.parse(fields)
		if err != nil {
			r.err = err
			return false
		}

		r.current = record
		r.lines++
		return true
	}
	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("reading line %d: %w", r.lineNo+1, err)
	}

	r.current = nil
	return false
}

// Current returns the record read by the last successful call to Next.
func (r *Reader) Current() *spectrum.ScanRecord {
	return r.current
}

// Error returns the error that stopped the iteration, if any.
func (r *Reader) Error() error {
	return r.err
}

// Layout returns the frequency layout fixed by the first data line.
func (r *Reader) Layout() (spectrum.Layout, bool) {
	if r.layout == nil {
		return spectrum.Layout{}, false
	}
	return *r.layout, true
}

// Lines returns the number of data lines read so far.
func (r *Reader) Lines() int {
	return r.lines
}

// Comments returns the number of comment lines skipped so far.
func (r *Reader) Comments() int {
	return r.comments
}

func (r *Reader) parse(fields []string) (*spectrum.ScanRecord, error) {
	want := r.tempOffset + r.channels
	if len(fields) < want {
		return nil, &MalformedLineError{Line: r.lineNo, Field: -1, Fields: len(fields), Want: want}
	}

	record := spectrum.ScanRecord{
		Timestamp: fields[fieldTimestamp],
		Readings:  make([]float64, r.channels),
	}

	header := []struct {
		index int
		dst   *float64
	}{
		{fieldElevation, &record.Elevation},
		{fieldAzimuth, &record.Azimuth},
		{fieldStartFreq, &record.StartFrequency},
		{fieldSpacing, &record.Spacing},
	}
	for _, h := range header {
		v, err := r.parseField(fields, h.index, want)
		if err != nil {
			return nil, err
		}
		*h.dst = v
	}

	if err := r.checkLayout(&record); err != nil {
		return nil, err
	}

	for k := range record.Readings {
		v, err := r.parseField(fields, r.tempOffset+k, want)
		if err != nil {
			return nil, err
		}
		record.Readings[k] = v
	}

	return &record, nil
}

func (r *Reader) parseField(fields []string, index, want int) (float64, error) {
	v, err := strconv.ParseFloat(fields[index], 64)
	if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
		err = ErrNotFinite
	}
	if err != nil {
		return 0, &MalformedLineError{
			Line:   r.lineNo,
			Field:  index,
			Fields: len(fields),
			Want:   want,
			Value:  fields[index],
			Err:    err,
		}
	}
	return v, nil
}

func (r *Reader) checkLayout(record *spectrum.ScanRecord) error {
	l := spectrum.Layout{
		StartFrequency: record.StartFrequency,
		Spacing:        record.Spacing,
		Channels:       r.channels,
		TempOffset:     r.tempOffset,
	}

	if r.layout == nil {
		if l.Spacing == 0 {
			return fmt.Errorf("line %d: zero channel spacing", r.lineNo)
		}
		r.layout = &l
		r.logger.Debug("frequency layout detected",
			slog.Int("line", r.lineNo),
			slog.Float64("startFreq", l.StartFrequency),
			slog.Float64("spacing", l.Spacing),
			slog.Int("channels", l.Channels))
		return nil
	}

	if !r.layout.Same(l) {
		return fmt.Errorf("line %d: %w: have %s, got %s", r.lineNo, spectrum.ErrLayoutChanged, r.layout, l)
	}
	return nil
}
