// Package pipeline runs the parse, aggregate, threshold, fit and correct stages
// over a single radiometer log.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roman-kulish/radiometer/internal/baseline"
	"github.com/roman-kulish/radiometer/internal/radiometer"
	"github.com/roman-kulish/radiometer/internal/spectrum"
)

// Result holds every intermediate and final series of a run.
type Result struct {
	Lines    int             // Valid data lines aggregated
	Comments int             // Comment lines skipped
	Layout   spectrum.Layout // Frequency layout of the log

	Mean     spectrum.Series // Mean temperature per frequency bin
	Interior spectrum.Series // In-band samples
	Edge     spectrum.Series // Out-of-band samples used for the noise model

	// Set only when edge samples were selected.
	Model             *baseline.Model
	NoiseFloor        spectrum.Series // Model evaluated over the full spectrum
	CorrectedInterior spectrum.Series
	CorrectedFull     spectrum.Series
}

// Corrected reports whether a noise model was fitted and applied.
func (r *Result) Corrected() bool {
	return r.Model != nil
}

// Run executes the pipeline over src. Stages run sequentially; the first error
// aborts the run.
func Run(ctx context.Context, src io.Reader, config Config, logger *slog.Logger) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	reader := radiometer.NewReader(src,
		radiometer.WithChannels(config.Channels),
		radiometer.WithTempOffset(config.TempOffset),
		radiometer.WithLogger(logger))

	agg := spectrum.NewAggregator()
	for reader.Next(ctx) {
		if err := agg.Add(reader.Current()); err != nil {
			return nil, fmt.Errorf("aggregating line %d: %w", reader.Lines(), err)
		}
	}
	if err := reader.Error(); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}

	mean, err := agg.Mean()
	if err != nil {
		return nil, fmt.Errorf("computing mean spectrum: %w", err)
	}

	layout, _ := reader.Layout()
	res := Result{
		Lines:    agg.Lines(),
		Comments: reader.Comments(),
		Layout:   layout,
		Mean:     mean,
	}

	logger.Info("mean spectrum computed",
		slog.Int("lines", res.Lines),
		slog.Int("comments", res.Comments),
		slog.Int("bins", len(mean)))

	if res.Interior, res.Edge, err = spectrum.Partition(mean, config.Cutoffs); err != nil {
		return nil, fmt.Errorf("partitioning spectrum: %w", err)
	}

	if !config.FitEnabled() {
		logger.Info("no edge samples selected, skipping noise model")
		return &res, nil
	}

	if res.Model, err = baseline.Fit(res.Edge, config.Degree); err != nil {
		return nil, fmt.Errorf("fitting noise model: %w", err)
	}

	res.NoiseFloor = res.Model.Evaluate(mean)
	res.CorrectedInterior = baseline.Correct(res.Interior, res.Model.Eval)
	res.CorrectedFull = baseline.Correct(mean, res.Model.Eval)

	logger.Info("noise model fitted",
		slog.Int("degree", res.Model.Degree()),
		slog.Int("edgePoints", len(res.Edge)),
		slog.Int("interiorPoints", len(res.Interior)),
		slog.String("rms", fmt.Sprintf("%0.4fK", res.Model.RMS())))

	return &res, nil
}
