package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/roman-kulish/radiometer/internal/baseline"
	"github.com/roman-kulish/radiometer/internal/radiometer"
	"github.com/roman-kulish/radiometer/internal/spectrum"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func dataLine(start, spacing float64, readings ...float64) string {
	fields := []string{"2016:100:12:00:00", "45.0", "180.0", "0", "0",
		fmt.Sprint(start), fmt.Sprint(spacing), "1", fmt.Sprint(len(readings))}
	for len(fields) < spectrum.DefaultTempOffset {
		fields = append(fields, "0")
	}
	for _, r := range readings {
		fields = append(fields, fmt.Sprint(r))
	}
	return strings.Join(fields, " ")
}

func smallConfig(channels int) Config {
	c := DefaultConfig()
	c.Channels = channels
	return c
}

func TestRun_MeanSpectrum(t *testing.T) {
	input := dataLine(1000, 1, 10, 10, 10, 10, 10) + "\n" + dataLine(1000, 1, 12, 12, 12, 12, 12) + "\n"

	res, err := Run(context.Background(), strings.NewReader(input), smallConfig(5), discard)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if res.Lines != 2 {
		t.Errorf("Expected 2 lines, got %d", res.Lines)
	}

	expected := spectrum.Series{{Frequency: 1000, Temperature: 11}, {Frequency: 1001, Temperature: 11}, {Frequency: 1002, Temperature: 11}, {Frequency: 1003, Temperature: 11}, {Frequency: 1004, Temperature: 11}}
	if len(res.Mean) != len(expected) {
		t.Fatalf("Expected %d bins, got %d", len(expected), len(res.Mean))
	}
	for i, p := range expected {
		if res.Mean[i] != p {
			t.Errorf("Bin %d: expected %+v, got %+v", i, p, res.Mean[i])
		}
	}

	if res.Corrected() {
		t.Error("No model expected without cutoffs")
	}
	if len(res.Interior) != len(expected) || len(res.Edge) != 0 {
		t.Errorf("Expected full interior, got %d interior and %d edge", len(res.Interior), len(res.Edge))
	}
}

func TestRun_CommentLinesIgnored(t *testing.T) {
	plain := dataLine(1000, 1, 1, 2, 3) + "\n" + dataLine(1000, 1, 3, 4, 5)
	commented := "*HEADER\n" + dataLine(1000, 1, 1, 2, 3) + "\n* interleaved comment\n" + dataLine(1000, 1, 3, 4, 5)

	a, err := Run(context.Background(), strings.NewReader(plain), smallConfig(3), discard)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := Run(context.Background(), strings.NewReader(commented), smallConfig(3), discard)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if a.Lines != b.Lines {
		t.Errorf("Comment lines changed line count: %d vs %d", a.Lines, b.Lines)
	}
	if b.Comments != 2 {
		t.Errorf("Expected 2 comments, got %d", b.Comments)
	}
	for i := range a.Mean {
		if a.Mean[i] != b.Mean[i] {
			t.Errorf("Bin %d differs: %+v vs %+v", i, a.Mean[i], b.Mean[i])
		}
	}
}

func TestRun_NoiseCorrection(t *testing.T) {
	// Linear noise floor with a bump in the middle channels
	floor := func(f float64) float64 { return 20 + 0.5*(f-1000) }
	readings := make([]float64, 10)
	for k := range readings {
		readings[k] = floor(1000 + float64(k))
	}
	readings[4] += 3
	readings[5] += 5

	config := smallConfig(10)
	config.Cutoffs = spectrum.Cutoffs{Low: 3, High: 3}
	config.Degree = 1

	input := dataLine(1000, 1, readings...)
	res, err := Run(context.Background(), strings.NewReader(input), config, discard)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !res.Corrected() {
		t.Fatal("Expected a noise model")
	}
	if len(res.Interior) != 4 || len(res.Edge) != 6 {
		t.Fatalf("Expected 4 interior and 6 edge points, got %d and %d", len(res.Interior), len(res.Edge))
	}
	if len(res.CorrectedFull) != len(res.Mean) || len(res.NoiseFloor) != len(res.Mean) {
		t.Errorf("Corrected full view and noise floor must cover the whole spectrum")
	}

	expected := []float64{0, 3, 5, 0}
	for i, want := range expected {
		got := res.CorrectedInterior[i]
		if got.Frequency != res.Interior[i].Frequency {
			t.Errorf("Interior point %d: frequency changed", i)
		}
		if math.Abs(got.Temperature-want) > 1e-9 {
			t.Errorf("Interior point %d: expected %v, got %v", i, want, got.Temperature)
		}
	}
}

func TestRun_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		config func(*Config)
		check  func(error) bool
	}{
		{
			name:  "insufficient edge points",
			input: dataLine(1000, 1, 1, 2, 3, 4, 5),
			config: func(c *Config) {
				c.Cutoffs = spectrum.Cutoffs{Low: 1, High: 1}
				c.Degree = 3
			},
			check: func(err error) bool {
				var e *baseline.InsufficientDataError
				return errors.As(err, &e)
			},
		},
		{
			name:  "malformed line",
			input: dataLine(1000, 1, 1, 2),
			check: func(err error) bool {
				var e *radiometer.MalformedLineError
				return errors.As(err, &e)
			},
		},
		{
			name:  "no data lines",
			input: "* only a header\n",
			check: func(err error) bool {
				return errors.Is(err, spectrum.ErrNoData)
			},
		},
		{
			name:  "negative cutoff",
			input: dataLine(1000, 1, 1, 2, 3, 4, 5),
			config: func(c *Config) {
				c.Cutoffs.High = -1
			},
			check: func(err error) bool {
				var e *spectrum.InvalidThresholdError
				return errors.As(err, &e)
			},
		},
		{
			name:  "layout changed",
			input: dataLine(1000, 1, 1, 2, 3, 4, 5) + "\n" + dataLine(1010, 1, 1, 2, 3, 4, 5),
			check: func(err error) bool {
				return errors.Is(err, spectrum.ErrLayoutChanged)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := smallConfig(5)
			if tc.config != nil {
				tc.config(&config)
			}

			res, err := Run(context.Background(), strings.NewReader(tc.input), config, discard)
			if err == nil {
				t.Fatalf("Expected error, got result %+v", res)
			}
			if !tc.check(err) {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := DefaultConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("Default config must be valid: %v", err)
	}
	if valid.FitEnabled() {
		t.Error("Default config must not enable fitting")
	}

	testCases := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero channels", func(c *Config) { c.Channels = 0 }},
		{"negative offset", func(c *Config) { c.TempOffset = -1 }},
		{"offset inside metadata", func(c *Config) { c.TempOffset = radiometer.MinTempOffset - 1 }},
		{"negative low cutoff", func(c *Config) { c.Cutoffs.Low = -3 }},
		{"negative degree", func(c *Config) { c.Degree = -1 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.modify(&c)
			if err := c.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
