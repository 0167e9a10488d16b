package app

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roman-kulish/radiometer/internal/pipeline"
)

func Run(ctx context.Context, config *Config, stdout io.Writer, logger *slog.Logger) (err error) {
	if _, err = os.Stat(config.InputFile); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("input file '%s' does not exist: %w", config.InputFile, err)
	}

	in, err := os.Open(config.InputFile)
	if err != nil {
		return fmt.Errorf("opening input file: %w", err)
	}
	defer in.Close()

	logger.Info("reading radiometer log",
		slog.String("input", config.InputFile),
		slog.Group("cutoffs",
			slog.Int("low", config.Pipeline.Cutoffs.Low),
			slog.Int("high", config.Pipeline.Cutoffs.High)),
		slog.Int("degree", config.Pipeline.Degree))

	res, err := pipeline.Run(ctx, in, config.Pipeline, logger)
	if err != nil {
		return err
	}

	if err = printSummary(stdout, res, config.Settings.Quiet); err != nil {
		return fmt.Errorf("printing summary: %w", err)
	}

	if config.Settings.MetricsFile != "" {
		metrics := newRunMetrics()
		metrics.observe(res)
		if err = metrics.writeTextfile(config.Settings.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		logger.Debug("metrics written", slog.String("path", config.Settings.MetricsFile))
	}

	return renderChart(config, res, logger)
}

func renderChart(config *Config, res *pipeline.Result, logger *slog.Logger) (err error) {
	renderer, err := NewChartRenderer(RenderConfig{
		Width:  config.Chart.Width,
		Height: config.Chart.Height,
	})
	if err != nil {
		return fmt.Errorf("creating chart renderer: %w", err)
	}

	data := chartData(config, res)

	logger.Info("rendering chart",
		slog.Group("image",
			slog.String("destination", config.Chart.OutputFile),
			slog.Int("width", config.Chart.Width),
			slog.Int("height", config.Chart.Height),
			slog.Int("series", len(data.Series)),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}

	out, err := os.Create(config.Chart.OutputFile)
	if err != nil {
		return err
	}
	defer closeWithError(out, &err)

	return png.Encode(out, img)
}

// chartData selects the series to draw. Corrected views and the noise curve
// exist only when a noise model was fitted.
func chartData(config *Config, res *pipeline.Result) *ChartData {
	data := &ChartData{
		Title: fmt.Sprintf("%s: %s", filepath.Base(config.InputFile), res.Layout),
		Info:  fmt.Sprintf("%d lines, %d bins", res.Lines, len(res.Mean)),
		Series: []ChartSeries{
			{Name: "Unfiltered", Color: colorUnfiltered, Points: res.Mean},
		},
	}

	if !res.Corrected() {
		return data
	}

	data.Info += fmt.Sprintf(", noise model degree %d, RMS %.4f K", res.Model.Degree(), res.Model.RMS())
	data.Series = append(data.Series,
		ChartSeries{Name: "Corrected (full)", Color: colorCorrectedFull, Points: res.CorrectedFull},
		ChartSeries{Name: "Corrected (interior)", Color: colorCorrectedInterior, Points: res.CorrectedInterior},
	)
	if config.Chart.ShowNoise {
		data.Series = append(data.Series,
			ChartSeries{Name: "Noise floor", Color: colorNoiseFloor, Points: res.NoiseFloor})
	}
	return data
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
