package app

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/radiometer/internal/pipeline"
)

// printSummary writes the line count, the per-frequency table and the fitted
// noise model to w.
func printSummary(w io.Writer, res *pipeline.Result, quiet bool) error {
	if _, err := fmt.Fprintf(w, "%s lines of data found.\n", humanize.Comma(int64(res.Lines))); err != nil {
		return err
	}

	if !quiet {
		if err := printTable(w, res); err != nil {
			return fmt.Errorf("printing mean table: %w", err)
		}
	}

	if !res.Corrected() {
		_, err := fmt.Fprintln(w, "No edge samples selected, spectrum left uncorrected.")
		return err
	}

	coef := res.Model.Coefficients()
	terms := make([]string, len(coef))
	for i, c := range coef {
		terms[i] = fmt.Sprintf("%.6g", c)
	}

	_, err := fmt.Fprintf(w, "Noise model: degree %d over %d edge samples, coefficients [%s], RMS %.4f K\n",
		res.Model.Degree(), res.Model.Points(), strings.Join(terms, ", "), res.Model.RMS())
	return err
}

func printTable(w io.Writer, res *pipeline.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := "Frequency\tMean Temperature (K)\t"
	if res.Corrected() {
		header += "Corrected (K)\t"
	}
	fmt.Fprintln(tw, header)

	for i, p := range res.Mean {
		row := fmt.Sprintf("%s\t%.3f\t", humanize.SIWithDigits(p.Frequency*1e6, 4, "Hz"), p.Temperature)
		if res.Corrected() {
			row += fmt.Sprintf("%.3f\t", res.CorrectedFull[i].Temperature)
		}
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}
