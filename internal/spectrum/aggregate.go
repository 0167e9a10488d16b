package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Aggregator accumulates channel readings across scan records and reduces them
// to a mean temperature per frequency bin. Readings are keyed by channel index,
// frequencies are derived from the layout only when the mean is computed.
type Aggregator struct {
	layout   *Layout
	readings [][]float64 // indexed by channel
	lines    int
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Add accumulates the readings of a single record. The first record fixes the
// layout; every later record must describe the same bins.
func (a *Aggregator) Add(r *ScanRecord) error {
	if r == nil {
		return fmt.Errorf("cannot add nil record")
	}

	l := Layout{
		StartFrequency: r.StartFrequency,
		Spacing:        r.Spacing,
		Channels:       len(r.Readings),
	}

	if a.layout == nil {
		if l.Channels == 0 {
			return fmt.Errorf("record has no readings")
		}
		a.layout = &l
		a.readings = make([][]float64, l.Channels)
	} else if !a.layout.Same(l) {
		return fmt.Errorf("%w: have %s, got %s", ErrLayoutChanged, a.layout, l)
	}

	for k, v := range r.Readings {
		a.readings[k] = append(a.readings[k], v)
	}
	a.lines++

	return nil
}

// Lines returns the number of records aggregated so far.
func (a *Aggregator) Lines() int {
	return a.lines
}

// Layout returns the layout fixed by the first record, or false if no record
// has been added yet.
func (a *Aggregator) Layout() (Layout, bool) {
	if a.layout == nil {
		return Layout{}, false
	}
	return *a.layout, true
}

// Mean reduces the accumulated readings to the mean spectrum, in channel order.
func (a *Aggregator) Mean() (Series, error) {
	if a.layout == nil {
		return nil, ErrNoData
	}

	means := make(Series, len(a.readings))
	for k, values := range a.readings {
		freq := a.layout.Frequency(k)
		if len(values) == 0 {
			return nil, &EmptyBinError{Bin: k, Frequency: freq}
		}
		means[k] = Point{
			Frequency:   freq,
			Temperature: floats.Sum(values) / float64(len(values)),
		}
	}
	return means, nil
}
