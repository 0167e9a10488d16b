package spectrum

import "fmt"

const (
	// DefaultChannels is the number of temperature readings carried by every data line.
	DefaultChannels = 135

	// DefaultTempOffset is the index of the first temperature field on a data line.
	DefaultTempOffset = 20
)

// Layout describes how channel readings of a log file map onto frequencies.
// It is fixed by the first data line of a file.
type Layout struct {
	StartFrequency float64 // Frequency of channel 0 in MHz
	Spacing        float64 // Distance between adjacent channels in MHz
	Channels       int     // Number of readings per line
	TempOffset     int     // Field index of the first reading
}

// Frequency returns the frequency in MHz of channel k.
func (l Layout) Frequency(k int) float64 {
	return l.StartFrequency + float64(k)*l.Spacing
}

// MinFields returns the minimum number of fields a data line must have.
func (l Layout) MinFields() int {
	return l.TempOffset + l.Channels
}

// Same reports whether two layouts describe the same set of frequency bins.
func (l Layout) Same(o Layout) bool {
	return l.StartFrequency == o.StartFrequency && l.Spacing == o.Spacing && l.Channels == o.Channels
}

func (l Layout) String() string {
	return fmt.Sprintf("start=%gMHz spacing=%gMHz channels=%d", l.StartFrequency, l.Spacing, l.Channels)
}

// ScanRecord represents one parsed data line of a radiometer log.
type ScanRecord struct {
	Timestamp      string    // Opaque timestamp field, not interpreted
	Elevation      float64   // Antenna elevation in degrees
	Azimuth        float64   // Antenna azimuth in degrees
	StartFrequency float64   // Frequency of the first channel in MHz
	Spacing        float64   // Channel spacing in MHz
	Readings       []float64 // Channel temperatures in Kelvin, ordered by channel index
}

// Point is a single temperature value at a frequency.
type Point struct {
	Frequency   float64 // MHz
	Temperature float64 // Kelvin
}

// Series is an ordered sequence of points. Order is significant and is never
// changed by any operation in this module.
type Series []Point

func (s Series) Len() int {
	return len(s)
}

// Frequencies returns the frequency column of the series.
func (s Series) Frequencies() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Frequency
	}
	return out
}

// Temperatures returns the temperature column of the series.
func (s Series) Temperatures() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Temperature
	}
	return out
}
