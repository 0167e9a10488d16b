package baseline

import "github.com/roman-kulish/radiometer/internal/spectrum"

// Correct returns a copy of s with floor(frequency) subtracted from every
// temperature. Frequencies and order are preserved.
func Correct(s spectrum.Series, floor func(frequency float64) float64) spectrum.Series {
	out := make(spectrum.Series, len(s))
	for i, p := range s {
		out[i] = spectrum.Point{
			Frequency:   p.Frequency,
			Temperature: p.Temperature - floor(p.Frequency),
		}
	}
	return out
}
