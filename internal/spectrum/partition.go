package spectrum

// Cutoffs defines how many samples at each end of a spectrum are treated as
// out-of-band noise reference. They are counts, not indices: the sample at
// index Low is the first interior sample, and zero cutoffs leave the whole
// spectrum interior.
type Cutoffs struct {
	Low  int `yaml:"low"`  // Number of leading samples
	High int `yaml:"high"` // Number of trailing samples
}

func (c Cutoffs) Validate() error {
	if c.Low < 0 {
		return &InvalidThresholdError{Name: "low", Value: c.Low}
	}
	if c.High < 0 {
		return &InvalidThresholdError{Name: "high", Value: c.High}
	}
	return nil
}

// Partition splits a series by index position into the interior samples
// [Low, N-High) and the edge samples [0, Low) and [N-High, N). Both results
// keep the input order. When the cutoffs cover the whole series the interior
// is empty and every sample is an edge sample.
func Partition(s Series, c Cutoffs) (interior, edge Series, err error) {
	if err = c.Validate(); err != nil {
		return nil, nil, err
	}

	n := len(s)
	lo := min(c.Low, n)
	hi := max(n-c.High, lo)

	interior = make(Series, 0, hi-lo)
	interior = append(interior, s[lo:hi]...)

	edge = make(Series, 0, n-len(interior))
	edge = append(edge, s[:lo]...)
	edge = append(edge, s[hi:]...)

	return interior, edge, nil
}
