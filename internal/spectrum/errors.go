package spectrum

import (
	"errors"
	"fmt"
)

// ErrNoData is returned when a spectrum is reduced before any record was added.
var ErrNoData = errors.New("no data records")

// ErrLayoutChanged is returned when a record declares a start frequency, spacing
// or channel count that differs from the one fixed by the first record.
var ErrLayoutChanged = errors.New("frequency layout changed between records")

// EmptyBinError is returned when a frequency bin has no readings at reduction time.
type EmptyBinError struct {
	Bin       int
	Frequency float64
}

func (e *EmptyBinError) Error() string {
	return fmt.Sprintf("frequency bin %d (%g MHz) has no readings", e.Bin, e.Frequency)
}

// InvalidThresholdError is returned for negative edge cutoffs.
type InvalidThresholdError struct {
	Name  string
	Value int
}

func (e *InvalidThresholdError) Error() string {
	return fmt.Sprintf("invalid %s cutoff: %d, must not be negative", e.Name, e.Value)
}
