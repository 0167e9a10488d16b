package radiometer

import (
	"errors"
	"fmt"
)

// ErrNotFinite is the cause of a MalformedLineError for NaN and infinite values.
var ErrNotFinite = errors.New("value is not finite")

// MalformedLineError is returned for a data line that does not match the
// expected field layout.
type MalformedLineError struct {
	Line   int    // 1-based line number in the source
	Field  int    // Offending field index, -1 when the field count is wrong
	Fields int    // Number of fields found on the line
	Want   int    // Minimum number of fields required
	Value  string // Offending field value
	Err    error  // Underlying parse error, if any
}

func (e *MalformedLineError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("line %d: malformed record: expected at least %d fields, got %d", e.Line, e.Want, e.Fields)
	}
	return fmt.Sprintf("line %d: malformed record: field %d: invalid value %q: %s", e.Line, e.Field, e.Value, e.Err)
}

func (e *MalformedLineError) Unwrap() error {
	return e.Err
}
