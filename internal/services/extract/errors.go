package extract

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned when the declared extension is not one of
// the supported document formats.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractionError wraps a format reader failure for a malformed file,
// carrying the filename for diagnostics.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
