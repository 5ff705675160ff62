package extract

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat means no decoder applies and the bytes are not readable text.
	ErrUnsupportedFormat = errors.New("cannot extract text from this file type")
	// ErrExtractionFailed is matched by every *ExtractionError.
	ErrExtractionFailed = errors.New("text extraction failed")
)

// ExtractionError reports a decoder failure on malformed input.
type ExtractionError struct {
	Format string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %s", e.Format, e.Reason)
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }

func (e *ExtractionError) Unwrap() error { return e.Err }

func failed(format string, err error) error {
	return &ExtractionError{Format: format, Reason: err.Error(), Err: err}
}

func failedf(format, reason string, args ...any) error {
	return &ExtractionError{Format: format, Reason: fmt.Sprintf(reason, args...)}
}

// recoverAs turns a decoder panic into an ExtractionError stored in *err.
func recoverAs(format string, err *error) {
	if r := recover(); r != nil {
		*err = failedf(format, "malformed document: %v", r)
	}
}
