package smile_request_report

import (
	"errors"
	"fmt"
)

// FileAccessError is returned when the input log cannot be opened or read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("Failed to access log file %q: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// MalformedLineError is returned for a log line with fewer than the expected
// tab-separated columns.
type MalformedLineError struct {
	Line    int
	Columns int
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("Malformed log line %d: expected at least %d columns, got %d", e.Line, minLogColumns, e.Columns)
}

// MalformedJSONError is returned when the request column of a log line, or a
// message payload, is not valid JSON for a request document. Line is 0 for
// message payloads.
type MalformedJSONError struct {
	Line int
	Err  error
}

func (e *MalformedJSONError) Error() string {
	if e.Line <= 0 {
		return fmt.Sprintf("Failed to parse request JSON: %v", e.Err)
	}
	return fmt.Sprintf("Failed to parse request JSON on line %d: %v", e.Line, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// MissingFieldError is returned when a request lacks a mandatory top-level
// field, or a sample that must be reported lacks its igoId.
type MissingFieldError struct {
	Field     string
	RequestID string
	// SampleIndex is the position of the offending sample, -1 for request fields.
	SampleIndex int
}

func (e *MissingFieldError) Error() string {
	if e.SampleIndex < 0 {
		return fmt.Sprintf("Request is missing mandatory field %q", e.Field)
	}
	return fmt.Sprintf("Sample %d of request '%s' is missing mandatory field %q", e.SampleIndex, e.RequestID, e.Field)
}

// IsRecoverable reports whether err only affects a single log line, so the
// rest of the log can still be audited when the caller asks for it.
func IsRecoverable(err error) bool {
	var (
		lineErr    *MalformedLineError
		jsonErr    *MalformedJSONError
		missingErr *MissingFieldError
	)
	return errors.As(err, &lineErr) || errors.As(err, &jsonErr) || errors.As(err, &missingErr)
}
