package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Join   = errors.Join
	Unwrap = errors.Unwrap
)

type ErrorCategory string

const (
	CategoryTask      ErrorCategory = "TASK"      // Registry and lifecycle misuse
	CategorySource    ErrorCategory = "SOURCE"    // Endpoint unreachable or refusing
	CategoryTimeout   ErrorCategory = "TIMEOUT"   // Connect or read stall
	CategoryExhausted ErrorCategory = "EXHAUSTED" // Retry budget spent on every source
	CategoryIO        ErrorCategory = "IO"        // Local file system
	CategoryContext   ErrorCategory = "CONTEXT"   // Cancellation
	CategoryIntegrity ErrorCategory = "INTEGRITY" // Reserved for verification
)

// Sentinel errors. Every DownloadError unwraps to exactly one of these
// plus its underlying cause.
var (
	ErrTaskNotFound      = New("task not found")
	ErrInvalidTaskState  = New("invalid task state")
	ErrSourceUnavailable = New("source unavailable")
	ErrTimeout           = New("operation timed out")
	ErrExhaustedRetries  = New("retries exhausted")
	ErrIntegrityMismatch = New("integrity mismatch")
	ErrCancelled         = New("cancelled")
	ErrLocalIO           = New("local I/O failure")
)

// DownloadError represents an error that occurred while transferring a byte range.
type DownloadError struct {
	Err        error         // Underlying cause
	Kind       error         // One of the sentinels above
	Category   ErrorCategory // General category
	Source     string        // "official" or "mirror", empty when not source-bound
	Resource   string        // URL or file path
	Range      string        // "[start,end)" for chunk errors
	StatusCode int           // HTTP status code when one was received
	Timestamp  time.Time
}

// Error implements the error interface
func (e *DownloadError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Category, e.Resource)
	if e.Range != "" {
		msg += " range " + e.Range
	}

	if e.Source != "" {
		msg += " via " + e.Source
	}

	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status: %d)", e.StatusCode)
	}

	if e.Kind != nil {
		msg += ": " + e.Kind.Error()
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap exposes both the sentinel kind and the cause to errors.Is and errors.As.
func (e *DownloadError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}

	if e.Err != nil {
		errs = append(errs, e.Err)
	}

	return errs
}

// NewSourceError creates an error for a connect-phase or transport failure.
func NewSourceError(err error, source, resource string, statusCode int) *DownloadError {
	return &DownloadError{
		Err:        err,
		Kind:       ErrSourceUnavailable,
		Category:   CategorySource,
		Source:     source,
		Resource:   resource,
		StatusCode: statusCode,
		Timestamp:  time.Now(),
	}
}

// NewTimeoutError creates an error for a connect timeout or a read stall.
func NewTimeoutError(err error, source, resource string) *DownloadError {
	return &DownloadError{
		Err:       err,
		Kind:      ErrTimeout,
		Category:  CategoryTimeout,
		Source:    source,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// NewExhaustedError wraps the last cause of a unit that ran out of attempts.
func NewExhaustedError(last error, resource string, start, end int64) *DownloadError {
	return &DownloadError{
		Err:       last,
		Kind:      ErrExhaustedRetries,
		Category:  CategoryExhausted,
		Resource:  resource,
		Range:     FormatRange(start, end),
		Timestamp: time.Now(),
	}
}

// NewIOError creates an I/O related error
func NewIOError(err error, resource string) *DownloadError {
	return &DownloadError{
		Err:       err,
		Kind:      ErrLocalIO,
		Category:  CategoryIO,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// NewContextError creates a cancellation error
func NewContextError(err error, resource string) *DownloadError {
	return &DownloadError{
		Err:       err,
		Kind:      ErrCancelled,
		Category:  CategoryContext,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// NewTaskError reports a lifecycle violation for the given task id.
func NewTaskError(kind error, id string) error {
	return fmt.Errorf("%w: %s", kind, id)
}

// FormatRange renders a half-open byte range.
func FormatRange(start, end int64) string {
	return fmt.Sprintf("[%d,%d)", start, end)
}

// IsRetryable reports whether another attempt against a source may succeed.
// Local I/O failures and cancellations are not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var downloadErr *DownloadError
	if !As(err, &downloadErr) {
		return false
	}

	switch downloadErr.Category {
	case CategorySource, CategoryTimeout:
		return true
	default:
		return false
	}
}

// IsTimeout reports whether err was caused by a connect timeout or read stall.
func IsTimeout(err error) bool {
	return Is(err, ErrTimeout)
}

// GetStatusCode extracts the status code from an error if available. Nested
// download errors are searched, so an exhausted error reports the status of
// its last attempt.
func GetStatusCode(err error) (int, bool) {
	var downloadErr *DownloadError
	for As(err, &downloadErr) {
		if downloadErr.StatusCode != 0 {
			return downloadErr.StatusCode, true
		}

		err = downloadErr.Err
	}

	return 0, false
}
