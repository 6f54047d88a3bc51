package errors_test

import (
	stdErrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/NamanBalaji/mcfetch/internal/errors"
)

func TestDownloadErrorError(t *testing.T) {
	baseErr := stdErrors.New("underlying error")
	de := &errors.DownloadError{
		Err:       baseErr,
		Kind:      errors.ErrLocalIO,
		Category:  errors.CategoryIO,
		Timestamp: time.Now(),
		Resource:  "client.jar",
	}

	expected := "[IO] client.jar: local I/O failure: underlying error"
	if de.Error() != expected {
		t.Errorf("expected %q, got %q", expected, de.Error())
	}

	de2 := &errors.DownloadError{
		Err:        stdErrors.New("server error"),
		Kind:       errors.ErrSourceUnavailable,
		Category:   errors.CategorySource,
		Source:     "official",
		Timestamp:  time.Now(),
		Resource:   "http://example.com/client.jar",
		StatusCode: 500,
	}

	expected2 := "[SOURCE] http://example.com/client.jar via official (status: 500): source unavailable: server error"
	if de2.Error() != expected2 {
		t.Errorf("expected %q, got %q", expected2, de2.Error())
	}
}

func TestExhaustedErrorNamesRange(t *testing.T) {
	last := errors.NewSourceError(stdErrors.New("503"), "mirror", "http://m/client.jar", 503)
	err := errors.NewExhaustedError(last, "client.jar", 1024, 2048)

	if !errors.Is(err, errors.ErrExhaustedRetries) {
		t.Errorf("expected ErrExhaustedRetries")
	}

	if !errors.Is(err, errors.ErrSourceUnavailable) {
		t.Errorf("expected the last cause to stay reachable")
	}

	want := "[EXHAUSTED] client.jar range [1024,2048): retries exhausted: "
	if got := err.Error(); len(got) < len(want) || got[:len(want)] != want {
		t.Errorf("expected prefix %q, got %q", want, got)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", stdErrors.New("x"), false},
		{"source", errors.NewSourceError(nil, "official", "u", 0), true},
		{"timeout", errors.NewTimeoutError(nil, "mirror", "u"), true},
		{"wrapped timeout", fmt.Errorf("attempt: %w", errors.NewTimeoutError(nil, "mirror", "u")), true},
		{"io", errors.NewIOError(stdErrors.New("disk full"), "f"), false},
		{"context", errors.NewContextError(stdErrors.New("c"), "f"), false},
		{"exhausted", errors.NewExhaustedError(nil, "f", 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsTimeout(t *testing.T) {
	if !errors.IsTimeout(errors.NewTimeoutError(nil, "official", "u")) {
		t.Error("expected timeout")
	}

	if errors.IsTimeout(errors.NewSourceError(nil, "official", "u", 0)) {
		t.Error("source error is not a timeout")
	}
}

func TestGetStatusCode(t *testing.T) {
	code, ok := errors.GetStatusCode(errors.NewSourceError(nil, "official", "u", 404))
	if !ok || code != 404 {
		t.Errorf("expected 404, got %d (%v)", code, ok)
	}

	if _, ok := errors.GetStatusCode(stdErrors.New("x")); ok {
		t.Error("expected no status code")
	}
}

func TestNewTaskError(t *testing.T) {
	err := errors.NewTaskError(errors.ErrTaskNotFound, "abc")

	if !errors.Is(err, errors.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound")
	}

	if err.Error() != "task not found: abc" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
