package pearch

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrors_MatchExactlyOneSentinel(t *testing.T) {
	sentinels := []error{ErrValidation, ErrCredentials, ErrTransport, ErrMissingTaskID, ErrTaskFailed, ErrTimeout}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"validation", &ValidationError{Field: "query", Reason: "is required"}, ErrValidation},
		{"credentials", &CredentialError{Reason: "API key not found in credentials"}, ErrCredentials},
		{"transport", &TransportError{Op: "submit", Err: errors.New("refused")}, ErrTransport},
		{"missing task id", &MissingTaskIDError{}, ErrMissingTaskID},
		{"task failed", &TaskFailedError{TaskID: "t", Status: "error"}, ErrTaskFailed},
		{"timeout", &TimeoutError{TaskID: "t", MaxWait: 10 * time.Second}, ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// wrapping must not hide the kind
			wrapped := &ItemError{Index: 3, Err: fmt.Errorf("context: %w", tt.err)}
			for _, s := range sentinels {
				got := errors.Is(wrapped, s)
				if got != (s == tt.want) {
					t.Errorf("errors.Is(%v, %v) = %v", wrapped, s, got)
				}
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ValidationError{Field: "query", Reason: "is required and cannot be empty"}, "query is required and cannot be empty"},
		{&ValidationError{Reason: "bad"}, "bad"},
		{&MissingTaskIDError{}, "no task ID received"},
		{&TaskFailedError{TaskID: "t-1", Status: "failed"}, "search task t-1 failed with status: failed"},
		{&TimeoutError{TaskID: "t-1", MaxWait: 600 * time.Second, Attempts: 40}, "search task t-1 timed out after 600 seconds (40 status checks)"},
		{&ItemError{Index: 2, Err: &MissingTaskIDError{}}, "item 2: no task ID received"},
		{&TransportError{Op: "status", Err: errors.New("Bearer abc.def")}, "status request failed: Bearer <redacted>"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
