package pearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/Pearch-ai/pearch/internal/redact"
)

// Sentinel errors for use with errors.Is. Every error returned by the
// package matches exactly one of them.
var (
	ErrValidation    = errors.New("validation error")
	ErrCredentials   = errors.New("credential error")
	ErrTransport     = errors.New("transport error")
	ErrMissingTaskID = errors.New("no task ID received")
	ErrTaskFailed    = errors.New("task failed")
	ErrTimeout       = errors.New("task timed out")
)

// ValidationError reports invalid input detected before any HTTP call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// CredentialError reports that credentials could not be resolved or are
// incomplete.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return "credentials: " + e.Reason + ": " + redact.Error(e.Err)
	}
	return "credentials: " + e.Reason
}

func (e *CredentialError) Unwrap() error { return e.Err }

func (e *CredentialError) Is(target error) bool { return target == ErrCredentials }

// TransportError wraps a failed HTTP call. Op names the call, either
// "submit" or "status".
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %s", e.Op, redact.Error(e.Err))
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// MissingTaskIDError means the submit response carried neither task_id nor id.
type MissingTaskIDError struct{}

func (e *MissingTaskIDError) Error() string { return ErrMissingTaskID.Error() }

func (e *MissingTaskIDError) Is(target error) bool { return target == ErrMissingTaskID }

// TaskFailedError means the service reported a failure status for the task.
type TaskFailedError struct {
	TaskID string
	Status string
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("search task %s failed with status: %s", e.TaskID, e.Status)
}

func (e *TaskFailedError) Is(target error) bool { return target == ErrTaskFailed }

// TimeoutError means the task was still pending when the poll deadline passed.
type TimeoutError struct {
	TaskID   string
	MaxWait  time.Duration
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("search task %s timed out after %d seconds (%d status checks)",
		e.TaskID, int(e.MaxWait/time.Second), e.Attempts)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// ItemError attributes an error to the batch item that raised it.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
