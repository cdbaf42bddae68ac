package pearch

import (
	"strings"
	"time"
)

// State is a step in the lifecycle of one search task.
//
// A task starts in [StateSubmitting], moves to [StatePolling] once the
// service hands back a task id, and ends in exactly one of the terminal
// states [StateSucceeded], [StateFailed] or [StateTimedOut].
type State string

const (
	// StateSubmitting is the single POST to the submit endpoint.
	StateSubmitting State = "submitting"

	// StatePolling is the loop of status checks against a known task id.
	StatePolling State = "polling"

	// StateSucceeded means the service reported a success status.
	StateSucceeded State = "succeeded"

	// StateFailed means the task could not be submitted, the service
	// reported a failure status, or polling was cancelled.
	StateFailed State = "failed"

	// StateTimedOut means the poll deadline passed while the task was pending.
	StateTimedOut State = "timed_out"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Terminal reports whether no further transitions can follow s.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateTimedOut:
		return true
	default:
		return false
	}
}

// Outcome is the classification of a single status value.
type Outcome int

const (
	// OutcomePending means keep polling.
	OutcomePending Outcome = iota
	// OutcomeSucceeded means the task finished successfully.
	OutcomeSucceeded
	// OutcomeFailed means the service reported the task as failed.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Default terminal status values reported by the search service.
var (
	DefaultSuccessStatuses = []string{"completed", "done"}
	DefaultFailureStatuses = []string{"failed", "error"}
)

// statusSet classifies status strings. Matching is case-insensitive and
// ignores surrounding whitespace; anything unrecognized is pending.
type statusSet struct {
	success map[string]struct{}
	failure map[string]struct{}
}

func newStatusSet(success, failure []string) statusSet {
	s := statusSet{
		success: make(map[string]struct{}, len(success)),
		failure: make(map[string]struct{}, len(failure)),
	}
	for _, v := range success {
		if n := normalizeStatus(v); n != "" {
			s.success[n] = struct{}{}
		}
	}
	for _, v := range failure {
		if n := normalizeStatus(v); n != "" {
			s.failure[n] = struct{}{}
		}
	}
	return s
}

func (s statusSet) classify(status string) Outcome {
	n := normalizeStatus(status)
	if _, ok := s.success[n]; ok {
		return OutcomeSucceeded
	}
	if _, ok := s.failure[n]; ok {
		return OutcomeFailed
	}
	return OutcomePending
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Transition describes one state change of a task.
//
// Transitions are delivered to callbacks registered with
// [WithTransitionCallback]. A transition into [StatePolling] is emitted after
// each pending status check as well as on entry, so Attempt and Status track
// the progress of the loop.
type Transition struct {
	// Item is the batch index of the task, or -1 outside a batch.
	Item int

	// TaskID is empty until the submit response has been parsed.
	TaskID string

	// Query is the search query being processed.
	Query string

	From State
	To   State

	// Status is the last status value reported by the service.
	Status string

	// Attempt counts status calls made so far.
	Attempt int

	// Elapsed is the time since polling started.
	Elapsed time.Duration

	// At is when the transition happened.
	At time.Time

	// Err is set for transitions into StateFailed and StateTimedOut.
	Err error
}
