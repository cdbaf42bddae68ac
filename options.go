package pearch

import (
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// clientConfig holds mutable state during Client construction.
type clientConfig struct {
	transport       Transport
	httpClient      *http.Client
	requestTimeout  time.Duration
	rateLimit       float64
	logger          *slog.Logger
	successStatuses []string
	failureStatuses []string
	statusExtractor FieldExtractor
	taskIDExtractor FieldExtractor
	callbacks       []func(Transition)
	clock           clock
}

// Option is a function that configures a [Client] during construction.
//
// Options return an error if validation fails.
type Option func(*clientConfig) error

// WithTransport replaces the default HTTP transport.
//
// When set, [WithHTTPClient], [WithRequestTimeout] and [WithRateLimit] have
// no effect.
//
// Returns an error if the transport is nil.
func WithTransport(t Transport) Option {
	return func(cfg *clientConfig) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		cfg.transport = t
		return nil
	}
}

// WithHTTPClient sets the http.Client used by the default transport.
//
// Returns an error if the client is nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(cfg *clientConfig) error {
		if hc == nil {
			return errors.New("http client cannot be nil")
		}
		cfg.httpClient = hc
		return nil
	}
}

// WithRequestTimeout bounds each individual submit or status call.
// Defaults to 30 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithRateLimit caps outgoing calls per second, shared by every task the
// client runs. Zero disables the limit.
//
// Returns an error if rps is negative.
func WithRateLimit(rps float64) Option {
	return func(cfg *clientConfig) error {
		if rps < 0 {
			return errors.New("rate limit cannot be negative")
		}
		cfg.rateLimit = rps
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithTerminalStatuses replaces the status values that end polling.
//
// Values are matched case-insensitively. Anything outside both sets keeps
// the task pending until it times out. Defaults to
// [DefaultSuccessStatuses] and [DefaultFailureStatuses].
//
// Example:
//
//	client, err := pearch.New(creds,
//	    pearch.WithTerminalStatuses(
//	        []string{"completed", "done", "finished"},
//	        []string{"failed", "error", "cancelled"},
//	    ),
//	)
//
// Returns an error if either set is empty or a value appears in both.
func WithTerminalStatuses(success, failure []string) Option {
	return func(cfg *clientConfig) error {
		if len(success) == 0 || len(failure) == 0 {
			return errors.New("success and failure statuses cannot be empty")
		}
		seen := make(map[string]bool, len(success))
		for _, s := range success {
			seen[normalizeStatus(s)] = true
		}
		for _, f := range failure {
			if seen[normalizeStatus(f)] {
				return errors.New("status " + f + " cannot be both success and failure")
			}
		}
		cfg.successStatuses = append([]string(nil), success...)
		cfg.failureStatuses = append([]string(nil), failure...)
		return nil
	}
}

// WithStatusExtractor sets how the status value is read from a status
// response. Defaults to [DefaultStatusExtractor].
func WithStatusExtractor(e FieldExtractor) Option {
	return func(cfg *clientConfig) error {
		if e == nil {
			return errors.New("status extractor cannot be nil")
		}
		cfg.statusExtractor = e
		return nil
	}
}

// WithTaskIDExtractor sets how the task id is read from a submit response.
// Defaults to [DefaultTaskIDExtractor].
func WithTaskIDExtractor(e FieldExtractor) Option {
	return func(cfg *clientConfig) error {
		if e == nil {
			return errors.New("task id extractor cannot be nil")
		}
		cfg.taskIDExtractor = e
		return nil
	}
}

// WithTransitionCallback registers a function called on every task state
// change, including each pending status check.
//
// Multiple callbacks run in registration order. Callbacks are invoked
// synchronously from the polling goroutine and must not block. Panics are
// recovered and logged; they never affect the task.
//
// Nil callbacks are silently ignored.
func WithTransitionCallback(cb func(Transition)) Option {
	return func(cfg *clientConfig) error {
		if cb == nil {
			return nil
		}
		cfg.callbacks = append(cfg.callbacks, cb)
		return nil
	}
}

// withClock substitutes the time source. Tests only.
func withClock(c clock) Option {
	return func(cfg *clientConfig) error {
		cfg.clock = c
		return nil
	}
}
