package pearch

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/Pearch-ai/pearch/internal/redact"
)

// clock is the time source for the poll loop.
type clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the
	// latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Search submits req and polls until the task reaches a terminal state.
//
// On success it returns the final status response. Otherwise the error is
// one of [*ValidationError], [*CredentialError], [*TransportError],
// [*MissingTaskIDError], [*TaskFailedError] or [*TimeoutError]; a cancelled
// ctx surfaces as a failure wrapping ctx.Err().
//
// The deadline in cfg is checked before every status call, and the wait
// between calls is shortened so it never runs past the deadline. With a
// 10 second deadline and a 2 second interval at most 5 status calls are
// made. Zero fields in cfg take the [DefaultPollConfig] values.
func (c *Client) Search(ctx context.Context, req SearchRequest, cfg PollConfig) (Payload, error) {
	return c.search(ctx, -1, req, cfg)
}

// WaitForTask polls an already submitted task until it reaches a terminal
// state.
func (c *Client) WaitForTask(ctx context.Context, h TaskHandle, cfg PollConfig) (Payload, error) {
	return c.wait(ctx, -1, "", h, cfg)
}

func (c *Client) search(ctx context.Context, item int, req SearchRequest, cfg PollConfig) (Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t := c.newTask(item, req.Query)
	t.enter(StateSubmitting, nil)

	creds, err := resolveCredentials(ctx, c.credentials)
	if err != nil {
		return nil, t.finish(StateFailed, err)
	}

	resp, err := c.submit(ctx, creds, req)
	if err != nil {
		return nil, t.finish(StateFailed, err)
	}

	id, err := c.extract(c.taskIDExtractor, resp)
	if err != nil {
		return nil, t.finish(StateFailed, err)
	}
	if id == "" {
		return nil, t.finish(StateFailed, &MissingTaskIDError{})
	}
	t.taskID = id
	c.logger.Debug("search submitted", "item", item, "task_id", id)

	return c.poll(ctx, t, creds, cfg)
}

func (c *Client) wait(ctx context.Context, item int, query string, h TaskHandle, cfg PollConfig) (Payload, error) {
	if h.TaskID == "" {
		return nil, &ValidationError{Field: "taskId", Reason: "is required for status operation"}
	}
	t := c.newTask(item, query)
	t.taskID = h.TaskID

	creds, err := resolveCredentials(ctx, c.credentials)
	if err != nil {
		return nil, t.finish(StateFailed, err)
	}
	return c.poll(ctx, t, creds, cfg)
}

// poll runs the Polling state until a terminal state is reached.
func (c *Client) poll(ctx context.Context, t *task, creds Credentials, cfg PollConfig) (Payload, error) {
	cfg = cfg.withDefaults()
	t.start = c.clock.Now()
	t.enter(StatePolling, nil)

	for {
		if t.elapsed() >= cfg.MaxWait {
			return nil, t.finish(StateTimedOut, &TimeoutError{
				TaskID:   t.taskID,
				MaxWait:  cfg.MaxWait,
				Attempts: t.attempt,
			})
		}

		resp, err := c.status(ctx, creds, t.taskID)
		t.attempt++
		if err != nil {
			return nil, t.finish(StateFailed, err)
		}

		status, err := c.extract(c.statusExtractor, resp)
		if err != nil {
			return nil, t.finish(StateFailed, err)
		}
		t.status = status

		switch c.statuses.classify(status) {
		case OutcomeSucceeded:
			t.finish(StateSucceeded, nil)
			return resp, nil
		case OutcomeFailed:
			return nil, t.finish(StateFailed, &TaskFailedError{TaskID: t.taskID, Status: status})
		}

		c.logger.Debug("search pending",
			"item", t.item,
			"task_id", t.taskID,
			"status", status,
			"attempt", t.attempt,
			"elapsed_ms", t.elapsed().Milliseconds(),
		)
		t.enter(StatePolling, nil)

		wait := cfg.Interval
		if remaining := cfg.MaxWait - t.elapsed(); remaining < wait {
			wait = remaining
		}
		if wait <= 0 {
			continue
		}
		if err := c.clock.Sleep(ctx, wait); err != nil {
			return nil, t.finish(StateFailed, fmt.Errorf("polling cancelled: %w", err))
		}
	}
}

// extract runs a field extractor with panic recovery. A panic is logged
// with its stack and a correlation id and reported as a failed task.
func (c *Client) extract(e FieldExtractor, p Payload) (v string, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			c.logger.Error("extractor panic",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			v = ""
			err = fmt.Errorf("extractor panic (correlation_id: %s)", correlationID)
		}
	}()
	return e(p), nil
}

// task is the mutable state of one run through the state machine.
type task struct {
	c       *Client
	item    int
	query   string
	taskID  string
	state   State
	status  string
	attempt int
	start   time.Time
}

func (c *Client) newTask(item int, query string) *task {
	return &task{c: c, item: item, query: query}
}

func (t *task) elapsed() time.Duration {
	if t.start.IsZero() {
		return 0
	}
	return t.c.clock.Now().Sub(t.start)
}

// enter moves the task to state and notifies callbacks.
func (t *task) enter(to State, err error) {
	tr := Transition{
		Item:    t.item,
		TaskID:  t.taskID,
		Query:   t.query,
		From:    t.state,
		To:      to,
		Status:  t.status,
		Attempt: t.attempt,
		Elapsed: t.elapsed(),
		At:      t.c.clock.Now(),
		Err:     err,
	}
	t.state = to
	for _, cb := range t.c.callbacks {
		t.c.invokeCallbackSafe(cb, tr)
	}
}

// finish enters a terminal state, logs the outcome and returns err.
func (t *task) finish(to State, err error) error {
	t.enter(to, err)

	attrs := []any{
		"item", t.item,
		"task_id", t.taskID,
		"state", to,
		"status", t.status,
		"attempts", t.attempt,
		"elapsed_ms", t.elapsed().Milliseconds(),
	}
	if err != nil {
		t.c.logger.Warn("search finished with error", append(attrs, "error", redact.Error(err))...)
	} else {
		t.c.logger.Info("search completed", attrs...)
	}
	return err
}

// invokeCallbackSafe calls a transition callback with panic recovery.
// Panics are logged but do not propagate.
func (c *Client) invokeCallbackSafe(cb func(Transition), tr Transition) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("transition callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", r,
				"task_id", tr.TaskID,
				"to", tr.To,
			)
		}
	}()
	cb(tr)
}
