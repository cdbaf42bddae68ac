package pearch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Pearch-ai/pearch/internal/redact"
)

// Operation selects what a batch does with each item.
type Operation string

const (
	// OperationSearch submits each item and waits for the result.
	OperationSearch Operation = "search"
	// OperationSubmit submits each item and returns the submit response.
	OperationSubmit Operation = "submit"
	// OperationStatus checks the status of each item's TaskID once.
	OperationStatus Operation = "status"
)

// ParseOperation converts a name into an [Operation]. Empty selects
// [OperationSearch].
func ParseOperation(s string) (Operation, error) {
	switch op := Operation(strings.ToLower(strings.TrimSpace(s))); op {
	case "":
		return OperationSearch, nil
	case OperationSearch, OperationSubmit, OperationStatus:
		return op, nil
	default:
		return "", &ValidationError{Field: "operation", Reason: "must be one of: search, submit, status"}
	}
}

// Item is one input of a batch.
type Item struct {
	// JSON is the caller's input payload. It is returned unchanged, as a
	// copy, on items that fail under continue-on-fail.
	JSON Payload

	// Params are the search parameters for this item.
	Params Params
}

// ResultItem is one output of a batch.
type ResultItem struct {
	// JSON is the service response on success, or a copy of the input
	// payload on failure.
	JSON Payload

	// Error is set on failure and is always an [*ItemError].
	Error error

	// PairedItem is the index of the input item this result belongs to.
	PairedItem int
}

// MarshalJSON encodes the error as its redacted message.
func (r ResultItem) MarshalJSON() ([]byte, error) {
	out := struct {
		JSON       Payload `json:"json"`
		Error      string  `json:"error,omitempty"`
		PairedItem int     `json:"pairedItem"`
	}{
		JSON:       r.JSON,
		Error:      redact.Error(r.Error),
		PairedItem: r.PairedItem,
	}
	if out.JSON == nil {
		out.JSON = Payload{}
	}
	return json.Marshal(out)
}

type batchConfig struct {
	operation      Operation
	continueOnFail bool
	itemCallbacks  []func(ResultItem)
}

// BatchOption configures a single [Client.RunBatch] call.
type BatchOption func(*batchConfig)

// WithOperation selects the per-item operation. Defaults to [OperationSearch].
func WithOperation(op Operation) BatchOption {
	return func(cfg *batchConfig) {
		cfg.operation = op
	}
}

// WithContinueOnFail keeps processing after a failed item, recording the
// failure in that item's result instead of aborting the batch.
func WithContinueOnFail(enabled bool) BatchOption {
	return func(cfg *batchConfig) {
		cfg.continueOnFail = enabled
	}
}

// WithItemCallback registers a function called after every item, in input
// order. Nil callbacks are ignored.
func WithItemCallback(cb func(ResultItem)) BatchOption {
	return func(cfg *batchConfig) {
		if cb != nil {
			cfg.itemCallbacks = append(cfg.itemCallbacks, cb)
		}
	}
}

// RunBatch processes items strictly in order, one task at a time.
//
// On success the returned slice has one result per item, in input order.
// When an item fails and continue-on-fail is off, RunBatch stops
// immediately and returns the results gathered so far with an
// [*ItemError] naming the failing index. A cancelled ctx always aborts the
// batch.
//
// Example:
//
//	results, err := client.RunBatch(ctx, items,
//	    pearch.WithContinueOnFail(true),
//	)
func (c *Client) RunBatch(ctx context.Context, items []Item, opts ...BatchOption) ([]ResultItem, error) {
	cfg := batchConfig{operation: OperationSearch}
	for _, opt := range opts {
		opt(&cfg)
	}
	op, err := ParseOperation(string(cfg.operation))
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID, "operation", string(op))
	logger.Info("batch started", "items", len(items), "continue_on_fail", cfg.continueOnFail)

	start := time.Now()
	results := make([]ResultItem, 0, len(items))
	var failed int

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch cancelled", "item", i, "error", err.Error())
			return results, &ItemError{Index: i, Err: err}
		}

		resp, err := c.runItem(ctx, i, op, item.Params)

		var res ResultItem
		if err != nil {
			itemErr := &ItemError{Index: i, Err: err}
			if !cfg.continueOnFail || ctx.Err() != nil {
				logger.Error("batch aborted", "item", i, "error", redact.Error(err))
				return results, itemErr
			}
			failed++
			logger.Warn("item failed", "item", i, "error", redact.Error(err))
			res = ResultItem{JSON: item.JSON.Clone(), Error: itemErr, PairedItem: i}
		} else {
			res = ResultItem{JSON: resp, PairedItem: i}
		}

		results = append(results, res)
		for _, cb := range cfg.itemCallbacks {
			c.invokeItemCallbackSafe(cb, res)
		}
	}

	logger.Info("batch finished",
		"items", len(items),
		"succeeded", len(items)-failed,
		"failed", failed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return results, nil
}

// runItem applies op to a single item. Each call builds its own request
// and task state; nothing carries over between items.
func (c *Client) runItem(ctx context.Context, index int, op Operation, p Params) (Payload, error) {
	switch op {
	case OperationStatus:
		return c.Status(ctx, p.TaskID)
	case OperationSubmit:
		req, err := BuildRequest(p)
		if err != nil {
			return nil, err
		}
		return c.Submit(ctx, req)
	default:
		req, err := BuildRequest(p)
		if err != nil {
			return nil, err
		}
		pc, err := p.PollConfig()
		if err != nil {
			return nil, err
		}
		return c.search(ctx, index, req, pc)
	}
}

func (c *Client) invokeItemCallbackSafe(cb func(ResultItem), res ResultItem) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("item callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", fmt.Sprintf("%v", r),
				"item", res.PairedItem,
			)
		}
	}()
	cb(res)
}
