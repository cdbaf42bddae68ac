// Package pearch runs searches against the Pearch asynchronous search API.
//
// A search is submitted once, then polled at a fixed interval until the
// service reports a terminal status or a deadline passes. pearch drives
// that submit, poll and resolve cycle for single queries and for ordered
// batches, with per-item error isolation.
//
// # Quick Start
//
//	client, err := pearch.New(pearch.StaticCredentials{
//	    BaseURL: pearch.DefaultBaseURL,
//	    APIKey:  os.Getenv("PEARCH_API_KEY"),
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	req, err := pearch.BuildRequest(pearch.Params{Query: "staff Go engineers in Berlin"})
//	if err != nil {
//	    return err
//	}
//	result, err := client.Search(ctx, req, pearch.DefaultPollConfig())
//
// # Task Lifecycle
//
// Every task moves through [StateSubmitting] and [StatePolling] and ends in
// [StateSucceeded], [StateFailed] or [StateTimedOut]. The deadline is
// checked before every status call and the wait between calls never runs
// past it. Status values outside the success and failure sets (see
// [WithTerminalStatuses]) keep the task pending. Register
// [WithTransitionCallback] to observe progress.
//
// # Batches
//
// [Client.RunBatch] processes [Item] values strictly in order. With
// [WithContinueOnFail] a failing item yields a [ResultItem] carrying the
// original input and an [*ItemError]; without it the first failure aborts
// the batch. [NewQueryGrid] expands a query template over dimension values
// into batch items.
//
// # Errors
//
// Errors match one of [ErrValidation], [ErrCredentials], [ErrTransport],
// [ErrMissingTaskID], [ErrTaskFailed] or [ErrTimeout] with errors.Is.
//
// # Architecture
//
//   - internal/transport: pooled HTTP client with rate limiting and redacted errors
//   - internal/redact: secret scrubbing for logs and error text
//   - internal/tracker: in-memory task progress with pub/sub
//   - internal/server: progress API with REST and Server-Sent Events
//   - internal/mockapi: in-process fake of the search service
//
// The internal packages are not part of the public API and may change
// without notice.
package pearch
