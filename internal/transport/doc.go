// Package transport issues the individual HTTP calls made against the search
// service.
//
// This package is internal to pearch. It owns connection pooling, per-call
// timeouts, an optional global rate limit, response size limits, and the
// sanitized [HTTPError] returned for non-2xx responses. It knows nothing about
// tasks or polling; the state machine in the pearch package drives it one
// call at a time.
//
// The main components are:
//
//   - [Client]: pooled HTTP client with per-request timeout and rate limiting
//   - [Request] / [Response]: a single call and its outcome
//   - [HTTPError]: redacted summary of a non-2xx response
//   - [DecodeObject]: JSON object decoding that preserves numeric ids
package transport
