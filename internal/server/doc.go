// Package server exposes batch progress over HTTP.
//
//   - GET /api/tasks: JSON snapshot of every tracked task, ordered by item index
//   - GET /api/sse: Server-Sent Events stream of task records as they change
//
// The server shuts down gracefully when its context is cancelled, with a
// 5-second timeout for in-flight requests.
package server
