// Package mockapi is an in-process fake of the Pearch search service.
//
// It serves the submit and status endpoints, checks the bearer token,
// records every call and walks each task through a scripted sequence of
// status values, one step per status call. It backs the package tests and
// the standalone mock server under example/.
package mockapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// Call is one request received by the server.
type Call struct {
	Method        string
	Path          string
	Authorization string
	Accept        string
	ContentType   string

	// Body is the decoded JSON request body, nil for GET.
	Body map[string]any
}

type mockTask struct {
	id       string
	query    string
	script   []string
	position int
}

// Server implements http.Handler. The zero value is not usable; create one
// with [New].
type Server struct {
	mu       sync.Mutex
	apiKey   string
	sequence []string
	scripts  map[string][]string
	idField  string
	tasks    map[string]*mockTask
	calls    []Call
	nextID   int
	logger   *slog.Logger
	mux      *http.ServeMux
}

// Option configures a [Server].
type Option func(*Server)

// WithStatusSequence sets the statuses a task reports on successive status
// calls. The last value repeats. Defaults to pending, running, completed.
func WithStatusSequence(statuses ...string) Option {
	return func(s *Server) {
		if len(statuses) > 0 {
			s.sequence = append([]string(nil), statuses...)
		}
	}
}

// WithQueryScript overrides the status sequence for tasks submitted with
// exactly this query.
func WithQueryScript(query string, statuses ...string) Option {
	return func(s *Server) {
		if len(statuses) > 0 {
			s.scripts[query] = append([]string(nil), statuses...)
		}
	}
}

// WithTaskIDField names the submit response field carrying the task id:
// "task_id" (default), "id", or "" to omit it entirely.
func WithTaskIDField(name string) Option {
	return func(s *Server) {
		s.idField = name
	}
}

// WithLogger logs every call at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a fake service that accepts apiKey as its bearer token.
func New(apiKey string, opts ...Option) *Server {
	s := &Server{
		apiKey:   apiKey,
		sequence: []string{"pending", "running", "completed"},
		scripts:  make(map[string][]string),
		idField:  "task_id",
		tasks:    make(map[string]*mockTask),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/search/submit", s.handleSubmit)
	mux.HandleFunc("GET /v2/search/status/{id}", s.handleStatus)
	s.mux = mux
	return s
}

// ServeHTTP records the call, checks authentication and dispatches.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Accept:        r.Header.Get("Accept"),
		ContentType:   r.Header.Get("Content-Type"),
	}
	if r.Method == http.MethodPost {
		raw, err := io.ReadAll(r.Body)
		if err == nil {
			err = json.Unmarshal(raw, &call.Body)
		}
		if err != nil {
			s.record(call)
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "invalid JSON body"})
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))
	}
	s.record(call)

	if s.logger != nil {
		s.logger.Debug("mock api call", "method", r.Method, "path", r.URL.Path)
	}

	if call.Authorization != "Bearer "+s.apiKey {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "invalid API key"})
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) record(c Call) {
	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query string `json:"query"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)
	query := body.Query
	if strings.TrimSpace(query) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "query is required"})
		return
	}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("task-%d", s.nextID)
	script := s.sequence
	if sc, ok := s.scripts[query]; ok {
		script = sc
	}
	s.tasks[id] = &mockTask{id: id, query: query, script: script}
	idField := s.idField
	s.mu.Unlock()

	resp := map[string]any{"status": "submitted"}
	if idField != "" {
		resp[idField] = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	s.mu.Lock()
	t, ok := s.tasks[id]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "task not found"})
		return
	}
	idx := t.position
	if idx >= len(t.script) {
		idx = len(t.script) - 1
	}
	status := t.script[idx]
	t.position++
	query := t.query
	s.mu.Unlock()

	resp := map[string]any{
		"task_id": id,
		"status":  status,
		"query":   query,
	}
	if status == "completed" || status == "done" {
		resp["search_results"] = []map[string]any{
			{"docid": id + "-1", "score": 0.92},
			{"docid": id + "-2", "score": 0.87},
		}
		resp["total_estimate"] = 2
	}
	writeJSON(w, http.StatusOK, resp)
}

// Calls returns a copy of every call received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// StatusCalls counts status calls received for taskID.
func (s *Server) StatusCalls(taskID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == http.MethodGet && c.Path == "/v2/search/status/"+taskID {
			n++
		}
	}
	return n
}

// SubmitCalls counts submit calls received.
func (s *Server) SubmitCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method == http.MethodPost {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
