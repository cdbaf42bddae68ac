package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Pearch-ai/pearch/internal/tracker"
)

// testLogger returns a logger that discards all output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(recs ...tracker.TaskRecord) (*Server, *tracker.MemoryTracker) {
	tr := tracker.NewMemoryTracker()
	for _, rec := range recs {
		tr.Update(rec)
	}
	return NewServer(tr, "127.0.0.1:0", testLogger()), tr
}

func parseSSEEvents(body string) []tracker.TaskRecord {
	var out []tracker.TaskRecord
	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var rec tracker.TaskRecord
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &rec); err == nil {
			out = append(out, rec)
		}
	}
	return out
}

// --- /api/tasks ---

func TestHandleTasks_Snapshot(t *testing.T) {
	msg := "search task t-2 failed with status: failed"
	srv, _ := newTestServer(
		tracker.TaskRecord{Index: 1, TaskID: "t-2", State: "failed", Error: &msg},
		tracker.TaskRecord{Index: 0, TaskID: "t-1", State: "succeeded", Status: "completed", Attempts: 3},
	)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}

	var got []tracker.TaskRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].TaskID != "t-1" || got[0].Attempts != 3 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Error == nil || *got[1].Error != msg {
		t.Errorf("got[1].Error = %v, want %q", got[1].Error, msg)
	}
}

func TestHandleTasks_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// --- /api/sse ---

func TestHandleSSE_InitialSnapshot(t *testing.T) {
	srv, _ := newTestServer(
		tracker.TaskRecord{Index: 0, Query: "go developers"},
		tracker.TaskRecord{Index: 1, Query: "rust developers"},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	events := parseSSEEvents(rec.Body.String())
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2: %s", len(events), rec.Body.String())
	}
	if events[0].Query != "go developers" || events[1].Query != "rust developers" {
		t.Errorf("events = %+v", events)
	}
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	srv, tr := newTestServer()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleSSE(rec, req)
		close(done)
	}()

	// give handler time to subscribe
	time.Sleep(50 * time.Millisecond)
	tr.Update(tracker.TaskRecord{Index: 0, TaskID: "streamed", State: "polling"})
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	if !strings.Contains(rec.Body.String(), "streamed") {
		t.Errorf("response should contain streamed update, got: %s", rec.Body.String())
	}
}

func TestHandleSSE_Headers(t *testing.T) {
	srv, _ := newTestServer()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	for key, want := range map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	} {
		if got := rec.Header().Get(key); got != want {
			t.Errorf("header %s = %q, want %q", key, got, want)
		}
	}
}

type nonFlushWriter struct {
	header     http.Header
	statusCode int
}

func (n *nonFlushWriter) Header() http.Header         { return n.header }
func (n *nonFlushWriter) Write(b []byte) (int, error) { return len(b), nil }
func (n *nonFlushWriter) WriteHeader(statusCode int)  { n.statusCode = statusCode }

func TestHandleSSE_SSENotSupported(t *testing.T) {
	srv, _ := newTestServer()
	w := &nonFlushWriter{header: make(http.Header)}

	srv.handleSSE(w, httptest.NewRequest(http.MethodGet, "/api/sse", nil))

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.statusCode, http.StatusInternalServerError)
	}
}

func TestHandleSSE_NoGoroutineLeaks(t *testing.T) {
	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	before := runtime.NumGoroutine()

	srv, _ := newTestServer()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
			srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	runtime.GC()
	time.Sleep(200 * time.Millisecond)

	if after := runtime.NumGoroutine(); after > before+2 {
		t.Errorf("potential goroutine leak: before=%d, after=%d", before, after)
	}
}

// --- shutdown over real connections ---

func TestHandleSSE_MultipleClientsShutdownIntegration(t *testing.T) {
	srv, _ := newTestServer(tracker.TaskRecord{Index: 0, State: "polling"})

	serverCtx, serverCancel := context.WithCancel(context.Background())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.handleSSE(w, r.WithContext(serverCtx))
	}))
	defer ts.Close()

	numClients := 5
	var wg sync.WaitGroup
	started := make(chan struct{})
	var startedCount atomic.Int32

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := ts.Client().Get(ts.URL)
			if err != nil {
				return
			}
			defer func() { _ = resp.Body.Close() }()

			if startedCount.Add(1) == int32(numClients) {
				close(started)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
		}()
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Log("not all clients started, continuing anyway")
	}
	time.Sleep(100 * time.Millisecond)

	serverCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("not all SSE clients disconnected after shutdown")
	}
}

// --- Start ---

func TestStart_ServesTasks(t *testing.T) {
	srv, _ := newTestServer(tracker.TaskRecord{Index: 0, TaskID: "live"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr() + "/api/tasks")
	if err != nil {
		t.Fatalf("GET /api/tasks: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"task_id":"live"`) {
		t.Errorf("body = %s", body)
	}
}

func TestStart_AddressInUse_ReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer func() { _ = ln.Close() }()

	srv := NewServer(tracker.NewMemoryTracker(), ln.Addr().String(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = srv.Start(ctx)
	if err == nil {
		t.Fatal("Start() on occupied address should return error")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("expected bind error, got: %v", err)
	}
}

func TestAddr_BeforeStart(t *testing.T) {
	srv := NewServer(tracker.NewMemoryTracker(), ":9999", testLogger())
	if got := srv.Addr(); got != ":9999" {
		t.Errorf("Addr() = %q, want :9999", got)
	}
}
