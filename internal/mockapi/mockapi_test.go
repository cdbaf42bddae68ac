package mockapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, srv *httptest.Server, method, path, key, body string) map[string]any {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+key)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	out["_code"] = float64(resp.StatusCode)
	return out
}

func TestServer_SubmitThenWalkSequence(t *testing.T) {
	api := New("k", WithStatusSequence("pending", "completed"))
	srv := httptest.NewServer(api)
	defer srv.Close()

	sub := do(t, srv, http.MethodPost, "/v2/search/submit", "k", `{"query":"go devs"}`)
	assert.Equal(t, "task-1", sub["task_id"])

	first := do(t, srv, http.MethodGet, "/v2/search/status/task-1", "k", "")
	assert.Equal(t, "pending", first["status"])

	second := do(t, srv, http.MethodGet, "/v2/search/status/task-1", "k", "")
	assert.Equal(t, "completed", second["status"])
	assert.Contains(t, second, "search_results")

	// last value repeats
	third := do(t, srv, http.MethodGet, "/v2/search/status/task-1", "k", "")
	assert.Equal(t, "completed", third["status"])

	assert.Equal(t, 3, api.StatusCalls("task-1"))
	assert.Equal(t, 1, api.SubmitCalls())
}

func TestServer_RejectsWrongKey(t *testing.T) {
	api := New("right")
	srv := httptest.NewServer(api)
	defer srv.Close()

	out := do(t, srv, http.MethodPost, "/v2/search/submit", "wrong", `{"query":"x"}`)
	assert.Equal(t, float64(http.StatusUnauthorized), out["_code"])
	assert.Len(t, api.Calls(), 1)
}

func TestServer_QueryScriptAndIDField(t *testing.T) {
	api := New("k",
		WithQueryScript("doomed", "failed"),
		WithTaskIDField("id"),
	)
	srv := httptest.NewServer(api)
	defer srv.Close()

	sub := do(t, srv, http.MethodPost, "/v2/search/submit", "k", `{"query":"doomed"}`)
	assert.Equal(t, "task-1", sub["id"])
	assert.NotContains(t, sub, "task_id")

	st := do(t, srv, http.MethodGet, "/v2/search/status/task-1", "k", "")
	assert.Equal(t, "failed", st["status"])
}

func TestServer_UnknownTask(t *testing.T) {
	srv := httptest.NewServer(New("k"))
	defer srv.Close()

	out := do(t, srv, http.MethodGet, "/v2/search/status/nope", "k", "")
	assert.Equal(t, float64(http.StatusNotFound), out["_code"])
}
