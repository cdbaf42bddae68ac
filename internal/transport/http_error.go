package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Pearch-ai/pearch/internal/redact"
)

// apiErrorEnvelope covers the error shapes the search service and common
// API gateways return. Unknown fields are ignored.
type apiErrorEnvelope struct {
	Detail  any    `json:"detail"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// HTTPError is a sanitized summary of a non-2xx response.
//
// Raw response bodies are never kept; Message and Snippet are redacted and
// truncated.
type HTTPError struct {
	Op         string
	StatusCode int
	Status     string

	// Message is the service-provided error message, when one was parsed.
	Message string

	// Snippet is a redacted, truncated hint for unstructured bodies.
	Snippet string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	parts := []string{
		fmt.Sprintf("http error: op=%s status=%s", strings.TrimSpace(e.Op), strings.TrimSpace(e.Status)),
	}
	if m := strings.TrimSpace(e.Message); m != "" {
		parts = append(parts, "message="+m)
	}
	if s := strings.TrimSpace(e.Snippet); s != "" {
		parts = append(parts, "body="+s)
	}
	return strings.Join(parts, " ")
}

// Temporary reports whether the status usually clears on its own.
func (e *HTTPError) Temporary() bool {
	if e == nil {
		return false
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

func newHTTPError(op string, resp *http.Response, body []byte) error {
	h := &HTTPError{Op: op}
	if resp != nil {
		h.StatusCode = resp.StatusCode
		h.Status = resp.Status
	}

	var env apiErrorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		if msg := envelopeMessage(env); msg != "" {
			h.Message = truncate(redact.Secrets(msg))
			return h
		}
	}

	h.Snippet = redactAndTruncate(body)
	return h
}

func envelopeMessage(env apiErrorEnvelope) string {
	switch d := env.Detail.(type) {
	case string:
		if strings.TrimSpace(d) != "" {
			return d
		}
	case nil:
	default:
		if b, err := json.Marshal(d); err == nil {
			return string(b)
		}
	}
	if strings.TrimSpace(env.Message) != "" {
		return env.Message
	}
	return env.Error
}

const maxSnippet = 256

func redactAndTruncate(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	return truncate(redact.Secrets(string(body)))
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxSnippet {
		return s
	}
	return s[:maxSnippet] + "..."
}
