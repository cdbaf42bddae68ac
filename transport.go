package pearch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Pearch-ai/pearch/internal/transport"
)

// Request is a single authenticated call to the search service.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string

	// Body is JSON-encoded when non-nil.
	Body any
}

// Transport issues one HTTP call and returns the decoded JSON object.
//
// Implementations must not retry; the task poller owns all repetition.
// Use [WithTransport] to substitute a custom implementation.
type Transport interface {
	Do(ctx context.Context, req Request) (Payload, error)
}

// TransportFunc adapts a function to [Transport].
type TransportFunc func(ctx context.Context, req Request) (Payload, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req Request) (Payload, error) {
	return f(ctx, req)
}

// httpTransport is the default Transport backed by the pooled client.
type httpTransport struct {
	client *transport.Client
}

func (t *httpTransport) Do(ctx context.Context, req Request) (Payload, error) {
	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = b
	}

	resp := t.client.Fetch(ctx, transport.Request{
		Method:  req.Method,
		URL:     req.URL,
		Headers: req.Headers,
		Body:    body,
	})
	if resp.Error != nil {
		return nil, resp.Error
	}

	obj, err := transport.DecodeObject(resp.Body)
	if err != nil {
		return nil, err
	}
	return Payload(obj), nil
}
