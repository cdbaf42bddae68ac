package pearch

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/Pearch-ai/pearch/internal/transport"
)

const (
	submitPath = "/v2/search/submit"
	statusPath = "/v2/search/status/"
)

// TaskHandle identifies a submitted search task.
type TaskHandle struct {
	TaskID string
}

// Client talks to the search service.
//
// A Client is safe for concurrent use, though tasks within a batch always
// run one after another. Create one with [New]:
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
//	result, err := client.Search(ctx, req, pearch.DefaultPollConfig())
type Client struct {
	credentials     CredentialProvider
	transport       Transport
	httpClient      *transport.Client
	logger          *slog.Logger
	statuses        statusSet
	statusExtractor FieldExtractor
	taskIDExtractor FieldExtractor
	callbacks       []func(Transition)
	clock           clock
}

// New creates a [Client] that resolves credentials from p on every task.
//
// Returns an error if p is nil or any option is invalid.
func New(p CredentialProvider, opts ...Option) (*Client, error) {
	if p == nil {
		return nil, &CredentialError{Reason: "credential provider cannot be nil"}
	}

	cfg := &clientConfig{
		successStatuses: DefaultSuccessStatuses,
		failureStatuses: DefaultFailureStatuses,
		statusExtractor: DefaultStatusExtractor,
		taskIDExtractor: DefaultTaskIDExtractor,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := cfg.clock
	if clk == nil {
		clk = realClock{}
	}

	c := &Client{
		credentials:     p,
		transport:       cfg.transport,
		logger:          logger,
		statuses:        newStatusSet(cfg.successStatuses, cfg.failureStatuses),
		statusExtractor: cfg.statusExtractor,
		taskIDExtractor: cfg.taskIDExtractor,
		callbacks:       cfg.callbacks,
		clock:           clk,
	}

	if c.transport == nil {
		var topts []transport.Option
		if cfg.httpClient != nil {
			topts = append(topts, transport.WithHTTPClient(cfg.httpClient))
		}
		if cfg.requestTimeout > 0 {
			topts = append(topts, transport.WithTimeout(cfg.requestTimeout))
		}
		if cfg.rateLimit > 0 {
			topts = append(topts, transport.WithRateLimit(cfg.rateLimit))
		}
		c.httpClient = transport.NewClient(topts...)
		c.transport = &httpTransport{client: c.httpClient}
	}

	return c, nil
}

// Close releases idle connections held by the default transport.
// Safe to call on a nil client and more than once.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.httpClient.Close()
}

// Classify reports how c interprets a status value, using the terminal
// statuses configured with [WithTerminalStatuses].
func (c *Client) Classify(status string) Outcome {
	return c.statuses.classify(status)
}

// Submit sends req to the submit endpoint once and returns the raw
// response without waiting for the task.
func (c *Client) Submit(ctx context.Context, req SearchRequest) (Payload, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	creds, err := resolveCredentials(ctx, c.credentials)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, creds, req)
}

// SubmitTask sends req to the submit endpoint and returns the handle of
// the created task. A response without a task id is a [*MissingTaskIDError].
func (c *Client) SubmitTask(ctx context.Context, req SearchRequest) (TaskHandle, error) {
	resp, err := c.Submit(ctx, req)
	if err != nil {
		return TaskHandle{}, err
	}
	id, err := c.extract(c.taskIDExtractor, resp)
	if err != nil {
		return TaskHandle{}, err
	}
	if id == "" {
		return TaskHandle{}, &MissingTaskIDError{}
	}
	return TaskHandle{TaskID: id}, nil
}

// Status performs a single status check for taskID and returns the raw
// response.
func (c *Client) Status(ctx context.Context, taskID string) (Payload, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, &ValidationError{Field: "taskId", Reason: "is required for status operation"}
	}
	creds, err := resolveCredentials(ctx, c.credentials)
	if err != nil {
		return nil, err
	}
	return c.status(ctx, creds, taskID)
}

func (c *Client) submit(ctx context.Context, creds Credentials, req SearchRequest) (Payload, error) {
	resp, err := c.transport.Do(ctx, Request{
		Method:  http.MethodPost,
		URL:     creds.BaseURL + submitPath,
		Headers: headers(creds, true),
		Body:    req,
	})
	if err != nil {
		return nil, &TransportError{Op: "submit", Err: err}
	}
	return resp, nil
}

func (c *Client) status(ctx context.Context, creds Credentials, taskID string) (Payload, error) {
	resp, err := c.transport.Do(ctx, Request{
		Method:  http.MethodGet,
		URL:     creds.BaseURL + statusPath + url.PathEscape(taskID),
		Headers: headers(creds, false),
	})
	if err != nil {
		return nil, &TransportError{Op: "status", Err: err}
	}
	return resp, nil
}

func headers(creds Credentials, withBody bool) map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + creds.APIKey,
		"Accept":        "application/json",
	}
	if withBody {
		h["Content-Type"] = "application/json"
	}
	return h
}
