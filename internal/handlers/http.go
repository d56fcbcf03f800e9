package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"skillflow/internal/config"
	"skillflow/internal/workflow"
)

// maxBodyBytes caps how much of a response body is kept.
const maxBodyBytes = 1 << 20

// ErrHTTPStatus is returned for responses with a 4xx or 5xx status.
var ErrHTTPStatus = errors.New("unexpected HTTP status")

// Response is the output of an API step.
type Response struct {
	StatusCode int    `json:"status_code" yaml:"status_code"`
	Body       string `json:"body" yaml:"body"`
}

// String returns the response body.
func (r Response) String() string {
	return r.Body
}

// OK reports whether the status code is 2xx.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPClient sends API step requests.
type HTTPClient struct {
	client  *http.Client
	headers map[string]string
	logger  *zap.SugaredLogger
}

// NewHTTPClient creates a client from HTTP configuration.
func NewHTTPClient(cfg config.HTTPConfig, logger *zap.SugaredLogger) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		headers: cfg.Headers,
		logger:  nopIfNil(logger),
	}
}

// Handle sends the step's request. Transport errors and 4xx/5xx responses
// fail the step; the response is returned either way.
func (c *HTTPClient) Handle(ctx context.Context, step workflow.Step) (any, error) {
	action, ok := step.Action.(workflow.API)
	if !ok {
		return nil, unexpectedAction(step)
	}

	resp, err := c.Do(ctx, string(action.Method), action.URL, action.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return resp, fmt.Errorf("%w: %s %s returned %d", ErrHTTPStatus, action.Method, action.URL, resp.StatusCode)
	}
	return resp, nil
}

// Do sends a single request. A non-empty body that is valid JSON is sent as
// application/json, anything else as text/plain.
func (c *HTTPClient) Do(ctx context.Context, method, url, body string) (Response, error) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Response{}, fmt.Errorf("failed to build request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if body != "" && req.Header.Get("Content-Type") == "" {
		if json.Valid([]byte(body)) {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		}
	}

	c.logger.Debugw("sending request", "method", method, "url", url)
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, ctxErr
		}
		return Response{}, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debugw("received response", "method", method, "url", url, "status", resp.StatusCode)
	return Response{StatusCode: resp.StatusCode, Body: string(data)}, nil
}
