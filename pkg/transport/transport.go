// Package transport executes HTTP exchanges for the rating pipeline.
//
// Non-2xx statuses are never turned into errors here; interpreting them is
// the caller's responsibility. Only connection-level failures and timeouts
// produce errors, already classified into the shared taxonomy.
package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/tournevent/rategate/pkg/carrier"
)

// Request is a lightweight representation of an HTTP request.
// Timeout bounds this single call; zero means the client default.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
	Timeout time.Duration
}

// Response is the fully-buffered result of an HTTP request.
type Response struct {
	Status  int
	Body    []byte
	Headers http.Header
}

// Client defines the minimal interface the pipeline needs to execute HTTP
// requests. Implementations must respect the context.
type Client interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPClient is the production Client backed by net/http.
type HTTPClient struct {
	client         *http.Client
	defaultTimeout time.Duration
}

// HTTPClientConfig holds configuration for the HTTP client.
type HTTPClientConfig struct {
	Timeout time.Duration // default per-request timeout when Request.Timeout is zero
}

// NewHTTPClient creates a new HTTP transport client.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		client:         &http.Client{},
		defaultTimeout: timeout,
	}
}

// Do executes the request. The per-request timeout is applied via the
// context so each call carries its own independent budget.
func (c *HTTPClient) Do(ctx context.Context, req *Request) (*Response, error) {
	timeout := req.Timeout
	if timeout == 0 {
		timeout = c.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, carrier.NewError(carrier.CodeInternal, "failed to create request").WithCause(err)
	}
	if req.Headers != nil {
		httpReq.Header = req.Headers.Clone()
	}

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classify(err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classify(err)
	}

	return &Response{
		Status:  httpResp.StatusCode,
		Body:    body,
		Headers: httpResp.Header,
	}, nil
}

// classify maps low-level failures into the shared taxonomy: deadline
// overruns become TIMEOUT, everything else NETWORK_ERROR. Both are
// retryable by definition.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return carrier.NewError(carrier.CodeTimeout, "HTTP request timed out").
			WithRetryable(true).
			WithCause(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return carrier.NewError(carrier.CodeTimeout, "HTTP request timed out").
			WithRetryable(true).
			WithCause(err)
	}
	return carrier.NewError(carrier.CodeNetwork, "HTTP network error").
		WithRetryable(true).
		WithCause(err)
}

// Ensure HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
