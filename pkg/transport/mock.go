package transport

import (
	"context"
	"net/http"
	"sync"
)

// MockClient is a scripted Client for tests. Each Do call is recorded; the
// OnDo hook, when set, takes over entirely, otherwise queued responses are
// returned in order (the last one repeats).
type MockClient struct {
	OnDo func(ctx context.Context, req *Request) (*Response, error)

	mu        sync.Mutex
	responses []*Response
	errs      []error
	requests  []*Request
}

// NewMockClient creates a new mock transport client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Queue appends a canned exchange outcome. A nil response with a non-nil err
// scripts a transport failure.
func (m *MockClient) Queue(resp *Response, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
	m.errs = append(m.errs, err)
}

// QueueStatus appends a canned response with the given status and JSON body.
func (m *MockClient) QueueStatus(status int, body string) {
	m.Queue(&Response{
		Status:  status,
		Body:    []byte(body),
		Headers: http.Header{"Content-Type": []string{"application/json"}},
	}, nil)
}

// Requests returns a copy of all requests seen so far.
func (m *MockClient) Requests() []*Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// CallCount returns the number of Do invocations.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Do implements Client.
func (m *MockClient) Do(ctx context.Context, req *Request) (*Response, error) {
	if m.OnDo != nil {
		m.mu.Lock()
		m.requests = append(m.requests, req)
		m.mu.Unlock()
		return m.OnDo(ctx, req)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)

	if len(m.responses) == 0 {
		return &Response{Status: http.StatusOK, Body: []byte("{}")}, nil
	}
	idx := len(m.requests) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], m.errs[idx]
}

// Ensure MockClient implements Client.
var _ Client = (*MockClient)(nil)
