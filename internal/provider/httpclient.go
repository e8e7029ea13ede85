package provider

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

// HTTPClient abstracts HTTP operations so adapter wire calls can be faked
// in tests. Cancellation and deadlines come from the caller's context; the
// client itself only enforces an overall timeout.
type HTTPClient interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// HTTPRequest represents an outgoing HTTP request to a provider API.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// HTTPResponse represents an HTTP response from a provider API.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// DefaultHTTPClient wraps net/http.Client to implement HTTPClient.
type DefaultHTTPClient struct {
	client *http.Client
}

// NewHTTPClient creates a DefaultHTTPClient with the given timeout.
func NewHTTPClient(timeout time.Duration) *DefaultHTTPClient {
	return &DefaultHTTPClient{
		client: &http.Client{Timeout: timeout},
	}
}

// Do converts an HTTPRequest to a net/http request, executes it, and
// returns the result as an HTTPResponse.
func (c *DefaultHTTPClient) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
	}, nil
}
