package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response wrapper with the payload left raw.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id"`
		Details   []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

// Response is a recorded API response.
type Response struct {
	Code     int
	Header   http.Header
	Body     []byte
	Envelope Envelope
}

// APIClient issues requests against an http.Handler without a network listener.
type APIClient struct {
	t       *testing.T
	handler http.Handler
	token   string
	headers map[string]string
}

// NewAPIClient creates a client for handler.
func NewAPIClient(t *testing.T, handler http.Handler) *APIClient {
	return &APIClient{t: t, handler: handler, headers: map[string]string{}}
}

// WithToken returns a copy of the client that sends a bearer token.
func (c *APIClient) WithToken(token string) *APIClient {
	cp := *c
	cp.token = token
	cp.headers = make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		cp.headers[k] = v
	}
	return &cp
}

// WithHeader returns a copy of the client that sends an extra header.
func (c *APIClient) WithHeader(key, value string) *APIClient {
	cp := c.WithToken(c.token)
	cp.headers[key] = value
	return cp
}

// Do sends a request with body encoded as JSON when non-nil.
func (c *APIClient) Do(method, path string, body any) *Response {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(c.t, err, "Failed to marshal request body")
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)

	resp := &Response{Code: w.Code, Header: w.Header(), Body: w.Body.Bytes()}
	if json.Valid(resp.Body) {
		_ = json.Unmarshal(resp.Body, &resp.Envelope)
	}
	return resp
}

// Get is shorthand for Do(GET).
func (c *APIClient) Get(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodGet, path, nil)
}

// Post is shorthand for Do(POST).
func (c *APIClient) Post(path string, body any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPost, path, body)
}

// Put is shorthand for Do(PUT).
func (c *APIClient) Put(path string, body any) *Response {
	c.t.Helper()
	return c.Do(http.MethodPut, path, body)
}

// Delete is shorthand for Do(DELETE).
func (c *APIClient) Delete(path string) *Response {
	c.t.Helper()
	return c.Do(http.MethodDelete, path, nil)
}

// DataAs decodes the envelope's data into T.
func DataAs[T any](t *testing.T, resp *Response) T {
	t.Helper()
	var out T
	require.NotEmpty(t, resp.Envelope.Data, "response has no data: %s", resp.Body)
	require.NoError(t, json.Unmarshal(resp.Envelope.Data, &out), "Failed to decode response data")
	return out
}

// AssertSuccess asserts status and a successful envelope.
func AssertSuccess(t *testing.T, resp *Response, status int) {
	t.Helper()
	require.Equal(t, status, resp.Code, "unexpected status, body: %s", resp.Body)
	assert.True(t, resp.Envelope.Success, "expected success envelope")
	assert.Nil(t, resp.Envelope.Error)
}

// AssertError asserts status and an error envelope carrying code.
func AssertError(t *testing.T, resp *Response, status int, code string) {
	t.Helper()
	require.Equal(t, status, resp.Code, "unexpected status, body: %s", resp.Body)
	assert.False(t, resp.Envelope.Success, "expected failure envelope")
	require.NotNil(t, resp.Envelope.Error, "expected error object, body: %s", resp.Body)
	assert.Equal(t, code, resp.Envelope.Error.Code)
}
