package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Response is the immutable result of one HTTP call. All fields are captured
// when the call completes and never change afterwards.
type Response struct {
	status  int
	body    []byte
	header  http.Header
	elapsed time.Duration
	method  string
	url     string
}

// NewResponse builds a Response. Exposed so tests and fakes outside this
// package can construct one.
func NewResponse(status int, body []byte, header http.Header, elapsed time.Duration, method, url string) *Response {
	cp := make([]byte, len(body))
	copy(cp, body)
	return &Response{
		status:  status,
		body:    cp,
		header:  header.Clone(),
		elapsed: elapsed,
		method:  method,
		url:     url,
	}
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.status }

// Body returns the raw response body.
func (r *Response) Body() []byte { return r.body }

// Header returns a copy of the response headers.
func (r *Response) Header() http.Header { return r.header.Clone() }

// Elapsed returns how long the call took.
func (r *Response) Elapsed() time.Duration { return r.elapsed }

// Method returns the HTTP method of the originating request.
func (r *Response) Method() string { return r.method }

// URL returns the final request URL.
func (r *Response) URL() string { return r.url }

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
