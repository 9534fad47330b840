package apiclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = time.Second
)

// Logger is the logging surface the client relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// Options configures a RestyClient. Immutable after New.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RetryCount    int
	RetryDelay    time.Duration
	SkipTLSVerify bool
	// DefaultHeaders are sent on every request; callers can override them
	// per call with WithHeader.
	DefaultHeaders map[string]string
}

// RequestOption customizes a single request.
type RequestOption func(*resty.Request)

// WithHeaders sets multiple headers on the request.
func WithHeaders(headers map[string]string) RequestOption {
	return func(req *resty.Request) {
		if len(headers) > 0 {
			req.SetHeaders(headers)
		}
	}
}

// WithHeader sets one header on the request.
func WithHeader(key, value string) RequestOption {
	return func(req *resty.Request) { req.SetHeader(key, value) }
}

// WithQuery sets query parameters on the request.
func WithQuery(params map[string]string) RequestOption {
	return func(req *resty.Request) {
		if len(params) > 0 {
			req.SetQueryParams(params)
		}
	}
}

// WithBody sets the request body. Structs and maps are serialized as JSON.
func WithBody(body any) RequestOption {
	return func(req *resty.Request) { req.SetBody(body) }
}

// RestyClient adapts resty.Client to the apiclient.Client interface, adding
// base URL handling, a fixed-delay retry policy, and per-attempt logging.
type RestyClient struct {
	client  *resty.Client
	timeout time.Duration
	log     Logger
}

// New creates a RestyClient from the given options.
//
// Transport errors and 5xx responses count as transient and are retried up to
// RetryCount additional attempts with a fixed RetryDelay between them, so a
// transient failure is attempted at most RetryCount+1 times. Responses below
// 500 are never retried. A 5xx that survives all retries is returned as a
// normal Response, not an error.
func New(opts Options, log Logger) (*RestyClient, error) {
	if opts.RetryCount < 0 {
		return nil, fmt.Errorf("retry count must be >= 0, got %d", opts.RetryCount)
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", opts.Timeout)
	}
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if log == nil {
		log = noopLogger{}
	}

	c := resty.New()
	c.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	c.SetTimeout(opts.Timeout)
	c.SetHeaders(map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
	if len(opts.DefaultHeaders) > 0 {
		c.SetHeaders(opts.DefaultHeaders)
	}
	if opts.SkipTLSVerify {
		c.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	c.SetRetryCount(opts.RetryCount)
	// Equal wait and max-wait pins resty to a fixed delay between attempts.
	c.SetRetryWaitTime(opts.RetryDelay)
	c.SetRetryMaxWaitTime(opts.RetryDelay)
	c.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}
		return r != nil && r.StatusCode() >= http.StatusInternalServerError
	})

	rc := &RestyClient{client: c, timeout: opts.Timeout, log: log}

	c.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		rc.log.InfoObj("request attempt", "request_meta", map[string]any{
			"method":  req.Method,
			"url":     req.URL,
			"attempt": req.Attempt,
		})
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		rc.log.InfoObj("response received", "response_meta", map[string]any{
			"method":     resp.Request.Method,
			"url":        resp.Request.URL,
			"status":     resp.StatusCode(),
			"elapsed_ms": resp.Time().Milliseconds(),
		})
		return nil
	})
	c.AddRetryHook(func(resp *resty.Response, err error) {
		meta := map[string]any{"delay": opts.RetryDelay.String()}
		if resp != nil {
			meta["method"] = resp.Request.Method
			meta["url"] = resp.Request.URL
			meta["status"] = resp.StatusCode()
		}
		if err != nil {
			meta["error"] = err.Error()
		}
		rc.log.WarnObj("transient failure, retrying", "retry_meta", meta)
	})

	return rc, nil
}

// Request performs an HTTP request against the configured base URL. Relative
// paths are joined with the base URL; absolute http(s) URLs pass through.
func (r *RestyClient) Request(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error) {
	req := r.client.R().SetContext(ctx)
	for _, opt := range opts {
		if opt != nil {
			opt(req)
		}
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		url := path
		if resp != nil && resp.Request != nil && resp.Request.URL != "" {
			url = resp.Request.URL
		}
		return nil, classifyTransportError(method, url, r.timeout, err)
	}

	return NewResponse(
		resp.StatusCode(),
		resp.Body(),
		resp.Header(),
		resp.Time(),
		method,
		resp.Request.URL,
	), nil
}

// Get performs an HTTP GET request.
func (r *RestyClient) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return r.Request(ctx, http.MethodGet, path, opts...)
}

// Post performs an HTTP POST request.
func (r *RestyClient) Post(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return r.Request(ctx, http.MethodPost, path, opts...)
}

// Put performs an HTTP PUT request.
func (r *RestyClient) Put(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return r.Request(ctx, http.MethodPut, path, opts...)
}

// Patch performs an HTTP PATCH request.
func (r *RestyClient) Patch(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return r.Request(ctx, http.MethodPatch, path, opts...)
}

// Delete performs an HTTP DELETE request.
func (r *RestyClient) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return r.Request(ctx, http.MethodDelete, path, opts...)
}

// SetAuthToken sends the token as a Bearer Authorization header on every request.
func (r *RestyClient) SetAuthToken(token string) {
	r.client.SetAuthToken(token)
	r.log.InfoObj("auth token set", "auth_meta", map[string]any{"scheme": "Bearer"})
}

// SetAPIKey sends the key in the X-API-Key header on every request.
func (r *RestyClient) SetAPIKey(key string) {
	r.client.SetHeader("X-API-Key", key)
	r.log.InfoObj("api key set", "auth_meta", map[string]any{"header": "X-API-Key"})
}

// SetBasicAuth sends HTTP basic credentials on every request.
func (r *RestyClient) SetBasicAuth(username, password string) {
	r.client.SetBasicAuth(username, password)
	r.log.InfoObj("basic auth set", "auth_meta", map[string]any{"username": username})
}

// ClearAuth removes any configured authentication.
func (r *RestyClient) ClearAuth() {
	r.client.Token = ""
	r.client.UserInfo = nil
	r.client.Header.Del("Authorization")
	r.client.Header.Del("X-API-Key")
	r.log.InfoObj("authentication cleared", "auth_meta", nil)
}

// HTTPClient exposes the underlying resty.Client for callers needing custom verbs.
func (r *RestyClient) HTTPClient() *resty.Client { return r.client }
