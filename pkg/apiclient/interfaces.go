package apiclient

import "context"

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Request(ctx context.Context, method, path string, opts ...RequestOption) (*Response, error)
}
