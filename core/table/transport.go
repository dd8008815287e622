package table

import (
	"context"
	"net/http"
)

type (
	// Request is a backend call relative to the backend base URL.
	Request struct {
		Method string
		Path   string
		Query  map[string]string
		Body   []byte
	}

	Response struct {
		StatusCode int
		Body       []byte
	}

	// Transport executes backend calls. Implementations must honor ctx cancellation.
	Transport interface {
		Do(ctx context.Context, req Request) (Response, error)
	}
)

func (r Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// TransportFunc adapts a func to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (Response, error)

func (f TransportFunc) Do(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}
