package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts raw page fetches so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// TransportRequest is the fully resolved request handed to a Transport.
// Body is nil when no payload should be sent.
type TransportRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// TransportResponse is what a Transport reports back once a response was received.
type TransportResponse struct {
	StatusCode int
	StatusText string
	Body       []byte
}

// OK reports whether the status code is in the 2xx range.
func (r *TransportResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode <= 299
}

// Transport performs a single request/response exchange. A non-nil error means no
// response was obtained; HTTP error statuses are reported through the response.
type Transport interface {
	Do(ctx context.Context, req *TransportRequest) (*TransportResponse, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, req *TransportRequest) (*TransportResponse, error)

// Do calls f(ctx, req).
func (f TransportFunc) Do(ctx context.Context, req *TransportRequest) (*TransportResponse, error) {
	return f(ctx, req)
}

// Logger defines the logging surface the API client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
