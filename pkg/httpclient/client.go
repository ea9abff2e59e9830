package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// EnvAPIURL names the environment variable consulted for the default base URL.
	EnvAPIURL = "MEALBOOK_API_URL"

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	contentTypeJSON     = "application/json"

	defaultTimeout = 15 * time.Second
)

// RequestConfig holds the per-call options of Request.
type RequestConfig struct {
	// Method defaults to GET.
	Method  string
	Headers map[string]string
	// Body is JSON-encoded when non-nil. Use json.RawMessage("null") to send a
	// literal null.
	Body  any
	Query Query
}

// APIResponse is the envelope returned for successful requests.
type APIResponse struct {
	// Data is the decoded JSON body, or an empty object when the body was not JSON.
	Data       any
	Status     int
	StatusText string
	// Body is the raw response payload.
	Body []byte
}

// Decode unmarshals the raw response payload into v.
func (r *APIResponse) Decode(v any) error {
	if r == nil || len(r.Body) == 0 {
		return fmt.Errorf("decode response: empty body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// APIClient issues JSON requests against a REST backend rooted at a base URL.
// It is safe for concurrent use; header setters only affect requests started
// after they return.
type APIClient struct {
	baseURL   string
	transport Transport
	log       Logger

	mu             sync.RWMutex
	defaultHeaders map[string]string
}

// Option configures an APIClient.
type Option func(*clientOptions)

type clientOptions struct {
	baseURL    *string
	transport  Transport
	log        Logger
	timeout    time.Duration
	authToken  string
	extraHeads map[string]string
}

// WithBaseURL sets the base URL. Without it, the value of MEALBOOK_API_URL is used.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) { o.baseURL = &u }
}

// WithTransport replaces the default resty transport.
func WithTransport(t Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(l Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithTimeout sets the timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithAuthToken is shorthand for calling SetAuthToken after construction.
func WithAuthToken(token string) Option {
	return func(o *clientOptions) { o.authToken = token }
}

// WithDefaultHeaders is shorthand for calling SetDefaultHeaders after construction.
func WithDefaultHeaders(h map[string]string) Option {
	return func(o *clientOptions) { o.extraHeads = h }
}

// New builds an APIClient.
func New(opts ...Option) *APIClient {
	o := clientOptions{timeout: defaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	baseURL := os.Getenv(EnvAPIURL)
	if o.baseURL != nil {
		baseURL = *o.baseURL
	}
	if o.transport == nil {
		o.transport = NewRestyClient(o.timeout)
	}
	if o.log == nil {
		o.log = noopLogger{}
	}

	c := &APIClient{
		baseURL:   baseURL,
		transport: o.transport,
		log:       o.log,
		defaultHeaders: map[string]string{
			headerContentType: contentTypeJSON,
		},
	}
	if len(o.extraHeads) > 0 {
		c.SetDefaultHeaders(o.extraHeads)
	}
	if o.authToken != "" {
		c.SetAuthToken(o.authToken)
	}
	return c
}

// BaseURL returns the URL every endpoint is appended to.
func (c *APIClient) BaseURL() string { return c.baseURL }

// SetAuthToken sets the bearer Authorization header, or removes it when token is empty.
func (c *APIClient) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != "" {
		c.defaultHeaders[headerAuthorization] = "Bearer " + token
		return
	}
	delete(c.defaultHeaders, headerAuthorization)
}

// SetDefaultHeaders merges headers into the defaults; later values win. Names are
// matched case-insensitively.
func (c *APIClient) SetDefaultHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mergeHeaders(c.defaultHeaders, headers)
}

// mergeHeaders copies src into dst under canonical header names.
func mergeHeaders(dst, src map[string]string) {
	for k, v := range src {
		dst[http.CanonicalHeaderKey(k)] = v
	}
}

// DefaultHeaders returns a copy of the current default headers.
func (c *APIClient) DefaultHeaders() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.defaultHeaders))
	for k, v := range c.defaultHeaders {
		out[k] = v
	}
	return out
}

// Request performs one HTTP exchange. It returns either a 2xx envelope or a
// *ClientError.
func (c *APIClient) Request(ctx context.Context, endpoint string, cfg RequestConfig) (*APIResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := c.buildRequest(endpoint, cfg)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		ce := newTransportError(err)
		c.log.WarnObj("api request failed", "api_transport_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"error":  ce.Message,
		})
		return nil, ce
	}
	if resp == nil {
		return nil, newTransportError(nil)
	}

	data := parseBody(resp.Body)
	if !resp.OK() {
		ce := newStatusError(resp.StatusCode, data)
		c.log.WarnObj("api request rejected", "api_status_error", map[string]any{
			"method": req.Method,
			"url":    req.URL,
			"status": resp.StatusCode,
			"error":  ce.Message,
		})
		return nil, ce
	}

	c.log.DebugObj("api request completed", "api_response", map[string]any{
		"method": req.Method,
		"url":    req.URL,
		"status": resp.StatusCode,
	})
	return &APIResponse{
		Data:       data,
		Status:     resp.StatusCode,
		StatusText: resp.StatusText,
		Body:       resp.Body,
	}, nil
}

// buildRequest resolves method, URL, headers and body against the client state as
// it is at call time.
func (c *APIClient) buildRequest(endpoint string, cfg RequestConfig) (*TransportRequest, error) {
	method := strings.ToUpper(strings.TrimSpace(cfg.Method))
	if method == "" {
		method = http.MethodGet
	}

	url := c.baseURL + endpoint
	if len(cfg.Query) > 0 {
		url += "?" + cfg.Query.Encode()
	}

	headers := c.DefaultHeaders()
	mergeHeaders(headers, cfg.Headers)

	var body []byte
	if cfg.Body != nil {
		raw, err := json.Marshal(cfg.Body)
		if err != nil {
			return nil, &ClientError{Message: fmt.Sprintf("encode request body: %v", err), Status: 0, Data: err}
		}
		body = raw
	}

	return &TransportRequest{Method: method, URL: url, Headers: headers, Body: body}, nil
}

// parseBody decodes a JSON payload, falling back to an empty object.
func parseBody(body []byte) any {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return map[string]any{}
	}
	return data
}

// Get issues a GET request with optional query parameters.
func (c *APIClient) Get(ctx context.Context, endpoint string, query Query) (*APIResponse, error) {
	return c.Request(ctx, endpoint, RequestConfig{Method: http.MethodGet, Query: query})
}

// Post issues a POST request with an optional JSON body.
func (c *APIClient) Post(ctx context.Context, endpoint string, body any) (*APIResponse, error) {
	return c.Request(ctx, endpoint, RequestConfig{Method: http.MethodPost, Body: body})
}

// Put issues a PUT request with an optional JSON body.
func (c *APIClient) Put(ctx context.Context, endpoint string, body any) (*APIResponse, error) {
	return c.Request(ctx, endpoint, RequestConfig{Method: http.MethodPut, Body: body})
}

// Patch issues a PATCH request with an optional JSON body.
func (c *APIClient) Patch(ctx context.Context, endpoint string, body any) (*APIResponse, error) {
	return c.Request(ctx, endpoint, RequestConfig{Method: http.MethodPatch, Body: body})
}

// Delete issues a DELETE request.
func (c *APIClient) Delete(ctx context.Context, endpoint string) (*APIResponse, error) {
	return c.Request(ctx, endpoint, RequestConfig{Method: http.MethodDelete})
}

// Do performs a request and decodes the successful payload into T. When the body
// was not JSON, the empty-object fallback is decoded instead. A decode failure is
// reported as a *ClientError carrying the response status.
func Do[T any](ctx context.Context, c *APIClient, endpoint string, cfg RequestConfig) (T, *APIResponse, error) {
	var out T
	resp, err := c.Request(ctx, endpoint, cfg)
	if err != nil {
		return out, nil, err
	}

	raw := resp.Body
	if !json.Valid(raw) {
		raw, _ = json.Marshal(resp.Data)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, resp, &ClientError{
			Message: fmt.Sprintf("decode response: %v", err),
			Status:  resp.Status,
			Data:    resp.Data,
		}
	}
	return out, resp, nil
}
