package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the Client and Transport interfaces.
type RestyClient struct {
	client  *resty.Client
	maxBody int64
}

// NewRestyClient creates a new RestyClient with the specified timeout.
func NewRestyClient(timeout time.Duration) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout)}
}

// WithMaxBodyBytes caps how much of a page body Get reads; the rest is discarded
// unread. Zero means no cap.
func (r *RestyClient) WithMaxBodyBytes(n int64) *RestyClient {
	r.maxBody = n
	return r
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetAllowGetMethodPayload(true)
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if r.maxBody <= 0 {
		resp, err := req.Get(url)
		if err != nil {
			return nil, err
		}
		return &restyResponseAdapter{resp: resp}, nil
	}

	resp, err := req.SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, err
	}
	raw := resp.RawBody()
	defer raw.Close()
	body, err := io.ReadAll(io.LimitReader(raw, r.maxBody))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &pageResponse{body: body, status: resp.StatusCode()}, nil
}

// Do executes a resolved API request. Error statuses are not treated as failures here.
func (r *RestyClient) Do(ctx context.Context, treq *TransportRequest) (*TransportResponse, error) {
	req := r.client.R().SetContext(ctx)
	if len(treq.Headers) > 0 {
		req.SetHeaders(treq.Headers)
	}
	if treq.Body != nil {
		req.SetBody(treq.Body)
	}

	resp, err := req.Execute(treq.Method, treq.URL)
	if err != nil {
		return nil, err
	}
	return &TransportResponse{
		StatusCode: resp.StatusCode(),
		StatusText: statusText(resp.StatusCode(), resp.Status()),
		Body:       resp.Body(),
	}, nil
}

// statusText strips the numeric code from a "200 OK" style status line.
func statusText(code int, status string) string {
	text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if text == "" {
		return http.StatusText(code)
	}
	return text
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

// pageResponse is a Response whose body was read by the adapter itself.
type pageResponse struct {
	body   []byte
	status int
}

func (p *pageResponse) Body() []byte    { return p.body }
func (p *pageResponse) StatusCode() int { return p.status }
