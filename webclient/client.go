// Package webclient is the shared outbound HTTP layer for feed and page fetches.
package webclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is a fully read, size-capped HTTP response.
type Response struct {
	StatusCode  int
	Body        []byte
	ContentType string
	FinalURL    string
	Truncated   bool
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// Snippet returns a short printable prefix of the body for error messages.
func (r *Response) Snippet() string {
	const maxLen = 256
	s := strings.TrimSpace(string(r.Body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// Client performs GET requests with default headers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (*Response, error)
}

// RestyClient implements Client on top of resty.
type RestyClient struct {
	client  *resty.Client
	maxBody int64
}

// Options configures a RestyClient.
type Options struct {
	Timeout      time.Duration
	Headers      map[string]string
	MaxBodyBytes int64
	Transport    http.RoundTripper
}

// New builds a RestyClient. Zero values fall back to a 15s timeout and a
// 2 MiB body cap.
func New(opts Options) *RestyClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 2 << 20
	}

	c := resty.New().
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if len(opts.Headers) > 0 {
		c.SetHeaders(opts.Headers)
	}
	if opts.Transport != nil {
		c.SetTransport(opts.Transport)
	}
	return &RestyClient{client: c, maxBody: opts.MaxBodyBytes}
}

// Get fetches url, reading at most MaxBodyBytes of the body. Non-2xx statuses
// are returned as responses, not errors.
func (c *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	req := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	raw := resp.RawBody()
	defer raw.Close()

	body, err := io.ReadAll(io.LimitReader(raw, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	out := &Response{
		StatusCode:  resp.StatusCode(),
		ContentType: resp.Header().Get("Content-Type"),
		FinalURL:    url,
	}
	if int64(len(body)) > c.maxBody {
		body = body[:c.maxBody]
		out.Truncated = true
	}
	out.Body = body
	if r := resp.RawResponse; r != nil && r.Request != nil && r.Request.URL != nil {
		out.FinalURL = r.Request.URL.String()
	}
	return out, nil
}
