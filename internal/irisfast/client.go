package irisfast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// HeaderProvider supplies per-request headers such as X-User-Id.
type HeaderProvider func() map[string]string

// Client talks to the Iris HTTP API.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	timeout  time.Duration
	attempts int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

// WithRetry sets the total number of attempts for reply requests.
func WithRetry(attempts int) Option {
	return func(c *Client) { c.attempts = attempts }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &fasthttp.Client{
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			MaxConnsPerHost: 64,
		},
		timeout:  10 * time.Second,
		attempts: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := c.doJSON(ctx, fasthttp.MethodGet, "/config", nil, &cfg, 1); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) SendMessage(ctx context.Context, room, message string) error {
	return c.doJSON(ctx, fasthttp.MethodPost, "/reply", ReplyRequest{Type: "text", Room: room, Data: message}, nil, c.attempts)
}

func (c *Client) SendImage(ctx context.Context, room, imageBase64 string) error {
	return c.doJSON(ctx, fasthttp.MethodPost, "/reply", ImageReplyRequest{Type: "image", Room: room, Data: imageBase64}, nil, c.attempts)
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, attempts int) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	if c.headers != nil {
		for k, v := range c.headers() {
			if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
				req.Header.Set(k, v)
			}
		}
	}
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleepWithContext(ctx, backoffDuration(attempt-1)); err != nil {
				return lastErr
			}
		}
		resp.Reset()

		if err := c.http.DoDeadline(req, resp, c.deadline(ctx)); err != nil {
			lastErr = fmt.Errorf("request %s %s: %w", method, path, err)
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = &APIError{Status: status, Body: truncate(string(resp.Body()), 512)}
			if !shouldRetryStatus(status) {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("iris request failed")
	}
	return lastErr
}

// deadline is the earlier of ctx's deadline and the client timeout.
func (c *Client) deadline(ctx context.Context) time.Time {
	own := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(own) {
		return dl
	}
	return own
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoffDuration doubles from 100ms and caps at 3.2s.
func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<uint(attempt-1)) * 100 * time.Millisecond
}

func shouldRetryStatus(code int) bool {
	switch code {
	case fasthttp.StatusInternalServerError,
		fasthttp.StatusBadGateway,
		fasthttp.StatusServiceUnavailable,
		fasthttp.StatusGatewayTimeout:
		return true
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
