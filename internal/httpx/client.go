package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dashdoc/webmanager/internal/model"
)

// maxBodyBytes bounds how much of a response body is read
const maxBodyBytes = 32 << 20

var (
	// ErrRequest marks transport failures (DNS, timeouts, refused connections)
	ErrRequest = errors.New("request failed")
	// ErrDecode marks response bodies that could not be parsed
	ErrDecode = errors.New("decode response")
)

// StatusError is returned when an API answers with an unexpected status code
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Method, e.URL, e.Code, body)
}

// Doer executes HTTP requests (satisfied by *http.Client)
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a JSON API client shared by the content, analytics and CRM integrations
type Client struct {
	doer      Doer
	limiter   *Limiter
	userAgent string
}

// NewClient creates a client from the outbound HTTP and rate-limit settings
func NewClient(cfg model.HTTPConfig, rl model.RateLimitConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := NewLimiter(rl.RequestsPerSecond, rl.BurstSize)
	for _, h := range rl.Hosts {
		limiter.SetHostRate(h.Host, h.RequestsPerSecond, h.BurstSize)
	}

	return &Client{
		doer: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:   limiter,
		userAgent: cfg.UserAgent,
	}
}

// NewClientWithDoer creates an unlimited client around doer (used by tests)
func NewClientWithDoer(doer Doer) *Client {
	return &Client{
		doer:      doer,
		limiter:   NewLimiter(0, 1),
		userAgent: "webmanager-test",
	}
}

// Request describes one JSON call
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any   // marshalled as JSON when non-nil
	Expect  []int // accepted status codes, defaults to any 2xx
}

// Do executes req and decodes the JSON response into out (if non-nil).
// It returns the raw response body alongside the error.
func (c *Client) Do(ctx context.Context, req Request, out any) ([]byte, error) {
	if err := c.limiter.Wait(ctx, req.URL); err != nil {
		return nil, fmt.Errorf("%w: rate limit: %w", ErrRequest, err)
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrRequest, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrRequest, method, redact(req.URL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRequest, err)
	}

	if !accepted(resp.StatusCode, req.Expect) {
		return raw, &StatusError{
			Method: method,
			URL:    redact(req.URL),
			Code:   resp.StatusCode,
			Body:   string(raw),
		}
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return raw, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	}
	return raw, nil
}

func accepted(code int, expect []int) bool {
	if len(expect) == 0 {
		return code >= 200 && code < 300
	}
	for _, e := range expect {
		if code == e {
			return true
		}
	}
	return false
}

// redact drops the query string, which may carry API tokens
func redact(rawURL string) string {
	if idx := strings.Index(rawURL, "?"); idx >= 0 {
		return rawURL[:idx]
	}
	return rawURL
}

// StatusCode returns the status code carried by err, or 0
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// Describe renders err as a short message for the dashboard
func Describe(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return fmt.Sprintf("API returned status %d", se.Code)
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, ErrDecode):
		return "could not parse API response"
	case errors.Is(err, ErrRequest):
		return "could not reach API"
	default:
		return err.Error()
	}
}
