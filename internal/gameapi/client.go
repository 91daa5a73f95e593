package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/park285/seabattle-client/pkg/wire"
)

const (
	pathByCode       = "/game/by-code/%s/"
	pathState        = "/game/state/%s/"
	pathTimer        = "/game/timer/%s/"
	pathKilled       = "/game/killed/%s/"
	pathAction       = "/game/action/%s/"
	pathInviteCancel = "/match/invite/%s/cancel/"
)

// HeaderProvider allows injecting per-request headers
type HeaderProvider func() map[string]string

// SessionHeaders returns the CSRF and cookie headers an authenticated
// session needs. Empty values are skipped when the request is built.
func SessionHeaders(csrf, cookie string) HeaderProvider {
	return func() map[string]string {
		return map[string]string{
			"X-CSRFToken": csrf,
			"Cookie":      cookie,
		}
	}
}

// Client talks to the game server over plain HTTP.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	headers HeaderProvider

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.defaultTimeout = d
		}
	}
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.http.MaxConnsPerHost = n }
}

func WithHeaderProvider(h HeaderProvider) Option {
	return func(c *Client) { c.headers = h }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

// WithHTTPClient swaps the underlying fasthttp client, e.g. for an in-memory dialer.
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ByCode(ctx context.Context, code string) (*wire.Reply, error) {
	var r wire.Reply
	if err := c.doJSON(ctx, "by_code", fasthttp.MethodGet, fmt.Sprintf(pathByCode, url.PathEscape(code)), nil, &r, true); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) State(ctx context.Context, gameID string) (*wire.Reply, error) {
	var r wire.Reply
	if err := c.doJSON(ctx, "state", fasthttp.MethodGet, fmt.Sprintf(pathState, url.PathEscape(gameID)), nil, &r, true); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) Timer(ctx context.Context, gameID string) (*wire.Tick, error) {
	var t wire.Tick
	if err := c.doJSON(ctx, "timer", fasthttp.MethodGet, fmt.Sprintf(pathTimer, url.PathEscape(gameID)), nil, &t, true); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Killed(ctx context.Context, gameID string) (*wire.Killed, error) {
	var k wire.Killed
	if err := c.doJSON(ctx, "killed", fasthttp.MethodGet, fmt.Sprintf(pathKilled, url.PathEscape(gameID)), nil, &k, true); err != nil {
		return nil, err
	}
	if k.Error != "" {
		return nil, &RequestError{Op: "killed", Message: k.Error}
	}
	return &k, nil
}

// Send posts one framed request. A reply with ok=false is a RequestError.
// State-changing requests are never retried.
func (c *Client) Send(ctx context.Context, gameID string, env wire.Envelope) (*wire.Reply, error) {
	var r wire.Reply
	if err := c.doJSON(ctx, env.Type, fasthttp.MethodPost, fmt.Sprintf(pathAction, url.PathEscape(gameID)), env, &r, false); err != nil {
		return nil, err
	}
	if !r.Succeeded() {
		return nil, &RequestError{Op: env.Type, Message: firstNonEmpty(r.Message, r.Error)}
	}
	return &r, nil
}

func (c *Client) CancelInvite(ctx context.Context, token string) error {
	return c.doJSON(ctx, "cancel_invite", fasthttp.MethodPost, fmt.Sprintf(pathInviteCancel, url.PathEscape(token)), wire.Empty{}, nil, false)
}

// Probe checks that the server answers at all; any non-5xx status counts.
func (c *Client) Probe(ctx context.Context) (int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(c.baseURL + "/")
	c.setHeaders(req)
	if err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx)); err != nil {
		return 0, fmt.Errorf("probe failed: %w", err)
	}
	status := resp.StatusCode()
	if status >= 500 {
		return status, fmt.Errorf("probe: status=%d", status)
	}
	return status, nil
}

func (c *Client) setHeaders(req *fasthttp.Request) {
	if c.headers == nil {
		return
	}
	for k, v := range c.headers() {
		if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
			req.Header.Set(k, v)
		}
	}
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in any, out any, retry bool) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(method)
	req.SetRequestURI(c.baseURL + path)
	req.Header.SetContentType("application/json")
	c.setHeaders(req)

	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		req.SetBody(payload)
	}

	attempts := 1
	if retry {
		attempts = c.retryMax
		if attempts <= 0 {
			attempts = 1
		}
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			if attempt == attempts {
				return fmt.Errorf("%s request failed: %w", op, err)
			}
			lastErr = err
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status >= 400 && status < 500 {
			return rejection(op, status, resp.Body())
		}
		if status < 200 || status >= 300 {
			err := fmt.Errorf("%s: server error status=%d body=%s", op, status, truncate(string(resp.Body()), 512))
			if attempt == attempts || !shouldRetryStatus(status) {
				return err
			}
			lastErr = err
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return lastErr
			}
			continue
		}

		if out != nil {
			if err := json.Unmarshal(resp.Body(), out); err != nil {
				return fmt.Errorf("%s: decode response: %w", op, err)
			}
		}
		return nil
	}

	if lastErr == nil {
		lastErr = errors.New("unknown error")
	}
	return lastErr
}

func rejection(op string, status int, body []byte) error {
	var eb wire.ErrorBody
	msg := ""
	if err := json.Unmarshal(body, &eb); err == nil {
		msg = firstNonEmpty(eb.Message, eb.Error)
	}
	if msg == "" {
		msg = truncate(strings.TrimSpace(string(body)), 256)
	}
	return &RequestError{Op: op, Status: status, Message: msg}
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	if dl, ok := ctx.Deadline(); ok {
		clientDL := time.Now().Add(c.defaultTimeout)
		if dl.Before(clientDL) {
			return dl
		}
		return clientDL
	}
	return time.Now().Add(c.defaultTimeout)
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

func backoffDuration(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	base := 100 * time.Millisecond
	return time.Duration(1<<uint(attempt-1)) * base // 100ms, 200ms ...
}

func shouldRetryStatus(code int) bool {
	switch code {
	case 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
