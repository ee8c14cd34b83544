package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/onesecmail/client-go/internal/telemetry"
)

// Default client configuration values.
const (
	DefaultBaseURL    = "https://www.1secmail.com/api/v1/"
	DefaultMailboxURL = "https://www.1secmail.com/mailbox"
	DefaultRetries    = 2
	DefaultTimeout    = 10 * time.Second
)

const userAgent = "onesecmail-go"

// Client is the HTTP API client.
type Client struct {
	baseURL    string
	mailboxURL string
	httpClient *http.Client
	retries    int
	timeout    time.Duration
	retry      *RetryConfig
}

// Option configures the API client.
type Option func(*Client)

// WithBaseURL sets the API endpoint that receives action requests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithMailboxURL sets the endpoint that receives mailbox deletion forms.
func WithMailboxURL(url string) Option {
	return func(c *Client) {
		c.mailboxURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetries sets the default number of retries per call.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.retries = retries
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRetryConfig replaces the retry backoff policy.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *Client) {
		if cfg != nil {
			c.retry = cfg
		}
	}
}

// New creates a new API client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:    DefaultBaseURL,
		mailboxURL: DefaultMailboxURL,
		httpClient: &http.Client{},
		retries:    DefaultRetries,
		timeout:    DefaultTimeout,
		retry:      DefaultRetryConfig(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := validateLimits(c.retries, c.timeout); err != nil {
		return nil, err
	}
	for _, raw := range []string{c.baseURL, c.mailboxURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid endpoint URL %q", raw)
		}
	}

	return c, nil
}

// Retries returns the default number of retries per call.
func (c *Client) Retries() int {
	return c.retries
}

// Timeout returns the default per-attempt timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// CallOption overrides the client-wide limits for a single call.
type CallOption func(*callConfig)

type callConfig struct {
	retries int
	timeout time.Duration
}

// CallRetries sets the number of retries for this call. Zero disables retries.
func CallRetries(n int) CallOption {
	return func(c *callConfig) {
		c.retries = n
	}
}

// CallTimeout sets the per-attempt timeout for this call.
func CallTimeout(d time.Duration) CallOption {
	return func(c *callConfig) {
		c.timeout = d
	}
}

func (c *Client) resolve(opts []CallOption) (callConfig, error) {
	cfg := callConfig{retries: c.retries, timeout: c.timeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validateLimits(cfg.retries, cfg.timeout); err != nil {
		return callConfig{}, err
	}
	return cfg, nil
}

func validateLimits(retries int, timeout time.Duration) error {
	if retries < 0 {
		return &RangeError{Param: "retry", Constraint: "must be non-negative", Value: retries}
	}
	if timeout <= 0 {
		return &RangeError{Param: "timeout", Constraint: "must be positive", Value: timeout}
	}
	return nil
}

// Response is a fully read provider response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Attempts is the number of HTTP attempts made, retries included.
	Attempts int
}

// Request performs one GET against the API endpoint with the given query
// parameters. The "action" parameter names the provider operation.
func (c *Client) Request(ctx context.Context, params url.Values, opts ...CallOption) (*Response, error) {
	cfg, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}
	target := c.baseURL + "?" + params.Encode()
	return c.send(ctx, params.Get("action"), cfg, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
}

// postForm performs one form POST against the mailbox endpoint.
func (c *Client) postForm(ctx context.Context, form url.Values, opts ...CallOption) (*Response, error) {
	cfg, err := c.resolve(opts)
	if err != nil {
		return nil, err
	}
	encoded := form.Encode()
	return c.send(ctx, form.Get("action"), cfg, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.mailboxURL, strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
}

type requestFactory func(ctx context.Context) (*http.Request, error)

func (c *Client) send(ctx context.Context, action string, cfg callConfig, newReq requestFactory) (*Response, error) {
	start := time.Now()
	resp, err := c.sendWithRetry(ctx, action, cfg, newReq)

	attempts, status := 0, 0
	if resp != nil {
		attempts, status = resp.Attempts, resp.StatusCode
	}
	var te *TransportError
	if errors.As(err, &te) {
		attempts, status = te.Attempts, te.StatusCode
	}
	telemetry.RecordAPIRequest(ctx, action, attempts, status, time.Since(start), err)

	return resp, err
}

func (c *Client) sendWithRetry(ctx context.Context, action string, cfg callConfig, newReq requestFactory) (*Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, cfg.timeout, newReq)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			resp.Attempts = attempt + 1
			return resp, nil
		}

		failure := &TransportError{Action: action, Attempts: attempt + 1, Err: err}
		retryable := false
		if err != nil {
			// Cancellation of the caller's context is final.
			retryable = ctx.Err() == nil
		} else {
			failure.StatusCode = resp.StatusCode
			retryable = c.retry.RetryableStatus(resp.StatusCode)
		}

		if !retryable || attempt >= cfg.retries {
			return nil, failure
		}
		delay, ok := c.retry.Delay(attempt, resp, time.Now())
		if !ok {
			return nil, failure
		}
		if err := sleep(ctx, delay); err != nil {
			failure.Err = err
			return nil, failure
		}
	}
}

// attempt performs a single exchange and reads the whole body under the
// attempt deadline, so callers never see partial bodies.
func (c *Client) attempt(ctx context.Context, timeout time.Duration, newReq requestFactory) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := newReq(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
