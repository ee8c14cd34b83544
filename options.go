package onesecmail

import (
	"net/http"
	"regexp"
	"time"

	"github.com/onesecmail/client-go/internal/api"
)

const defaultWaitTimeout = 60 * time.Second

// clientConfig holds configuration for the client.
type clientConfig struct {
	baseURL    string
	mailboxURL string
	httpClient *http.Client
	timeout    time.Duration
	retries    int
	timeoutSet bool
	retriesSet bool
}

// waitConfig holds configuration for waiting on messages.
type waitConfig struct {
	subject      string
	subjectRegex *regexp.Regexp
	from         string
	fromRegex    *regexp.Regexp
	predicate    func(*ShortMessage) bool
	timeout      time.Duration
	pollInterval time.Duration
}

// Option configures the client.
type Option func(*clientConfig)

// WaitOption configures message waiting.
type WaitOption func(*waitConfig)

// CallOption overrides the client-wide retry and timeout limits for a
// single call.
type CallOption = api.CallOption

// CallRetries sets the number of retries for one call.
func CallRetries(n int) CallOption {
	return api.CallRetries(n)
}

// CallTimeout sets the per-attempt timeout for one call.
func CallTimeout(d time.Duration) CallOption {
	return api.CallTimeout(d)
}

// WithBaseURL sets the provider API endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithMailboxURL sets the endpoint that accepts mailbox deletion forms.
func WithMailboxURL(url string) Option {
	return func(c *clientConfig) {
		c.mailboxURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the default per-attempt timeout for API calls.
// Default: 10 seconds
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
		c.timeoutSet = true
	}
}

// WithRetries sets the default number of retries for API calls.
// Default: 2
func WithRetries(count int) Option {
	return func(c *clientConfig) {
		c.retries = count
		c.retriesSet = true
	}
}

// WithSubject filters messages by exact subject match.
func WithSubject(subject string) WaitOption {
	return func(c *waitConfig) {
		c.subject = subject
	}
}

// WithSubjectRegex filters messages by subject regex.
func WithSubjectRegex(pattern *regexp.Regexp) WaitOption {
	return func(c *waitConfig) {
		c.subjectRegex = pattern
	}
}

// WithFrom filters messages by exact sender match.
func WithFrom(from string) WaitOption {
	return func(c *waitConfig) {
		c.from = from
	}
}

// WithFromRegex filters messages by sender regex.
func WithFromRegex(pattern *regexp.Regexp) WaitOption {
	return func(c *waitConfig) {
		c.fromRegex = pattern
	}
}

// WithPredicate filters messages by custom predicate.
func WithPredicate(fn func(*ShortMessage) bool) WaitOption {
	return func(c *waitConfig) {
		c.predicate = fn
	}
}

// WithWaitTimeout sets the timeout for waiting.
// Default: 60 seconds
func WithWaitTimeout(timeout time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.timeout = timeout
	}
}

// WithPollInterval sets the polling interval used when the wait has to
// start polling itself. Must be at least one second.
// Default: 5 seconds
func WithPollInterval(interval time.Duration) WaitOption {
	return func(c *waitConfig) {
		c.pollInterval = interval
	}
}

// Matches checks if a message matches the wait criteria.
func (w *waitConfig) Matches(m *ShortMessage) bool {
	if w.subject != "" && m.Subject != w.subject {
		return false
	}
	if w.subjectRegex != nil && !w.subjectRegex.MatchString(m.Subject) {
		return false
	}
	if w.from != "" && m.From != w.from {
		return false
	}
	if w.fromRegex != nil && !w.fromRegex.MatchString(m.From) {
		return false
	}
	if w.predicate != nil && !w.predicate(m) {
		return false
	}
	return true
}
