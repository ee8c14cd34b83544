package api

import (
	"context"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"time"
)

// RetryConfig is the backoff policy between attempts of one call. How many
// retries a call gets is set per call, not here.
//
// The n-th retry waits BaseDelay*2^n plus up to Noise of random delay,
// capped at MaxDelay. A Retry-After header on a RetryAfterStatuses
// response replaces the computed delay; if it asks for longer than
// MaxRetryAfter the call is not retried.
type RetryConfig struct {
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	Noise         time.Duration
	MaxRetryAfter time.Duration

	// Statuses lists the response codes that are retried.
	Statuses []int
	// RetryAfterStatuses lists the codes whose Retry-After header is honored.
	RetryAfterStatuses []int
}

// DefaultRetryConfig returns the default retry policy.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		BaseDelay:     time.Second,
		MaxDelay:      30 * time.Second,
		Noise:         100 * time.Millisecond,
		MaxRetryAfter: time.Minute,
		Statuses: []int{
			http.StatusRequestTimeout,
			http.StatusRequestEntityTooLarge,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout,
			521, 522, 524, // Cloudflare origin errors
		},
		RetryAfterStatuses: []int{
			http.StatusRequestEntityTooLarge,
			http.StatusTooManyRequests,
			http.StatusServiceUnavailable,
		},
	}
}

// RetryableStatus reports whether a response status warrants another attempt.
func (r *RetryConfig) RetryableStatus(statusCode int) bool {
	return slices.Contains(r.Statuses, statusCode)
}

// Backoff returns the computed delay before retry number attempt+1.
func (r *RetryConfig) Backoff(attempt int) time.Duration {
	delay := r.BaseDelay
	for i := 0; i < attempt && (r.MaxDelay <= 0 || delay < r.MaxDelay); i++ {
		delay *= 2
	}
	if r.Noise > 0 {
		delay += rand.N(r.Noise)
	}
	if r.MaxDelay > 0 && delay > r.MaxDelay {
		delay = r.MaxDelay
	}
	return delay
}

// Delay returns how long to wait before retrying after attempt failed with
// resp, which is nil for exchanges that got no response. It returns false
// when the server asked for a longer pause than MaxRetryAfter.
func (r *RetryConfig) Delay(attempt int, resp *Response, now time.Time) (time.Duration, bool) {
	if resp != nil && slices.Contains(r.RetryAfterStatuses, resp.StatusCode) {
		if after, ok := parseRetryAfter(resp.Header.Get("Retry-After"), now); ok {
			if r.MaxRetryAfter > 0 && after > r.MaxRetryAfter {
				return 0, false
			}
			return after, true
		}
	}
	return r.Backoff(attempt), true
}

// parseRetryAfter reads a Retry-After value in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	at, err := http.ParseTime(value)
	if err != nil {
		return 0, false
	}
	return max(at.Sub(now), 0), true
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
