package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

// fastRetry keeps retry tests quick.
var fastRetry = &RetryConfig{
	BaseDelay:          time.Millisecond,
	MaxDelay:           5 * time.Millisecond,
	MaxRetryAfter:      time.Second,
	Statuses:           DefaultRetryConfig().Statuses,
	RetryAfterStatuses: DefaultRetryConfig().RetryAfterStatuses,
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{
		WithBaseURL(server.URL + "/api/v1/"),
		WithMailboxURL(server.URL + "/mailbox"),
		WithRetryConfig(fastRetry),
	}, opts...)
	client, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return client
}

func TestNew_DefaultValues(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %s, want %s", client.baseURL, DefaultBaseURL)
	}
	if client.mailboxURL != DefaultMailboxURL {
		t.Errorf("mailboxURL = %s, want %s", client.mailboxURL, DefaultMailboxURL)
	}
	if client.Retries() != 2 {
		t.Errorf("Retries() = %d, want 2", client.Retries())
	}
	if client.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", client.Timeout())
	}
	if client.httpClient == nil {
		t.Error("httpClient is nil")
	}
}

func TestNew_WithOptions(t *testing.T) {
	custom := &http.Client{}
	client, err := New(
		WithBaseURL("https://example.com/api/"),
		WithMailboxURL("https://example.com/mailbox"),
		WithHTTPClient(custom),
		WithRetries(5),
		WithTimeout(time.Minute),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if client.baseURL != "https://example.com/api/" {
		t.Errorf("baseURL = %s, want https://example.com/api/", client.baseURL)
	}
	if client.httpClient != custom {
		t.Error("httpClient not set correctly")
	}
	if client.Retries() != 5 {
		t.Errorf("Retries() = %d, want 5", client.Retries())
	}
	if client.Timeout() != time.Minute {
		t.Errorf("Timeout() = %v, want 1m", client.Timeout())
	}
}

func TestNew_InvalidLimits(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"negative retries", WithRetries(-1)},
		{"zero timeout", WithTimeout(0)},
		{"negative timeout", WithTimeout(-time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("New() error = %v, want ErrOutOfRange", err)
			}
		})
	}
}

func TestNew_InvalidURL(t *testing.T) {
	if _, err := New(WithBaseURL("not a url")); err == nil {
		t.Error("New() should reject a base URL without scheme and host")
	}
}

func TestRequest_SendsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/v1/" {
			t.Errorf("path = %s, want /api/v1/", r.URL.Path)
		}
		if got := r.URL.Query().Get("action"); got != "example" {
			t.Errorf("action = %q, want example", got)
		}
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("User-Agent = %q, want %q", r.Header.Get("User-Agent"), userAgent)
		}
		w.Header().Set("X-Test", "yes")
		w.Write([]byte("hello"))
	})

	resp, err := client.Request(context.Background(), url.Values{"action": {"example"}})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("Body = %q, want hello", resp.Body)
	}
	if resp.Header.Get("X-Test") != "yes" {
		t.Errorf("Header X-Test = %q, want yes", resp.Header.Get("X-Test"))
	}
	if resp.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", resp.Attempts)
	}
}

func TestRequest_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithRetries(0))

	_, err := client.Request(context.Background(), url.Values{"action": {"example"}},
		CallTimeout(50*time.Millisecond))
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Request() error = %v, want ErrTransport", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Request() error = %v, want wrapped context.DeadlineExceeded", err)
	}
}

func TestRequest_Non2xxIsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Request(context.Background(), url.Values{"action": {"example"}})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Request() error = %v, want *TransportError", err)
	}
	if te.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", te.StatusCode)
	}
	if te.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1 (404 is not retryable)", te.Attempts)
	}
}

func TestRequest_RetriesUpToClientDefault(t *testing.T) {
	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Request(context.Background(), url.Values{"action": {"example"}})
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Request() error = %v, want ErrTransport", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("attempts = %d, want 3 (1 + 2 retries)", got)
	}
}

func TestRequest_CallRetriesOverride(t *testing.T) {
	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetries(5))

	_, err := client.Request(context.Background(), url.Values{"action": {"example"}}, CallRetries(0))
	if err == nil {
		t.Fatal("Request() error = nil, want error")
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestRequest_RecoversAfterRetry(t *testing.T) {
	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("[]"))
	})

	resp, err := client.Request(context.Background(), url.Values{"action": {"example"}})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if resp.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", resp.Attempts)
	}
}

func TestRequest_HonorsRetryAfter(t *testing.T) {
	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("[]"))
	})

	resp, err := client.Request(context.Background(), url.Values{"action": {"example"}})
	if err != nil {
		t.Fatalf("Request() error = %v", err)
	}
	if resp.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", resp.Attempts)
	}
}

func TestRequest_RetryAfterTooLong(t *testing.T) {
	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Header().Set("Retry-After", "120")
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Request(context.Background(), url.Values{"action": {"example"}})
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Request() error = %v, want 503 TransportError", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
}

func TestRequest_CancelledContext(t *testing.T) {
	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.Write([]byte("[]"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Request(ctx, url.Values{"action": {"example"}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Request() error = %v, want context.Canceled", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 0 {
		t.Errorf("attempts reaching server = %d, want 0", got)
	}
}

func TestRequest_InvalidCallOptions(t *testing.T) {
	var attempts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
	})

	_, err := client.Request(context.Background(), url.Values{"action": {"example"}}, CallRetries(-1))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Request() error = %v, want ErrOutOfRange", err)
	}
	_, err = client.Request(context.Background(), url.Values{"action": {"example"}}, CallTimeout(0))
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Request() error = %v, want ErrOutOfRange", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 0 {
		t.Errorf("attempts reaching server = %d, want 0", got)
	}
}
