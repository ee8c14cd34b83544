package fakeprovider

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func get(t *testing.T, base string, params url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(base + "/api/v1/?" + params.Encode())
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestProvider_Lifecycle(t *testing.T) {
	p := New()
	server := p.Server()
	defer server.Close()

	id := p.Deliver("demo@1secmail.com", Message{
		From:        "sender@example.com",
		Subject:     "Hello",
		TextBody:    "hi",
		Attachments: []File{{Filename: "a.txt", ContentType: "text/plain", Data: []byte("abc")}},
	})

	_, body := get(t, server.URL, url.Values{"action": {"getMessages"}, "login": {"demo"}, "domain": {"1secmail.com"}})
	if !strings.Contains(body, `"subject":"Hello"`) {
		t.Errorf("getMessages body = %s", body)
	}

	resp, body := get(t, server.URL, url.Values{
		"action": {"download"}, "login": {"demo"}, "domain": {"1secmail.com"},
		"id": {itoa(id)}, "file": {"a.txt"},
	})
	if resp.Header.Get("Content-Disposition") != `attachment; filename="a.txt"` || body != "abc" {
		t.Errorf("download = %q %q", resp.Header.Get("Content-Disposition"), body)
	}

	form := url.Values{"action": {"deleteMailbox"}, "login": {"demo"}, "domain": {"1secmail.com"}}
	if _, err := http.PostForm(server.URL+"/mailbox", form); err != nil {
		t.Fatalf("POST error = %v", err)
	}
	if p.Count("demo@1secmail.com") != 0 {
		t.Error("mailbox not cleared")
	}

	_, body = get(t, server.URL, url.Values{"action": {"readMessage"}, "login": {"demo"}, "domain": {"1secmail.com"}, "id": {itoa(id)}})
	if body != "Messagenotfound" {
		t.Errorf("readMessage body = %q, want Messagenotfound", body)
	}
}

func TestProvider_FailNext(t *testing.T) {
	p := New()
	server := p.Server()
	defer server.Close()

	p.FailNext("getDomainList", http.StatusServiceUnavailable)

	resp, _ := get(t, server.URL, url.Values{"action": {"getDomainList"}})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
	resp, _ = get(t, server.URL, url.Values{"action": {"getDomainList"}})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if got := p.Hits("getDomainList"); got != 2 {
		t.Errorf("Hits() = %d, want 2", got)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
