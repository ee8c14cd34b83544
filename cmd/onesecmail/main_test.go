package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	onesecmail "github.com/onesecmail/client-go"
	"github.com/onesecmail/client-go/internal/digest"
	"github.com/onesecmail/client-go/internal/fakeprovider"
)

// testCLI runs the CLI against an in-memory provider.
type testCLI struct {
	t        *testing.T
	provider *fakeprovider.Provider
	url      string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	provider := fakeprovider.New()
	server := provider.Server()
	t.Cleanup(server.Close)
	return &testCLI{t: t, provider: provider, url: server.URL}
}

// flags points the CLI at the test provider.
func (c *testCLI) flags() []string {
	return []string{
		"--base-url", c.url + "/api/v1/",
		"--mailbox-url", c.url + "/mailbox",
		"--retries", "0",
	}
}

func (c *testCLI) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(append(c.flags(), args...), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// client returns a library client for the do* functions.
func (c *testCLI) client() *onesecmail.Client {
	c.t.Helper()
	client, err := onesecmail.New(
		onesecmail.WithBaseURL(c.url+"/api/v1/"),
		onesecmail.WithMailboxURL(c.url+"/mailbox"),
		onesecmail.WithRetries(0),
	)
	if err != nil {
		c.t.Fatalf("New() error = %v", err)
	}
	c.t.Cleanup(func() { client.Close() })
	return client
}

func TestRunNoArgsPrintsHelp(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 0 {
		t.Fatalf("run = %d, want 0; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Usage:") {
		t.Errorf("stdout = %q, want usage", stdout.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"bogus"}, &stdout, &stderr); code != 1 {
		t.Fatalf("run = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), `unknown command "bogus"`) {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run = %d, want 0", code)
	}
	if !strings.HasPrefix(stdout.String(), "onesecmail dev") {
		t.Errorf("stdout = %q", stdout.String())
	}
}

// --- gen / domains ---

func TestGen(t *testing.T) {
	cli := newTestCLI(t)

	code, stdout, stderr := cli.run("gen", "3")
	if code != 0 {
		t.Fatalf("gen = %d; stderr: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d addresses, want 3: %q", len(lines), stdout)
	}
	for _, l := range lines {
		if !strings.Contains(l, "@") {
			t.Errorf("address %q has no @", l)
		}
	}
}

func TestGenInvalidCount(t *testing.T) {
	cli := newTestCLI(t)

	for _, arg := range []string{"x", "0", "501"} {
		code, _, stderr := cli.run("gen", arg)
		if code != 1 {
			t.Errorf("gen %s = %d, want 1", arg, code)
		}
		if !strings.HasPrefix(stderr, "onesecmail gen: ") {
			t.Errorf("gen %s stderr = %q", arg, stderr)
		}
	}
	if got := cli.provider.Hits("genRandomMailbox"); got != 0 {
		t.Errorf("requests = %d, want 0", got)
	}
}

func TestDomains(t *testing.T) {
	cli := newTestCLI(t)

	code, stdout, stderr := cli.run("domains")
	if code != 0 {
		t.Fatalf("domains = %d; stderr: %s", code, stderr)
	}
	want := strings.Join(fakeprovider.DefaultDomains, "\n") + "\n"
	if stdout != want {
		t.Errorf("stdout = %q, want %q", stdout, want)
	}
}

func TestDomainsTransportError(t *testing.T) {
	cli := newTestCLI(t)
	cli.provider.FailNext("getDomainList", http.StatusBadGateway)

	code, _, stderr := cli.run("domains")
	if code != 1 {
		t.Fatalf("domains = %d, want 1", code)
	}
	if !strings.Contains(stderr, "502") {
		t.Errorf("stderr = %q, want status code", stderr)
	}
}

// --- messages / read ---

func TestMessages(t *testing.T) {
	cli := newTestCLI(t)
	first := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "a@example.com", Subject: "first"})
	second := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "b@example.com", Subject: "second"})

	code, stdout, stderr := cli.run("messages", "Demo@1secmail.com")
	if code != 0 {
		t.Fatalf("messages = %d; stderr: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q, want header and 2 rows", stdout)
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("header = %q", lines[0])
	}
	// Oldest first even though the provider lists newest first.
	if !strings.HasPrefix(lines[1], itoa(first)) || !strings.HasPrefix(lines[2], itoa(second)) {
		t.Errorf("rows out of order: %q", lines[1:])
	}
}

func TestMessagesJSON(t *testing.T) {
	cli := newTestCLI(t)
	id := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "a@example.com", Subject: "hi"})

	code, stdout, stderr := cli.run("messages", "demo@1secmail.com", "--json")
	if code != 0 {
		t.Fatalf("messages = %d; stderr: %s", code, stderr)
	}
	var got []onesecmail.ShortMessageData
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("unmarshal: %v; stdout: %s", err, stdout)
	}
	if len(got) != 1 || got[0].ID != id || got[0].Subject != "hi" {
		t.Errorf("messages = %+v", got)
	}
}

func TestMessagesEmpty(t *testing.T) {
	cli := newTestCLI(t)

	code, stdout, _ := cli.run("messages", "demo@1secmail.com")
	if code != 0 {
		t.Fatalf("messages = %d", code)
	}
	if stdout != "No messages for demo@1secmail.com\n" {
		t.Errorf("stdout = %q", stdout)
	}

	code, stdout, _ = cli.run("messages", "demo@1secmail.com", "--json")
	if code != 0 || strings.TrimSpace(stdout) != "[]" {
		t.Errorf("messages --json = %d, %q", code, stdout)
	}
}

func TestMessagesRejectsAddress(t *testing.T) {
	cli := newTestCLI(t)

	tests := []struct {
		address string
		want    string
	}{
		{"not-an-address", onesecmail.ErrInvalidAddress.Error()},
		{"admin@1secmail.com", onesecmail.ErrForbiddenLogin.Error()},
		{"demo@example.com", onesecmail.ErrUnsupportedDomain.Error()},
	}
	for _, tt := range tests {
		code, _, stderr := cli.run("messages", tt.address)
		if code != 1 {
			t.Errorf("messages %s = %d, want 1", tt.address, code)
		}
		if !strings.Contains(stderr, tt.want) {
			t.Errorf("messages %s stderr = %q, want %q", tt.address, stderr, tt.want)
		}
	}
}

func TestRead(t *testing.T) {
	cli := newTestCLI(t)
	id := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{
		From:     "a@example.com",
		Subject:  "Invoice",
		TextBody: "plain body",
		HTMLBody: "<b>html body</b>",
		Attachments: []fakeprovider.File{
			{Filename: "inv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
		},
	})

	code, stdout, stderr := cli.run("read", "demo@1secmail.com", itoa(id))
	if code != 0 {
		t.Fatalf("read = %d; stderr: %s", code, stderr)
	}
	for _, want := range []string{"Subject: Invoice", "From:    a@example.com", "inv.pdf (application/pdf, 4 bytes)", "plain body"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}

	code, stdout, _ = cli.run("read", "demo@1secmail.com", itoa(id), "--html")
	if code != 0 || !strings.Contains(stdout, "<b>html body</b>") {
		t.Errorf("read --html = %d, %q", code, stdout)
	}

	code, stdout, _ = cli.run("read", "demo@1secmail.com", itoa(id), "--json")
	if code != 0 {
		t.Fatalf("read --json = %d", code)
	}
	var msg onesecmail.MessageData
	if err := json.Unmarshal([]byte(stdout), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.ID != id || len(msg.Attachments) != 1 {
		t.Errorf("message = %+v", msg)
	}
}

func TestReadErrors(t *testing.T) {
	cli := newTestCLI(t)

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"non-numeric", "abc", "invalid message id"},
		{"zero", "0", "invalid message id"},
		{"missing", "999999", onesecmail.ErrMessageNotFound.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := cli.run("read", "demo@1secmail.com", tt.id)
			if code != 1 {
				t.Errorf("read = %d, want 1", code)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("stderr = %q, want %q", stderr, tt.want)
			}
		})
	}
}

// --- download / clear ---

func TestDownload(t *testing.T) {
	cli := newTestCLI(t)
	data := []byte("col1,col2\n1,2\n")
	id := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{
		From:        "a@example.com",
		Subject:     "data",
		Attachments: []fakeprovider.File{{Filename: "data.csv", ContentType: "text/csv", Data: data}},
	})
	out := filepath.Join(t.TempDir(), "saved.csv")

	code, stdout, stderr := cli.run("download", "demo@1secmail.com", itoa(id), "data.csv", "-o", out)
	if code != 0 {
		t.Fatalf("download = %d; stderr: %s", code, stderr)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file = %q, want %q", got, data)
	}
	if !strings.Contains(stdout, digest.Of(data).String()) {
		t.Errorf("stdout = %q, want digest", stdout)
	}
}

func TestDownloadUnknownAttachment(t *testing.T) {
	cli := newTestCLI(t)
	id := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "a@example.com", Subject: "none"})

	code, _, stderr := cli.run("download", "demo@1secmail.com", itoa(id), "nope.bin", "-o", filepath.Join(t.TempDir(), "x"))
	if code != 1 {
		t.Fatalf("download = %d, want 1", code)
	}
	if !strings.Contains(stderr, onesecmail.ErrAttachmentNotFound.Error()) {
		t.Errorf("stderr = %q", stderr)
	}
	if got := cli.provider.Hits("download"); got != 0 {
		t.Errorf("download requests = %d, want 0", got)
	}
}

func TestClear(t *testing.T) {
	cli := newTestCLI(t)
	cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "a@example.com", Subject: "x"})

	code, stdout, stderr := cli.run("clear", "demo@1secmail.com")
	if code != 0 {
		t.Fatalf("clear = %d; stderr: %s", code, stderr)
	}
	if stdout != "Cleared demo@1secmail.com\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if got := cli.provider.Count("demo@1secmail.com"); got != 0 {
		t.Errorf("messages left = %d", got)
	}
}

// --- watch / wait ---

func TestWatchPrintsInOrder(t *testing.T) {
	cli := newTestCLI(t)
	first := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "a@example.com", Subject: "one"})
	second := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "b@example.com", Subject: "two"})

	code, stdout, stderr := cli.run("watch", "demo@1secmail.com", "--interval", "1s", "--count", "2")
	if code != 0 {
		t.Fatalf("watch = %d; stderr: %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", stdout)
	}
	if !strings.HasPrefix(lines[0], "Watching demo@1secmail.com every 1s") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "#"+itoa(first)) || !strings.HasPrefix(lines[2], "#"+itoa(second)) {
		t.Errorf("messages = %q", lines[1:])
	}
}

func TestWatchReportsPollErrors(t *testing.T) {
	cli := newTestCLI(t)
	cli.provider.FailNext("getMessages", http.StatusServiceUnavailable)
	cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "a@example.com", Subject: "late"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var stdout, stderr bytes.Buffer
	code := doWatch(ctx, cli.client(), "demo@1secmail.com", watchOptions{interval: time.Second, count: 1}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("doWatch = %d; stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), "poll failed") {
		t.Errorf("stderr = %q, want poll failure", stderr.String())
	}
	if !strings.Contains(stdout.String(), "late") {
		t.Errorf("stdout = %q, want message after recovery", stdout.String())
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	cli := newTestCLI(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	var stdout, stderr bytes.Buffer
	code := doWatch(ctx, cli.client(), "demo@1secmail.com", watchOptions{interval: time.Second}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("doWatch = %d; stderr: %s", code, stderr.String())
	}
	if stderr.Len() > 0 {
		t.Errorf("unexpected stderr: %q", stderr.String())
	}
}

func TestWatchIntervalTooShort(t *testing.T) {
	cli := newTestCLI(t)

	code, _, stderr := cli.run("watch", "demo@1secmail.com", "--interval", "10ms")
	if code != 1 {
		t.Fatalf("watch = %d, want 1", code)
	}
	if !strings.Contains(stderr, "interval") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestWaitExisting(t *testing.T) {
	cli := newTestCLI(t)
	cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "news@example.com", Subject: "Weekly"})
	id := cli.provider.Deliver("demo@1secmail.com", fakeprovider.Message{From: "noreply@example.com", Subject: "Verify your account"})

	code, stdout, stderr := cli.run("wait", "demo@1secmail.com", "--subject-regex", "^Verify", "--interval", "1s")
	if code != 0 {
		t.Fatalf("wait = %d; stderr: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "#"+itoa(id)) {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestWaitTimeout(t *testing.T) {
	cli := newTestCLI(t)

	code, _, stderr := cli.run("wait", "demo@1secmail.com", "--from", "nobody@example.com", "--interval", "1s", "--within", "1500ms")
	if code != 1 {
		t.Fatalf("wait = %d, want 1", code)
	}
	if !strings.Contains(stderr, "no matching message within 1.5s") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestWaitInvalidRegex(t *testing.T) {
	cli := newTestCLI(t)

	code, _, stderr := cli.run("wait", "demo@1secmail.com", "--subject-regex", "(")
	if code != 1 {
		t.Fatalf("wait = %d, want 1", code)
	}
	if !strings.Contains(stderr, "--subject-regex") {
		t.Errorf("stderr = %q", stderr)
	}
}

// --- schema ---

func TestSchema(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"schema"}, &stdout, &stderr); code != 0 {
		t.Fatalf("schema = %d; stderr: %s", code, stderr.String())
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(stdout.Bytes(), &all); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, name := range []string{"ShortMessage", "Message", "Attachment"} {
		if _, ok := all[name]; !ok {
			t.Errorf("schema %s missing", name)
		}
	}
}

func TestSchemaSingleAndUnknown(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"schema", "Message"}, &stdout, &stderr); code != 0 {
		t.Fatalf("schema Message = %d", code)
	}
	if !strings.Contains(stdout.String(), `"title": "1secmail message"`) {
		t.Errorf("stdout = %s", stdout.String())
	}

	stdout.Reset()
	stderr.Reset()
	if code := run([]string{"schema", "Mailbox"}, &stdout, &stderr); code != 1 {
		t.Fatalf("schema Mailbox = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Attachment, Message, ShortMessage") {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
