// Package fakeprovider is an in-memory stand-in for the 1secmail HTTP API,
// used by tests.
package fakeprovider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultDomains are served when New is called without domains.
var DefaultDomains = []string{"1secmail.com", "1secmail.org", "esiix.com"}

// File is an attachment stored with a message.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a delivered message. ID and Date are filled in by Deliver
// when zero.
type Message struct {
	ID          int64
	From        string
	Subject     string
	Date        string
	TextBody    string
	HTMLBody    string
	Attachments []File
}

// Provider serves the provider actions from memory. Message lists are
// answered newest first.
type Provider struct {
	mu        sync.Mutex
	domains   []string
	mailboxes map[string][]*Message // keyed by login@domain
	nextID    int64
	generated int
	hits      map[string]int
	failures  map[string][]int
}

// New creates a provider serving domains.
func New(domains ...string) *Provider {
	if len(domains) == 0 {
		domains = DefaultDomains
	}
	return &Provider{
		domains:   domains,
		mailboxes: make(map[string][]*Message),
		nextID:    1000,
		hits:      make(map[string]int),
		failures:  make(map[string][]int),
	}
}

// Server starts an httptest server for p. The API endpoint is
// URL + "/api/v1/" and the deletion form endpoint is URL + "/mailbox".
func (p *Provider) Server() *httptest.Server {
	return httptest.NewServer(p)
}

// Deliver stores msg in the mailbox of address and returns its id.
func (p *Provider) Deliver(address string, msg Message) int64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if msg.ID == 0 {
		p.nextID++
		msg.ID = p.nextID
	} else if msg.ID > p.nextID {
		p.nextID = msg.ID
	}
	if msg.Date == "" {
		msg.Date = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(msg.ID) * time.Second).Format(time.DateTime)
	}
	key := strings.ToLower(address)
	p.mailboxes[key] = append(p.mailboxes[key], &msg)
	return msg.ID
}

// Count returns the number of messages stored for address.
func (p *Provider) Count(address string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.mailboxes[strings.ToLower(address)])
}

// Hits returns how many requests named action have been served.
func (p *Provider) Hits(action string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[action]
}

// FailNext makes the next len(statuses) requests for action answer with
// the given statuses, in order.
func (p *Provider) FailNext(action string, statuses ...int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[action] = append(p.failures[action], statuses...)
}

// ServeHTTP implements http.Handler.
func (p *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var action string
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		action = r.PostForm.Get("action")
	} else {
		action = r.URL.Query().Get("action")
	}

	p.mu.Lock()
	p.hits[action]++
	if queued := p.failures[action]; len(queued) > 0 {
		status := queued[0]
		p.failures[action] = queued[1:]
		p.mu.Unlock()
		w.WriteHeader(status)
		return
	}
	p.mu.Unlock()

	q := r.URL.Query()
	switch {
	case r.Method == http.MethodPost && action == "deleteMailbox":
		p.deleteMailbox(w, r.PostForm.Get("login"), r.PostForm.Get("domain"))
	case r.Method != http.MethodGet:
		w.WriteHeader(http.StatusMethodNotAllowed)
	case action == "genRandomMailbox":
		p.genRandomMailbox(w, q.Get("count"))
	case action == "getDomainList":
		writeJSON(w, p.domains)
	case action == "getMessages":
		p.getMessages(w, q.Get("login"), q.Get("domain"))
	case action == "readMessage":
		p.readMessage(w, q.Get("login"), q.Get("domain"), q.Get("id"))
	case action == "download":
		p.download(w, q.Get("login"), q.Get("domain"), q.Get("id"), q.Get("file"))
	default:
		http.Error(w, "Wrong action", http.StatusBadRequest)
	}
}

func (p *Provider) genRandomMailbox(w http.ResponseWriter, countParam string) {
	count, err := strconv.Atoi(countParam)
	if err != nil || count < 1 {
		count = 1
	}

	p.mu.Lock()
	addresses := make([]string, 0, count)
	for i := 0; i < count; i++ {
		p.generated++
		domain := p.domains[p.generated%len(p.domains)]
		addresses = append(addresses, fmt.Sprintf("rnd%04d@%s", p.generated, domain))
	}
	p.mu.Unlock()

	writeJSON(w, addresses)
}

func (p *Provider) getMessages(w http.ResponseWriter, login, domain string) {
	p.mu.Lock()
	stored := p.mailboxes[key(login, domain)]
	list := make([]map[string]any, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		m := stored[i]
		list = append(list, map[string]any{
			"id":      m.ID,
			"from":    m.From,
			"subject": m.Subject,
			"date":    m.Date,
		})
	}
	p.mu.Unlock()

	writeJSON(w, list)
}

func (p *Provider) readMessage(w http.ResponseWriter, login, domain, idParam string) {
	m := p.find(login, domain, idParam)
	if m == nil {
		w.Write([]byte("Messagenotfound"))
		return
	}

	attachments := make([]map[string]any, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		attachments = append(attachments, map[string]any{
			"filename":    a.Filename,
			"contentType": a.ContentType,
			"size":        len(a.Data),
		})
	}
	body := m.HTMLBody
	if body == "" {
		body = m.TextBody
	}
	writeJSON(w, map[string]any{
		"id":          m.ID,
		"from":        m.From,
		"subject":     m.Subject,
		"date":        m.Date,
		"attachments": attachments,
		"body":        body,
		"textBody":    m.TextBody,
		"htmlBody":    m.HTMLBody,
	})
}

func (p *Provider) download(w http.ResponseWriter, login, domain, idParam, filename string) {
	m := p.find(login, domain, idParam)
	if m == nil {
		return
	}
	for _, a := range m.Attachments {
		if a.Filename == filename {
			w.Header().Set("Content-Type", a.ContentType)
			w.Header().Set("Content-Disposition", `attachment; filename="`+a.Filename+`"`)
			w.Write(a.Data)
			return
		}
	}
}

func (p *Provider) deleteMailbox(w http.ResponseWriter, login, domain string) {
	p.mu.Lock()
	delete(p.mailboxes, key(login, domain))
	p.mu.Unlock()
	w.Write([]byte("<html><body>Mailbox deleted</body></html>"))
}

func (p *Provider) find(login, domain, idParam string) *Message {
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.mailboxes[key(login, domain)] {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func key(login, domain string) string {
	return strings.ToLower(login + "@" + domain)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
