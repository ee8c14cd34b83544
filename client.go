package onesecmail

import (
	"context"
	"sort"
	"sync"

	"github.com/onesecmail/client-go/internal/api"
)

// Client is the main 1secmail client for creating and opening mailboxes.
// Mailboxes obtained from a client are tracked so Close can stop their
// watches.
type Client struct {
	apiClient *api.Client
	mailboxes map[string]*Mailbox // keyed by email address
	mu        sync.RWMutex
	closed    bool
}

// buildAPIClient creates and configures an API client from the given config.
func buildAPIClient(cfg *clientConfig) (*api.Client, error) {
	var apiOpts []api.Option
	if cfg.baseURL != "" {
		apiOpts = append(apiOpts, api.WithBaseURL(cfg.baseURL))
	}
	if cfg.mailboxURL != "" {
		apiOpts = append(apiOpts, api.WithMailboxURL(cfg.mailboxURL))
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeoutSet {
		apiOpts = append(apiOpts, api.WithTimeout(cfg.timeout))
	}
	if cfg.retriesSet {
		apiOpts = append(apiOpts, api.WithRetries(cfg.retries))
	}
	return api.New(apiOpts...)
}

// New creates a new 1secmail client. No request is made until a method
// needs one.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	apiClient, err := buildAPIClient(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiClient: apiClient,
		mailboxes: make(map[string]*Mailbox),
	}, nil
}

// checkClosed returns ErrClientClosed if the client has been closed.
func (c *Client) checkClosed() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	return nil
}

// GenRandomMailbox returns count freshly generated addresses without
// opening them. count must be between 1 and 500.
func (c *Client) GenRandomMailbox(ctx context.Context, count int, opts ...CallOption) ([]string, error) {
	return c.apiClient.GenRandomMailbox(ctx, count, opts...)
}

// GetDomainList returns the domains the provider serves.
func (c *Client) GetDomainList(ctx context.Context, opts ...CallOption) ([]string, error) {
	return c.apiClient.GetDomainList(ctx, opts...)
}

// CreateMailbox opens a mailbox on a freshly generated address.
func (c *Client) CreateMailbox(ctx context.Context, opts ...CallOption) (*Mailbox, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	addresses, err := c.apiClient.GenRandomMailbox(ctx, 1, opts...)
	if err != nil {
		return nil, err
	}
	return c.registerMailbox(addresses[0])
}

// OpenMailbox validates address and opens its mailbox. The address is
// lower-cased; it must be a valid email address whose local part is not
// reserved and whose domain the provider serves. Failures are reported as
// *AddressError. Opening an address twice returns the same Mailbox.
func (c *Client) OpenMailbox(ctx context.Context, address string, opts ...CallOption) (*Mailbox, error) {
	if err := c.checkClosed(); err != nil {
		return nil, err
	}

	normalized, err := c.validateAddress(ctx, address, opts...)
	if err != nil {
		return nil, err
	}
	return c.registerMailbox(normalized)
}

// registerMailbox returns the tracked mailbox for address, creating it if needed.
func (c *Client) registerMailbox(address string) (*Mailbox, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if m, ok := c.mailboxes[address]; ok {
		return m, nil
	}
	m := newMailbox(c, address)
	c.mailboxes[address] = m
	return m, nil
}

// GetMailbox returns an opened mailbox by email address.
func (c *Client) GetMailbox(emailAddress string) (*Mailbox, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.mailboxes[emailAddress]
	return m, ok
}

// Mailboxes returns all mailboxes opened by this client, sorted by address.
func (c *Client) Mailboxes() []*Mailbox {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*Mailbox, 0, len(c.mailboxes))
	for _, m := range c.mailboxes {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].emailAddress < result[j].emailAddress
	})
	return result
}

// MailboxEvent represents a message arriving in a specific mailbox.
type MailboxEvent struct {
	Mailbox *Mailbox
	Message *ShortMessage
}

// WatchMailboxes returns a channel that receives new messages from several
// mailboxes. Only mailboxes that are polling produce events. Messages of one
// mailbox arrive in ascending id order. The channel is not closed when the
// context is cancelled; use a select on ctx.Done() to detect cancellation.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
//	defer cancel()
//
//	ch := client.WatchMailboxes(ctx, mb1, mb2)
//	for {
//	    select {
//	    case <-ctx.Done():
//	        return
//	    case event := <-ch:
//	        fmt.Printf("Message in %s: %s\n", event.Mailbox.EmailAddress(), event.Message.Subject)
//	    }
//	}
func (c *Client) WatchMailboxes(ctx context.Context, mailboxes ...*Mailbox) <-chan *MailboxEvent {
	ch := make(chan *MailboxEvent, 16)

	if len(mailboxes) == 0 {
		close(ch)
		return ch
	}

	unsubscribes := make([]func(), 0, len(mailboxes))
	for _, m := range mailboxes {
		unsub := m.messages.subscribe(func(msg *ShortMessage) {
			// Blocks the mailbox's watch until the reader keeps up or leaves.
			select {
			case ch <- &MailboxEvent{Mailbox: m, Message: msg}:
			case <-ctx.Done():
			}
		})
		unsubscribes = append(unsubscribes, unsub)
	}

	// The channel stays open so an in-flight callback never sends on a
	// closed channel.
	go func() {
		<-ctx.Done()
		for _, unsub := range unsubscribes {
			unsub()
		}
	}()

	return ch
}

// WatchMailboxesFunc calls fn for each event from several mailboxes until
// the context is cancelled.
func (c *Client) WatchMailboxesFunc(ctx context.Context, fn func(*MailboxEvent), mailboxes ...*Mailbox) {
	events := c.WatchMailboxes(ctx, mailboxes...)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			fn(event)
		}
	}
}

// Close stops polling on every tracked mailbox and drops all subscriptions.
// Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	for _, m := range c.mailboxes {
		m.StopPolling()
		m.messages.clear()
		m.errs.clear()
	}
	c.mailboxes = make(map[string]*Mailbox)

	return nil
}
