package onesecmail

import (
	"context"
	"time"

	"github.com/onesecmail/client-go/internal/api"
	"github.com/onesecmail/client-go/internal/delivery"
)

const (
	// MinPollInterval is the smallest interval StartPolling accepts.
	MinPollInterval = delivery.MinInterval

	// DefaultPollInterval is the interval used by waits that start polling
	// themselves.
	DefaultPollInterval = delivery.DefaultInterval
)

// Mailbox is an opened 1secmail address. It lists and clears messages and
// can watch the address for new ones.
type Mailbox struct {
	client       *Client
	emailAddress string
	local        string
	domain       string

	poller   *delivery.Poller
	messages *subscriptionManager[*ShortMessage]
	errs     *subscriptionManager[error]
}

func newMailbox(c *Client, emailAddress string) *Mailbox {
	local, domain := splitAddress(emailAddress)
	m := &Mailbox{
		client:       c,
		emailAddress: emailAddress,
		local:        local,
		domain:       domain,
		messages:     newSubscriptionManager[*ShortMessage](),
		errs:         newSubscriptionManager[error](),
	}
	m.poller = delivery.NewPoller(delivery.Config{
		Lister: c.apiClient,
		Local:  local,
		Domain: domain,
		OnMessage: func(msg api.ShortMessage) {
			m.messages.notify(newShortMessage(m, msg))
		},
		OnError: func(err error) {
			m.errs.notify(err)
		},
	})
	return m
}

// EmailAddress returns the mailbox email address.
func (m *Mailbox) EmailAddress() string {
	return m.emailAddress
}

// Local returns the part of the address before the @.
func (m *Mailbox) Local() string {
	return m.local
}

// Domain returns the part of the address after the @.
func (m *Mailbox) Domain() string {
	return m.domain
}

// GetMessages lists the messages currently in the mailbox, in the order the
// provider returns them.
func (m *Mailbox) GetMessages(ctx context.Context, opts ...CallOption) ([]*ShortMessage, error) {
	msgs, err := m.client.apiClient.GetMessages(ctx, m.local, m.domain, opts...)
	if err != nil {
		return nil, err
	}

	result := make([]*ShortMessage, 0, len(msgs))
	for _, msg := range msgs {
		result = append(result, newShortMessage(m, msg))
	}
	return result, nil
}

// ReadMessage reads message id. It returns ErrMessageNotFound if the
// mailbox has no such message.
func (m *Mailbox) ReadMessage(ctx context.Context, id int64, opts ...CallOption) (*Message, error) {
	msg, err := m.client.apiClient.ReadMessage(ctx, m.local, m.domain, id, opts...)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}
	return newMessage(m, msg), nil
}

// Download fetches the bytes of attachment filename of message id. It
// returns ErrAttachmentNotFound if the file does not exist.
func (m *Mailbox) Download(ctx context.Context, id int64, filename string, opts ...CallOption) ([]byte, error) {
	data, err := m.client.apiClient.Download(ctx, m.local, m.domain, id, filename, opts...)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrAttachmentNotFound
	}
	return data, nil
}

// ClearMessages deletes every message in the mailbox.
func (m *Mailbox) ClearMessages(ctx context.Context, opts ...CallOption) error {
	return m.client.apiClient.DeleteMailbox(ctx, m.local, m.domain, opts...)
}

// StartPolling starts watching the mailbox, listing it every interval.
// New messages go to OnNewMessage subscribers in ascending id order and
// failed polls go to OnError subscribers. It returns false if polling is
// already running and a *RangeError if interval is below MinPollInterval.
func (m *Mailbox) StartPolling(interval time.Duration) (bool, error) {
	return m.poller.Start(interval)
}

// StopPolling stops the watch and aborts an in-flight poll. It returns
// false if polling was not running. Messages already reported are not
// reported again after a restart.
func (m *Mailbox) StopPolling() bool {
	return m.poller.Stop()
}

// IsPolling reports whether the mailbox is being watched.
func (m *Mailbox) IsPolling() bool {
	return m.poller.Started()
}

// OnNewMessage registers fn for messages found by polling. fn runs on the
// polling goroutine and must not block for long.
func (m *Mailbox) OnNewMessage(fn func(*ShortMessage)) Subscription {
	return subscriptionFunc(m.messages.subscribe(fn))
}

// OnError registers fn for polling failures. Stopping the watch is not
// reported.
func (m *Mailbox) OnError(fn func(error)) Subscription {
	return subscriptionFunc(m.errs.subscribe(fn))
}
