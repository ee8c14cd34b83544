package delivery

import (
	"context"
	"time"

	"github.com/onesecmail/client-go/internal/api"
)

// Lister lists the messages of a mailbox. *api.Client satisfies it.
type Lister interface {
	GetMessages(ctx context.Context, local, domain string, opts ...api.CallOption) ([]api.ShortMessage, error)
}

// MessageHandler is invoked once per newly arrived message, on the poller's
// goroutine, in ascending id order.
type MessageHandler func(msg api.ShortMessage)

// ErrorHandler is invoked when a tick fails for any reason other than Stop.
type ErrorHandler func(err error)

// Config holds the configuration of a Poller.
type Config struct {
	// Lister fetches the message list on every tick.
	Lister Lister

	// Local and Domain identify the watched mailbox.
	Local  string
	Domain string

	// OnMessage receives new messages. May be nil.
	OnMessage MessageHandler

	// OnError receives tick failures. May be nil.
	OnError ErrorHandler

	// TickTimeout bounds the list request of a single tick.
	// If zero, defaults to DefaultTickTimeout.
	TickTimeout time.Duration
}

// Polling configuration values.
const (
	DefaultInterval    = 5 * time.Second
	MinInterval        = time.Second
	DefaultTickTimeout = 5 * time.Second
)
