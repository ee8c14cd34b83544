// Package delivery watches a mailbox for newly arrived messages by polling
// the provider's message list.
//
// # Usage
//
// A [Poller] is bound to one mailbox and a [Lister], normally the API
// client:
//
//	p := delivery.NewPoller(delivery.Config{
//	    Lister:    apiClient,
//	    Local:     "demo",
//	    Domain:    "1secmail.com",
//	    OnMessage: func(msg api.ShortMessage) { ... },
//	    OnError:   func(err error) { ... },
//	})
//	p.Start(delivery.DefaultInterval)
//	defer p.Stop()
//
// # Ticks
//
// Each tick lists the mailbox once, with no retries and a short timeout.
// Messages are sorted by id and only ids above the highest one already
// emitted are delivered, in ascending order. Failed ticks are reported to
// OnError and the watch keeps running. The next tick starts one interval
// after the previous one started, or immediately if the tick took longer.
//
// # Cancellation
//
// Stop aborts the in-flight request and any pending wait. A tick that sees
// the cancellation emits nothing further and does not reschedule. The highest
// emitted id survives a Stop, so a restarted watch does not repeat
// messages.
//
// # Thread Safety
//
// Start and Stop may be called from any goroutine, including from inside
// the handlers. Handlers run on the watch goroutine, one at a time. A
// restarted watch waits for the previous goroutine to return before its
// first tick.
package delivery
