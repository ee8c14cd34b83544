package onesecmail

import (
	"context"
	"sort"
	"time"
)

// Watch returns a channel that receives messages found by polling, in
// ascending id order. Watch does not start polling. A slow reader holds
// up the mailbox's watch until it reads or ctx ends. The channel is not
// closed when the context is cancelled; use a select on ctx.Done() to
// detect cancellation.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
//	defer cancel()
//
//	mailbox.StartPolling(5 * time.Second)
//	ch := mailbox.Watch(ctx)
//	for {
//	    select {
//	    case <-ctx.Done():
//	        return
//	    case msg := <-ch:
//	        fmt.Printf("New message: %s\n", msg.Subject)
//	    }
//	}
func (m *Mailbox) Watch(ctx context.Context) <-chan *ShortMessage {
	ch := make(chan *ShortMessage, 16)

	unsubscribe := m.messages.subscribe(func(msg *ShortMessage) {
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	})

	// The channel stays open so an in-flight callback never sends on a
	// closed channel.
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()

	return ch
}

// WatchFunc calls fn for each message as it arrives until the context is
// cancelled. This is a convenience wrapper around Watch.
//
// Example:
//
//	mailbox.WatchFunc(ctx, func(msg *onesecmail.ShortMessage) {
//	    fmt.Printf("New message: %s\n", msg.Subject)
//	})
func (m *Mailbox) WatchFunc(ctx context.Context, fn func(*ShortMessage)) {
	messages := m.Watch(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-messages:
			if msg != nil {
				fn(msg)
			}
		}
	}
}

// WaitForMessage waits for a message matching the given criteria. Messages
// already in the mailbox are checked first, lowest id first. If the
// mailbox is not polling, polling is started for the duration of the wait.
func (m *Mailbox) WaitForMessage(ctx context.Context, opts ...WaitOption) (*ShortMessage, error) {
	cfg := newWaitConfig(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	// 1. Start watching FIRST to avoid race condition
	messages := m.Watch(ctx)

	// 2. Check existing messages (handles already-arrived case)
	existing, err := m.existingMessages(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range existing {
		if cfg.Matches(msg) {
			return msg, nil
		}
	}

	// 3. Poll for new messages
	stop, err := m.ensurePolling(cfg.pollInterval)
	if err != nil {
		return nil, err
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg := <-messages:
			if msg != nil && cfg.Matches(msg) {
				return msg, nil
			}
		}
	}
}

// WaitForMessageCount waits until at least count matching messages are
// found and returns the first count of them in ascending id order.
func (m *Mailbox) WaitForMessageCount(ctx context.Context, count int, opts ...WaitOption) ([]*ShortMessage, error) {
	if count < 0 {
		return nil, &RangeError{Param: "count", Constraint: "must be non-negative", Value: count}
	}
	if count == 0 {
		return []*ShortMessage{}, nil
	}

	cfg := newWaitConfig(opts)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	// Track seen message IDs to avoid duplicates
	seen := make(map[int64]struct{})
	var results []*ShortMessage

	addIfNew := func(msg *ShortMessage) {
		if _, ok := seen[msg.ID]; ok {
			return
		}
		if cfg.Matches(msg) {
			seen[msg.ID] = struct{}{}
			results = append(results, msg)
		}
	}

	// 1. Start watching FIRST to avoid race condition
	messages := m.Watch(ctx)

	// 2. Check existing messages (handles already-arrived case)
	existing, err := m.existingMessages(ctx)
	if err != nil {
		return nil, err
	}
	for _, msg := range existing {
		addIfNew(msg)
		if len(results) >= count {
			return results[:count], nil
		}
	}

	// 3. Poll for new messages
	stop, err := m.ensurePolling(cfg.pollInterval)
	if err != nil {
		return nil, err
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg := <-messages:
			if msg != nil {
				addIfNew(msg)
				if len(results) >= count {
					return results[:count], nil
				}
			}
		}
	}
}

func newWaitConfig(opts []WaitOption) *waitConfig {
	cfg := &waitConfig{
		timeout:      defaultWaitTimeout,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// validate rejects a wait that could never start polling.
func (c *waitConfig) validate() error {
	if c.pollInterval < MinPollInterval {
		return &RangeError{
			Param:      "pollInterval",
			Constraint: "must be at least " + MinPollInterval.String(),
			Value:      c.pollInterval,
		}
	}
	return nil
}

// existingMessages lists the mailbox sorted by ascending id.
func (m *Mailbox) existingMessages(ctx context.Context) ([]*ShortMessage, error) {
	msgs, err := m.GetMessages(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })
	return msgs, nil
}

// ensurePolling starts polling if it is not running. The returned function
// stops it again only if this call started it.
func (m *Mailbox) ensurePolling(interval time.Duration) (func(), error) {
	started, err := m.StartPolling(interval)
	if err != nil {
		return nil, err
	}
	if !started {
		return func() {}, nil
	}
	return func() { m.StopPolling() }, nil
}
