package delivery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/onesecmail/client-go/internal/api"
	"github.com/onesecmail/client-go/internal/apierrors"
	"github.com/onesecmail/client-go/internal/telemetry"
)

// Poller watches one mailbox for new messages. Each started watch runs a
// single goroutine that lists the mailbox, emits messages it has not seen
// and sleeps for whatever is left of the interval.
type Poller struct {
	cfg     Config
	mailbox string

	// Test hooks.
	now   func() time.Time
	after func(d time.Duration) <-chan time.Time

	mu         sync.Mutex
	lastSeenID int64
	cancel     context.CancelFunc
	watchID    string
	done       chan struct{} // closed when the latest run returns
}

// NewPoller creates a stopped poller for the mailbox in cfg.
func NewPoller(cfg Config) *Poller {
	if cfg.TickTimeout <= 0 {
		cfg.TickTimeout = DefaultTickTimeout
	}
	return &Poller{
		cfg:     cfg,
		mailbox: cfg.Local + "@" + cfg.Domain,
		now:     time.Now,
		after:   time.After,
	}
}

// Start begins watching with the given interval between tick starts. The
// first tick runs immediately. It returns false if the poller is already
// started, and a RangeError if interval is below MinInterval.
func (p *Poller) Start(interval time.Duration) (bool, error) {
	if interval < MinInterval {
		return false, &apierrors.RangeError{
			Param:      "interval",
			Constraint: "must be at least " + MinInterval.String(),
			Value:      interval,
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return false, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.watchID = uuid.NewString()
	prev, done := p.done, make(chan struct{})
	p.done = done

	telemetry.RecordWatchLifecycle(ctx, p.watchID, p.mailbox, "start", interval)
	go p.run(ctx, p.watchID, interval, prev, done)
	return true, nil
}

// Stop cancels the running watch, aborting an in-flight request. It
// returns false if the poller was not started. Ticks observing the
// cancellation emit nothing and do not reschedule.
func (p *Poller) Stop() bool {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return false
	}
	p.cancel()
	p.cancel = nil
	watchID := p.watchID
	p.mu.Unlock()

	telemetry.RecordWatchLifecycle(context.Background(), watchID, p.mailbox, "stop", 0)
	return true
}

// Started reports whether a watch is running.
func (p *Poller) Started() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// LastSeenID returns the highest message id emitted so far, 0 if none.
func (p *Poller) LastSeenID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeenID
}

// run drives one watch. It waits for the previous run, which may still be
// inside a handler after Stop, so handlers never overlap.
func (p *Poller) run(ctx context.Context, watchID string, interval time.Duration, prev <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	if prev != nil {
		<-prev
	}

	for {
		start := p.now()
		if !p.tick(ctx, watchID, start) {
			return
		}

		wait := interval - p.now().Sub(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-p.after(wait):
		}
	}
}

// tick performs one list, dedup and emit pass. It returns false when the
// watch was cancelled and must not be rescheduled.
func (p *Poller) tick(ctx context.Context, watchID string, start time.Time) bool {
	msgs, err := p.cfg.Lister.GetMessages(ctx, p.cfg.Local, p.cfg.Domain,
		api.CallRetries(0), api.CallTimeout(p.cfg.TickTimeout))
	if ctx.Err() != nil {
		telemetry.RecordPollTick(ctx, watchID, p.mailbox, telemetry.StatusCancelled, 0, p.now().Sub(start), ctx.Err())
		return false
	}
	if err != nil {
		telemetry.RecordPollTick(ctx, watchID, p.mailbox, telemetry.StatusError, 0, p.now().Sub(start), err)
		if p.cfg.OnError != nil {
			p.cfg.OnError(err)
		}
		return ctx.Err() == nil
	}

	fresh, ok := p.unseen(ctx, msgs)
	if !ok {
		return false
	}
	telemetry.RecordPollTick(ctx, watchID, p.mailbox, telemetry.StatusOK, len(fresh), p.now().Sub(start), nil)

	for _, msg := range fresh {
		if !p.claim(ctx, msg.ID) {
			return false
		}
		if p.cfg.OnMessage != nil {
			p.cfg.OnMessage(msg)
		}
	}
	return ctx.Err() == nil
}

// unseen sorts msgs ascending and keeps those above lastSeenID. Repeated
// ids are kept once. It reports false if ctx is already cancelled.
func (p *Poller) unseen(ctx context.Context, msgs []api.ShortMessage) ([]api.ShortMessage, bool) {
	sorted := make([]api.ShortMessage, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		return nil, false
	}

	fresh := sorted[:0]
	last := p.lastSeenID
	for _, msg := range sorted {
		if msg.ID > last {
			fresh = append(fresh, msg)
			last = msg.ID
		}
	}
	return fresh, true
}

// claim moves lastSeenID to id just before id is emitted. It reports false
// once ctx is cancelled, leaving id to be emitted by a later watch.
func (p *Poller) claim(ctx context.Context, id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	p.lastSeenID = id
	return true
}
