package onesecmail

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Subscription represents an active subscription that can be unsubscribed.
type Subscription interface {
	// Unsubscribe stops the subscription. Safe to call multiple times.
	Unsubscribe()
}

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }

// subscription represents one registered callback.
type subscription[T any] struct {
	callback func(T)
	active   atomic.Bool
}

// subscriptionManager handles event subscriptions with safe lifecycle management.
// It ensures callbacks are never invoked after unsubscription completes.
type subscriptionManager[T any] struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription[T]
	nextID atomic.Uint64
}

func newSubscriptionManager[T any]() *subscriptionManager[T] {
	return &subscriptionManager[T]{
		subs: make(map[uint64]*subscription[T]),
	}
}

// subscribe registers a callback and returns the function that removes it.
func (m *subscriptionManager[T]) subscribe(callback func(T)) func() {
	id := m.nextID.Add(1)

	sub := &subscription[T]{callback: callback}
	sub.active.Store(true)

	m.mu.Lock()
	m.subs[id] = sub
	m.mu.Unlock()

	return func() {
		m.unsubscribe(id)
	}
}

// unsubscribe removes a subscription. Safe to call multiple times.
func (m *subscriptionManager[T]) unsubscribe(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subs[id]; ok {
		sub.active.Store(false) // Mark inactive before removing
		delete(m.subs, id)
	}
}

// notify calls every registered callback, in registration order, after
// releasing the read lock. The active flag is checked before each call.
func (m *subscriptionManager[T]) notify(event T) {
	m.mu.RLock()
	if len(m.subs) == 0 {
		m.mu.RUnlock()
		return
	}

	ids := make([]uint64, 0, len(m.subs))
	for id := range m.subs {
		ids = append(ids, id)
	}
	subs := make([]*subscription[T], 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		subs = append(subs, m.subs[id])
	}
	m.mu.RUnlock()

	for _, sub := range subs {
		if sub.active.Load() {
			sub.callback(event)
		}
	}
}

// count returns the number of registered callbacks.
func (m *subscriptionManager[T]) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subs)
}

// clear removes all subscriptions. Called during Client.Close().
func (m *subscriptionManager[T]) clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subs {
		sub.active.Store(false)
	}
	m.subs = make(map[uint64]*subscription[T])
}
