package inapp

import (
	"context"
	"sync"
	"time"
)

// Toast is a transient in-app notification rendered by a connected client.
// Duration zero means the toast stays until dismissed.
type Toast struct {
	AlertID   string        `json:"alert_id"`
	UserID    string        `json:"user_id"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Style     string        `json:"style"` // info, success, warning, error
	Duration  time.Duration `json:"duration"`
	ActionURL string        `json:"action_url,omitempty"`
}

// Subscription receives toasts for one user. Implementations are safe for
// concurrent use.
type Subscription interface {
	// Receive returns the channel toasts arrive on. The channel is closed
	// when the subscription or the center closes.
	Receive() <-chan Toast

	// Close tears down the subscription. Idempotent.
	Close() error
}

type subscription struct {
	ch     chan Toast
	closed bool
	mu     sync.RWMutex
}

func newSubscription(bufferSize int) *subscription {
	return &subscription{ch: make(chan Toast, bufferSize)}
}

func (s *subscription) Receive() <-chan Toast {
	return s.ch
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *subscription) push(t Toast) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- t:
		return true
	default:
		return false
	}
}

// Center fans toasts out to each user's live subscriptions. Slow consumers
// have toasts dropped rather than blocking the publisher. All methods are
// safe for concurrent use.
type Center struct {
	users      map[string]map[*subscription]struct{}
	bufferSize int
	closed     bool
	done       chan struct{} // closed by Close, releases context-cleanup goroutines
	mu         sync.RWMutex
	cleanupWg  sync.WaitGroup
}

// Option configures a Center.
type Option func(*Center)

// WithBufferSize sets the per-subscription channel buffer. A minimum of 1 is
// enforced so sends stay non-blocking.
func WithBufferSize(n int) Option {
	return func(c *Center) {
		c.bufferSize = max(n, 1)
	}
}

// NewCenter creates an in-memory toast center.
func NewCenter(opts ...Option) *Center {
	c := &Center{
		users:      make(map[string]map[*subscription]struct{}),
		bufferSize: 16,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a subscription for userID's toasts. The subscription
// is cleaned up when ctx is cancelled. If the center is closed, the returned
// subscription is already closed.
func (c *Center) Subscribe(ctx context.Context, userID string) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := newSubscription(c.bufferSize)
	if c.closed {
		_ = sub.Close()
		return sub
	}

	if c.users[userID] == nil {
		c.users[userID] = make(map[*subscription]struct{})
	}
	c.users[userID][sub] = struct{}{}

	if ctx.Done() != nil {
		c.cleanupWg.Add(1)
		go func() {
			defer c.cleanupWg.Done()
			// Close must not wait for subscriber contexts that outlive the
			// center, so the center's own shutdown also releases us.
			select {
			case <-ctx.Done():
				c.unsubscribe(userID, sub)
			case <-c.done:
			}
		}()
	}

	return sub
}

// Publish delivers the toast to all of the user's live subscriptions. Full
// subscription buffers drop the toast for that subscription only. Returns
// the number of subscriptions that received it.
func (c *Center) Publish(_ context.Context, t Toast) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return 0, ErrCenterClosed
	}

	delivered := 0
	for sub := range c.users[t.UserID] {
		if sub.push(t) {
			delivered++
		} else {
			go c.unsubscribe(t.UserID, sub)
		}
	}
	return delivered, nil
}

// Available reports whether the user has at least one live subscription.
func (c *Center) Available(userID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return !c.closed && len(c.users[userID]) > 0
}

// Close shuts the center down and closes every subscription. Idempotent.
func (c *Center) Close() error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	for _, subs := range c.users {
		for sub := range subs {
			_ = sub.Close()
		}
	}
	clear(c.users)
	close(c.done)
	c.mu.Unlock()

	// Settle pending context-cancellation cleanups before returning so no
	// goroutine touches the map after Close.
	c.cleanupWg.Wait()
	return nil
}

func (c *Center) unsubscribe(userID string, sub *subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if subs, ok := c.users[userID]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(c.users, userID)
		}
	}
	_ = sub.Close()
}
