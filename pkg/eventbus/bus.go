package eventbus

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Publish after the bus has been closed.
var ErrClosed = errors.New("eventbus: bus is closed")

// Subscription receives messages published to a Bus. All methods are safe
// for concurrent use.
type Subscription[T any] struct {
	ch     chan T
	mu     sync.RWMutex
	closed bool
}

func newSubscription[T any](buffer int) *Subscription[T] {
	return &Subscription[T]{ch: make(chan T, buffer)}
}

// C returns the channel delivering published messages. The channel is closed
// when the subscription or the bus is closed.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Close closes the subscription. It is idempotent.
func (s *Subscription[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		s.closed = true
	}
	return nil
}

func (s *Subscription[T]) send(msg T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

// Bus is an in-memory fire-and-forget fan-out bus. Publish never blocks:
// messages are dropped for subscribers whose buffer is full, so a slow
// listener cannot stall the publisher.
type Bus[T any] struct {
	mu        sync.RWMutex
	subs      map[*Subscription[T]]struct{}
	buffer    int
	closed    bool
	done      chan struct{}
	cleanupWg sync.WaitGroup
}

// New creates a bus whose subscribers buffer up to buffer messages. A
// minimum buffer of 1 is enforced to keep sends non-blocking.
func New[T any](buffer int) *Bus[T] {
	return &Bus[T]{
		subs:   make(map[*Subscription[T]]struct{}),
		buffer: max(buffer, 1),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a new subscriber. The subscription is cleaned up
// automatically when ctx is cancelled. Subscribing to a closed bus returns
// an already-closed subscription.
func (b *Bus[T]) Subscribe(ctx context.Context) *Subscription[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscription[T](b.buffer)
	if b.closed {
		_ = sub.Close()
		return sub
	}

	b.subs[sub] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			select {
			case <-ctx.Done():
				b.unsubscribe(sub)
			case <-b.done:
			}
		}()
	}

	return sub
}

// Publish delivers msg to every active subscriber without blocking. It
// returns ErrClosed after Close; delivery to individual subscribers is best
// effort and dropped messages are not reported.
func (b *Bus[T]) Publish(_ context.Context, msg T) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	for sub := range b.subs {
		if !sub.send(msg) {
			// Full or closed subscriber: drop it without holding up this
			// publish.
			go b.unsubscribe(sub)
		}
	}

	return nil
}

// Close shuts down the bus and closes all subscriptions, releasing the
// cleanup goroutines of subscribers whose contexts are still live. It is
// idempotent.
func (b *Bus[T]) Close() error {
	b.mu.Lock()

	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	close(b.done)
	for sub := range b.subs {
		_ = sub.Close()
	}
	clear(b.subs)
	b.mu.Unlock()

	b.cleanupWg.Wait()
	return nil
}

func (b *Bus[T]) unsubscribe(sub *Subscription[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.subs, sub)
	_ = sub.Close()
}
