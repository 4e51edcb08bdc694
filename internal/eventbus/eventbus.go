package eventbus

import "sync"

// Event is an arbitrary payload carried on the bus.
type Event interface{}

// EventBus is a non-blocking publish/subscribe fan-out. The engine publishes
// unconditionally; subscription is optional and slow subscribers lose events
// rather than stalling a dispatch.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

const subscriberBuffer = 16

// Bus is the in-process EventBus implementation.
type Bus struct {
	mu     sync.RWMutex
	subs   []chan Event
	closed bool
}

// New creates an empty Bus.
func New() *Bus { return &Bus{} }

// Publish delivers the event to every subscriber without blocking. Events are
// dropped for subscribers whose buffer is full.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a subscriber and returns its receive channel.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel. Calling it after
// Close is harmless.
func (b *Bus) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			if !b.closed {
				close(ch)
			}
			return
		}
	}
}

// Close closes every subscriber channel and rejects further publishes.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}

// SubscribeTo registers a subscriber that only receives events of type T.
// The forwarding goroutine exits when the bus closes the underlying channel.
func SubscribeTo[T any](b EventBus) <-chan T {
	src := b.Subscribe()
	out := make(chan T, subscriberBuffer)
	go func() {
		defer close(out)
		for e := range src {
			if v, ok := e.(T); ok {
				select {
				case out <- v:
				default:
				}
			}
		}
	}()
	return out
}
