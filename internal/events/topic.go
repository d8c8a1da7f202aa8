package events

import "sync"

// DefaultBuffer is the per-subscriber channel capacity used when none is given
const DefaultBuffer = 10

// Topic fans a stream of values out to every current subscriber.
// Delivery is fire-and-forget: a subscriber whose buffer is full misses the value.
type Topic[T any] struct {
	mu          sync.Mutex
	subscribers map[chan T]struct{}
	buffer      int
	closed      bool
}

// NewTopic creates a topic whose subscriber channels hold up to buffer values
func NewTopic[T any](buffer int) *Topic[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Topic[T]{
		subscribers: make(map[chan T]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a new subscriber. The returned cancel func unsubscribes
// and closes the channel; calling it more than once is safe.
func (t *Topic[T]) Subscribe() (<-chan T, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ch := make(chan T, t.buffer)
	if t.closed {
		close(ch)
		return ch, func() {}
	}
	t.subscribers[ch] = struct{}{}
	return ch, func() { t.unsubscribe(ch) }
}

func (t *Topic[T]) unsubscribe(ch chan T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.subscribers[ch]; ok {
		delete(t.subscribers, ch)
		close(ch)
	}
}

// Publish delivers v to every subscriber without blocking
func (t *Topic[T]) Publish(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for ch := range t.subscribers {
		select {
		case ch <- v:
		default:
			// Subscriber is behind, skip
		}
	}
}

// SubscriberCount returns the number of live subscriptions
func (t *Topic[T]) SubscriberCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subscribers)
}

// Close closes every subscriber channel. Later subscriptions receive a closed channel.
func (t *Topic[T]) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	for ch := range t.subscribers {
		delete(t.subscribers, ch)
		close(ch)
	}
}

// Latest is a Topic that remembers the last published value and hands it to
// every new subscriber immediately. It is a last-value cache, not a log.
type Latest[T any] struct {
	mu          sync.Mutex
	subscribers map[chan T]struct{}
	buffer      int
	last        T
	hasLast     bool
	closed      bool
}

// NewLatest creates an empty last-value topic
func NewLatest[T any](buffer int) *Latest[T] {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Latest[T]{
		subscribers: make(map[chan T]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a subscriber and replays the cached value, if any
func (l *Latest[T]) Subscribe() (<-chan T, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan T, l.buffer)
	if l.hasLast {
		ch <- l.last
	}
	if l.closed {
		close(ch)
		return ch, func() {}
	}
	l.subscribers[ch] = struct{}{}
	return ch, func() { l.unsubscribe(ch) }
}

func (l *Latest[T]) unsubscribe(ch chan T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.subscribers[ch]; ok {
		delete(l.subscribers, ch)
		close(ch)
	}
}

// Publish caches v and delivers it to every subscriber. A subscriber with a
// full buffer loses its oldest pending value so the newest always lands.
func (l *Latest[T]) Publish(v T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.last = v
	l.hasLast = true
	for ch := range l.subscribers {
		select {
		case ch <- v:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// Last returns the cached value and whether one has been published
func (l *Latest[T]) Last() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.hasLast
}

// Close closes every subscriber channel; the cached value is kept
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	for ch := range l.subscribers {
		delete(l.subscribers, ch)
		close(ch)
	}
}
