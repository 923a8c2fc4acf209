package app

import "sync"

// Broadcaster fans out Views to subscribers. Each subscriber holds at most
// one pending View; a slow reader skips to the newest one instead of
// blocking the frame loop.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan View]struct{}
	last   View
	hasAny bool
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan View]struct{})}
}

// Subscribe registers a reader. The latest View, if any, is delivered
// first. Call the returned func to unsubscribe; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 1)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	if b.hasAny {
		ch <- b.last
	}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish records v as the latest View and offers it to every subscriber
// without blocking.
func (b *Broadcaster) Publish(v View) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = v
	b.hasAny = true

	for ch := range b.subs {
		select {
		case ch <- v:
			continue
		default:
		}
		// Drop the stale view and retry once.
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

// Latest returns the most recently published View.
func (b *Broadcaster) Latest() (View, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last, b.hasAny
}

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
