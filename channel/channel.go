// Package channel implements the named broadcast point from spec.md §4.7:
// one publisher, many bounded listener queues, with no backpressure
// reaching the publisher. A slow or disconnected listener is dropped on
// its own; it never affects its siblings.
package channel

import (
	"sync"

	"github.com/Tangent128/webmetro/chunk"
)

// queueCapacity is the bounded size of each listener's backlog, per
// spec.md §4.7.
const queueCapacity = 5

// Channel is a single named broadcast point.
type Channel struct {
	mu          sync.Mutex
	headerChunk *chunk.Chunk
	listeners   map[*Listener]struct{}
	closed      bool
}

// New creates an empty, unpublished Channel.
func New() *Channel {
	return &Channel{listeners: make(map[*Listener]struct{})}
}

// Listener is a single subscriber's bounded view of a Channel.
type Listener struct {
	ch     *Channel
	queue  chan chunk.Chunk
	closed chan struct{}
	once   sync.Once
}

// Subscribe atomically creates a Listener, seeds it with the channel's
// current Headers chunk if one has been published, and registers it to
// receive future chunks.
func (c *Channel) Subscribe() *Listener {
	l := &Listener{
		ch:     c,
		queue:  make(chan chunk.Chunk, queueCapacity),
		closed: make(chan struct{}),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		l.once.Do(func() { close(l.closed) })
		return l
	}
	if c.headerChunk != nil {
		// Best-effort: the queue is fresh and empty, so this never blocks;
		// if it somehow couldn't fit, subscription still succeeds and the
		// listener simply ends-of-stream on its first poll, per spec.md.
		select {
		case l.queue <- *c.headerChunk:
		default:
			l.once.Do(func() { close(l.closed) })
			return l
		}
	}
	c.listeners[l] = struct{}{}
	return l
}

// Publish sends a chunk to every current listener, dropping (and removing)
// any listener whose queue is full. If chunk is a Headers chunk, it
// becomes the channel's replay point for future subscribers.
func (c *Channel) Publish(ch chunk.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ch.Kind == chunk.KindHeaders {
		cp := ch
		c.headerChunk = &cp
	}

	for l := range c.listeners {
		select {
		case l.queue <- ch:
		default:
			delete(c.listeners, l)
			l.once.Do(func() { close(l.closed) })
		}
	}
}

// Close disconnects every current and future listener. Used when the
// publisher is gone for good (as opposed to a mid-stream drop, which
// Publish handles per-listener).
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for l := range c.listeners {
		delete(c.listeners, l)
		l.once.Do(func() { close(l.closed) })
	}
}

// Next returns the Listener's next chunk, or ok=false once the channel has
// been dropped (explicitly closed, or evicted for falling behind).
func (l *Listener) Next() (chunk.Chunk, bool) {
	select {
	case c := <-l.queue:
		return c, true
	case <-l.closed:
		// Drain anything still buffered before reporting end-of-stream.
		select {
		case c := <-l.queue:
			return c, true
		default:
			return chunk.Chunk{}, false
		}
	}
}
