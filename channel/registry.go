package channel

import (
	"sync"
	"weak"
)

// Registry maps channel names to Channels, holding only weak references so
// that a channel with neither a publisher nor a listener is reclaimed
// rather than pinned forever by the registry itself (spec.md §9, "Channel
// weak-valued registry"). Registry access is a short-held mutex, mirroring
// the Set.streams pattern it's adapted from.
type Registry struct {
	mu       sync.Mutex
	channels map[string]weak.Pointer[Channel]
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]weak.Pointer[Channel])}
}

// Lookup returns the live Channel registered under name, if any. A name
// whose last strong reference was dropped returns ok=false, exactly as if
// it had never been registered.
func (r *Registry) Lookup(name string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wp, ok := r.channels[name]
	if !ok {
		return nil, false
	}
	c := wp.Value()
	if c == nil {
		delete(r.channels, name)
		return nil, false
	}
	return c, true
}

// GetOrCreate returns the live Channel for name, creating and registering
// one if none currently exists (or the previous one was already
// collected). The caller must keep the returned *Channel alive (e.g. by
// holding it for the duration of a publish) for it to remain reachable
// through the registry.
func (r *Registry) GetOrCreate(name string) *Channel {
	r.mu.Lock()
	defer r.mu.Unlock()

	if wp, ok := r.channels[name]; ok {
		if c := wp.Value(); c != nil {
			return c
		}
	}

	c := New()
	r.channels[name] = weak.Make(c)
	return c
}
