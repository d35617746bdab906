package gateway

import (
	"sort"
	"sync"
)

// Registry maps user identity to its single active connection. A second
// login evicts the first (single-session-per-user, a known limitation kept
// from the original behavior).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*Client),
	}
}

// Register stores the connection handle for userID and returns the evicted
// previous handle, if any.
func (r *Registry) Register(userID string, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.entries[userID]
	r.entries[userID] = c
	return prev
}

// Unregister removes userID's entry if it still points at c. Removing an
// absent or already-replaced entry is a no-op, so a stale disconnect from an
// evicted session never drops the live one.
func (r *Registry) Unregister(userID string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries[userID] == c {
		delete(r.entries, userID)
	}
}

func (r *Registry) Lookup(userID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[userID]
	return c, ok
}

// Online returns the sorted set of currently connected user ids.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Each calls fn for every connected client. fn must not block.
func (r *Registry) Each(fn func(userID string, c *Client)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, c := range r.entries {
		fn(id, c)
	}
}
