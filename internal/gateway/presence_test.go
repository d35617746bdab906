package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterEvictsPrevious(t *testing.T) {
	r := NewRegistry()
	first := &Client{userID: "alice"}
	second := &Client{userID: "alice"}

	assert.Nil(t, r.Register("alice", first))
	assert.Same(t, first, r.Register("alice", second))

	got, ok := r.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistryUnregisterIgnoresStaleHandle(t *testing.T) {
	r := NewRegistry()
	evicted := &Client{userID: "alice"}
	live := &Client{userID: "alice"}

	r.Register("alice", evicted)
	r.Register("alice", live)

	// The evicted session disconnects after the new one registered.
	r.Unregister("alice", evicted)

	got, ok := r.Lookup("alice")
	assert.True(t, ok)
	assert.Same(t, live, got)

	r.Unregister("alice", live)
	_, ok = r.Lookup("alice")
	assert.False(t, ok)
}

func TestRegistryOnlineSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("carol", &Client{userID: "carol"})
	r.Register("alice", &Client{userID: "alice"})
	r.Register("bob", &Client{userID: "bob"})

	assert.Equal(t, []string{"alice", "bob", "carol"}, r.Online())

	r.Unregister("bob", nil)
	assert.Equal(t, []string{"alice", "bob", "carol"}, r.Online(), "nil handle never matches")
}

func TestRegistryEach(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", &Client{userID: "alice"})
	r.Register("bob", &Client{userID: "bob"})

	seen := map[string]bool{}
	r.Each(func(userID string, c *Client) {
		seen[userID] = true
	})
	assert.Equal(t, map[string]bool{"alice": true, "bob": true}, seen)
}
