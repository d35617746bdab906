package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageStatusAfter(t *testing.T) {
	assert.True(t, StatusDelivered.After(StatusSent))
	assert.True(t, StatusSeen.After(StatusDelivered))
	assert.True(t, StatusSeen.After(StatusSent))

	assert.False(t, StatusSent.After(StatusDelivered))
	assert.False(t, StatusDelivered.After(StatusSeen))
	assert.False(t, StatusSeen.After(StatusSeen))
}

func TestMessageEditable(t *testing.T) {
	now := time.Now()
	msg := &Message{CreatedAt: now.Add(-9 * time.Minute)}
	assert.True(t, msg.Editable(now))

	msg.CreatedAt = now.Add(-11 * time.Minute)
	assert.False(t, msg.Editable(now))
}

func TestMessageSeenBy(t *testing.T) {
	msg := &Message{Seen: []string{"alice"}}
	assert.True(t, msg.SeenBy("alice"))
	assert.False(t, msg.SeenBy("bob"))
}

func TestMessageHiddenFor(t *testing.T) {
	msg := &Message{DeletedFor: []string{"bob"}}
	assert.True(t, msg.HiddenFor("bob"))
	assert.False(t, msg.HiddenFor("alice"))
}

func TestMessageMediaURL(t *testing.T) {
	assert.Empty(t, (&Message{}).MediaURL())
	assert.Equal(t, "https://cdn/img", (&Message{ImageURL: "https://cdn/img"}).MediaURL())
	assert.Equal(t, "https://cdn/vid", (&Message{VideoURL: "https://cdn/vid"}).MediaURL())
	assert.Equal(t, "https://cdn/doc", (&Message{DocumentURL: "https://cdn/doc"}).MediaURL())
}

func TestDeleteScopeValid(t *testing.T) {
	assert.True(t, DeleteForMe.Valid())
	assert.True(t, DeleteForEveryone.Valid())
	assert.False(t, DeleteScope("later").Valid())
	assert.False(t, DeleteScope("").Valid())
}
