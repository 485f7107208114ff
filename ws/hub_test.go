package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendToUserDropsSlowConnection(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: "buyer-1"}
	hub.Register <- slow
	require.True(t, hub.IsUserOnline("buyer-1"))

	hub.SendToUser("buyer-1", []byte("first"))  // fills the buffer
	hub.SendToUser("buyer-1", []byte("second")) // overflows, connection is dropped
	hub.SendToUser("buyer-1", []byte("third"))  // must not panic on a closed channel

	assert.False(t, hub.IsUserOnline("buyer-1"))

	msg, ok := <-slow.Send
	require.True(t, ok)
	assert.Equal(t, "first", string(msg))

	_, ok = <-slow.Send
	assert.False(t, ok, "dropped connection's channel should be closed")
}

func TestSendToUserStillDeliversToRemainingConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: "buyer-2"}
	healthy := &Client{Hub: hub, Send: make(chan []byte, 8), UserID: "buyer-2"}
	hub.Register <- slow
	hub.Register <- healthy

	hub.SendToUser("buyer-2", []byte("a"))
	hub.SendToUser("buyer-2", []byte("b")) // slow connection is evicted here
	hub.SendToUser("buyer-2", []byte("c"))

	for _, want := range []string{"a", "b", "c"} {
		assert.Equal(t, want, string(<-healthy.Send))
	}
	assert.True(t, hub.IsUserOnline("buyer-2"))
}

func TestUnregisterAfterDropIsHarmless(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: "seller-1"}
	hub.Register <- client

	hub.SendToUser("seller-1", []byte("x"))
	hub.SendToUser("seller-1", []byte("y")) // hub drops the connection

	// The read pump unregisters on its way out; that must not close twice.
	hub.Unregister <- client
	hub.SendToUser("seller-1", []byte("z"))

	assert.False(t, hub.IsUserOnline("seller-1"))
}
