package chat

import (
	"testing"

	"github.com/amora-app/amora/internal/logger"

	"github.com/stretchr/testify/assert"
)

func TestDeliverAfterDisconnectTeardown(t *testing.T) {
	hub := NewHub(logger.L())
	c := &Client{id: "conn-1", send: make(chan ServerEvent, sendBufferSize)}

	hub.Subscribe("u1_u2", c)

	// disconnect teardown order: membership dropped, outbound shut down
	hub.Drop(c)
	c.shutdown()

	// a broadcaster that snapshotted the room before the drop must become
	// a no-op, not a send on a closed channel
	assert.NotPanics(t, func() {
		c.Deliver(ServerEvent{Event: EventReceiveMessage})
	})
	assert.Equal(t, 0, hub.RoomSize("u1_u2"))
}

func TestShutdownIdempotent(t *testing.T) {
	c := &Client{id: "conn-2", send: make(chan ServerEvent, sendBufferSize)}

	c.shutdown()
	assert.NotPanics(t, func() { c.shutdown() })
}

func TestDeliverQueuesWhileOpen(t *testing.T) {
	c := &Client{id: "conn-3", send: make(chan ServerEvent, sendBufferSize)}

	c.Deliver(ServerEvent{Event: EventReceiveMessage})

	ev := <-c.send
	assert.Equal(t, EventReceiveMessage, ev.Event)
}
