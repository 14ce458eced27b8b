package chat_test

import (
	"testing"

	"github.com/amora-app/amora/internal/logger"
	"github.com/amora-app/amora/internal/service/chat"

	"github.com/stretchr/testify/assert"
)

// fakeSub collects delivered events in order.
type fakeSub struct {
	events []chat.ServerEvent
}

func (f *fakeSub) Deliver(ev chat.ServerEvent) {
	f.events = append(f.events, ev)
}

func TestHubSubscribeAndBroadcast(t *testing.T) {
	hub := chat.NewHub(logger.L())
	a := &fakeSub{}
	b := &fakeSub{}

	hub.Subscribe("u1_u2", a)
	hub.Subscribe("u1_u2", b)

	delivered := hub.Broadcast("u1_u2", chat.ServerEvent{Event: chat.EventReceiveMessage})
	assert.Equal(t, 2, delivered)
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
}

func TestHubSubscribeIdempotent(t *testing.T) {
	hub := chat.NewHub(logger.L())
	a := &fakeSub{}

	hub.Subscribe("u1_u2", a)
	hub.Subscribe("u1_u2", a)

	assert.Equal(t, 1, hub.RoomSize("u1_u2"))
	delivered := hub.Broadcast("u1_u2", chat.ServerEvent{Event: chat.EventReceiveMessage})
	assert.Equal(t, 1, delivered)
	assert.Len(t, a.events, 1)
}

func TestHubBroadcastScopedToRoom(t *testing.T) {
	hub := chat.NewHub(logger.L())
	joined := &fakeSub{}
	elsewhere := &fakeSub{}

	hub.Subscribe("u1_u2", joined)
	hub.Subscribe("u3_u4", elsewhere)

	hub.Broadcast("u1_u2", chat.ServerEvent{Event: chat.EventReceiveMessage})
	assert.Len(t, joined.events, 1)
	assert.Empty(t, elsewhere.events)
}

func TestHubBroadcastEmptyRoom(t *testing.T) {
	hub := chat.NewHub(logger.L())
	delivered := hub.Broadcast("nobody_here", chat.ServerEvent{Event: chat.EventReceiveMessage})
	assert.Equal(t, 0, delivered)
}

func TestHubDropRemovesFromAllRooms(t *testing.T) {
	hub := chat.NewHub(logger.L())
	a := &fakeSub{}

	hub.Subscribe("u1_u2", a)
	hub.Subscribe("u1_u3", a)
	hub.Drop(a)

	assert.Equal(t, 0, hub.RoomSize("u1_u2"))
	assert.Equal(t, 0, hub.RoomSize("u1_u3"))

	hub.Broadcast("u1_u2", chat.ServerEvent{Event: chat.EventReceiveMessage})
	assert.Empty(t, a.events)
}

func TestHubUnsubscribeSingleRoom(t *testing.T) {
	hub := chat.NewHub(logger.L())
	a := &fakeSub{}

	hub.Subscribe("u1_u2", a)
	hub.Subscribe("u1_u3", a)
	hub.Unsubscribe("u1_u2", a)

	assert.Equal(t, 0, hub.RoomSize("u1_u2"))
	assert.Equal(t, 1, hub.RoomSize("u1_u3"))
}
