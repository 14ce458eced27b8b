package chat

import (
	"log/slog"
	"sync"
)

// Subscriber is a connection handle that can receive broadcast events.
// Deliver must not block; slow consumers are expected to drop.
type Subscriber interface {
	Deliver(ev ServerEvent)
}

// Hub is the room registry: room id → set of subscribed connections.
// Subscribe and Drop are the only mutators. Broadcast iterates a
// snapshot of the member set so delivery never races a membership
// change. Membership lives only as long as the connection; nothing here
// is persisted.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[Subscriber]struct{}
	members map[Subscriber]map[string]struct{}
	log     *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[Subscriber]struct{}),
		members: make(map[Subscriber]map[string]struct{}),
		log:     log,
	}
}

// Subscribe adds the connection to a room's broadcast group. Idempotent.
func (h *Hub) Subscribe(roomID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[Subscriber]struct{})
	}
	h.rooms[roomID][sub] = struct{}{}

	if h.members[sub] == nil {
		h.members[sub] = make(map[string]struct{})
	}
	h.members[sub][roomID] = struct{}{}

	h.log.Debug("subscribed to room", "room", roomID, "size", len(h.rooms[roomID]))
}

// Unsubscribe removes the connection from one room.
func (h *Hub) Unsubscribe(roomID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(roomID, sub)
}

// Drop removes the connection from every room it joined. Called on
// disconnect; no error if the connection never joined anything.
func (h *Hub) Drop(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID := range h.members[sub] {
		h.removeLocked(roomID, sub)
	}
}

// Broadcast delivers an event to every connection currently in the room
// and returns how many received it. Best-effort, at-most-once per
// connection: there is no retry and no queueing for absent peers.
func (h *Hub) Broadcast(roomID string, ev ServerEvent) int {
	h.mu.RLock()
	room := h.rooms[roomID]
	subs := make([]Subscriber, 0, len(room))
	for sub := range room {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.Deliver(ev)
	}
	return len(subs)
}

// RoomSize reports current membership. Mostly for tests and logging.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) removeLocked(roomID string, sub Subscriber) {
	if room := h.rooms[roomID]; room != nil {
		delete(room, sub)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
	if rooms := h.members[sub]; rooms != nil {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(h.members, sub)
		}
	}
}
