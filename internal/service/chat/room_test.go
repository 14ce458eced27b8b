package chat_test

import (
	"testing"

	"github.com/amora-app/amora/internal/service/chat"

	"github.com/stretchr/testify/assert"
)

func TestRoomIDOrderIndependent(t *testing.T) {
	assert.Equal(t, chat.RoomID("u1", "u2"), chat.RoomID("u2", "u1"))
}

func TestRoomIDFormat(t *testing.T) {
	assert.Equal(t, "u1_u2", chat.RoomID("u1", "u2"))
	assert.Equal(t, "u1_u2", chat.RoomID("u2", "u1"))
	assert.Equal(t, "abc_xyz", chat.RoomID("xyz", "abc"))
}

func TestRoomIDDistinctPairs(t *testing.T) {
	assert.NotEqual(t, chat.RoomID("u1", "u2"), chat.RoomID("u1", "u3"))
}
