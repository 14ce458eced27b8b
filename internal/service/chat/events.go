package chat

import "time"

// Client → server event names.
const (
	EventJoinChat    = "joinChat"
	EventSendMessage = "sendMessage"
)

// Server → client event names.
const (
	EventReceiveMessage = "receiveMessage"
	EventAck            = "ack"
)

// Ack statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ClientEvent is the inbound websocket envelope.
type ClientEvent struct {
	Event       string `json:"event"`
	UserID      string `json:"user_id,omitempty"`
	FriendID    string `json:"friend_id,omitempty"`
	SenderID    string `json:"sender_id,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`
	Content     string `json:"content,omitempty"`
}

// ServerEvent is the outbound websocket envelope. For acks, Status and
// possibly Error are set; for live deliveries, Message is set.
type ServerEvent struct {
	Event   string          `json:"event"`
	Status  string          `json:"status,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message *MessagePayload `json:"message,omitempty"`
}

// MessagePayload is the wire shape of a delivered message.
type MessagePayload struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
