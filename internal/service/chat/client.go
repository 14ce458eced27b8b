package chat

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write an event to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Send pings with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192

	// Outbound buffer per connection. When full, events are dropped:
	// live delivery is best-effort and history is the catch-up path.
	sendBufferSize = 64
)

// Client wraps one websocket connection. It reads joinChat/sendMessage
// events, pushes acks and receiveMessage events, and drops its room
// memberships when the connection goes away.
type Client struct {
	id   string
	svc  *Service
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool
	send   chan ServerEvent
}

func NewClient(svc *Service, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		svc:  svc,
		conn: conn,
		send: make(chan ServerEvent, sendBufferSize),
	}
}

// Deliver queues an event for the peer without blocking the broadcaster.
// A broadcaster may hold a room snapshot taken before this connection was
// dropped, so delivery after teardown must be a no-op, never a send on
// the closed channel.
func (c *Client) Deliver(ev ServerEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- ev:
	default:
		c.svc.appCtx.Logger.Warn("dropping event for slow connection", "conn", c.id, "event", ev.Event)
	}
}

// shutdown marks the outbound channel closed under the same lock Deliver
// takes, then closes it so writePump drains and exits.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Run starts the write pump and blocks on the read pump until the
// connection closes.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.svc.Hub().Drop(c)
		c.shutdown()
		_ = c.conn.Close()
		c.svc.appCtx.Logger.Debug("connection closed", "conn", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var ev ClientEvent
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.svc.appCtx.Logger.Warn("websocket read error", "conn", c.id, "err", err)
			}
			return
		}
		c.handle(ev)
	}
}

func (c *Client) handle(ev ClientEvent) {
	switch ev.Event {
	case EventJoinChat:
		if ev.UserID == "" || ev.FriendID == "" {
			c.Deliver(ServerEvent{Event: EventAck, Status: StatusError, Error: "user_id and friend_id are required"})
			return
		}
		c.svc.Join(c, ev.UserID, ev.FriendID)

	case EventSendMessage:
		senderID, err1 := strconv.ParseUint(ev.SenderID, 10, 64)
		recipientID, err2 := strconv.ParseUint(ev.RecipientID, 10, 64)
		if err1 != nil || err2 != nil {
			c.Deliver(ServerEvent{Event: EventAck, Status: StatusError, Error: "sender_id and recipient_id must be valid ids"})
			return
		}

		msg, err := c.svc.Send(context.Background(), senderID, recipientID, ev.Content)
		if err != nil {
			c.Deliver(ServerEvent{Event: EventAck, Status: StatusError, Error: err.Error()})
			return
		}
		c.Deliver(ServerEvent{Event: EventAck, Status: StatusSuccess, Message: msg})

	default:
		c.Deliver(ServerEvent{Event: EventAck, Status: StatusError, Error: "unknown event: " + ev.Event})
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
