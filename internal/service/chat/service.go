package chat

import (
	"context"
	"strconv"
	"strings"

	"github.com/amora-app/amora/internal/app"
	"github.com/amora-app/amora/internal/db"
	svcErr "github.com/amora-app/amora/internal/errors"
	"github.com/amora-app/amora/internal/repository"
)

const historyPageSize = 50

// Service implements message delivery: validate, persist, fan out,
// acknowledge. Persistence always happens before the broadcast; a failed
// write means no peer ever sees the message. The broadcast itself is
// best-effort to currently-joined connections — offline peers reconcile
// through History.
type Service struct {
	appCtx      *app.AppContext
	hub         *Hub
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
}

// NewChatService creates the delivery service with dependencies from
// AppContext plus the shared room registry.
func NewChatService(appCtx *app.AppContext, hub *Hub) *Service {
	return &Service{
		appCtx:      appCtx,
		hub:         hub,
		messageRepo: repository.NewMessageRepository(appCtx.DB),
		userRepo:    repository.NewUserRepository(appCtx.DB),
	}
}

// Hub exposes the room registry for transports that subscribe
// connections directly.
func (s *Service) Hub() *Hub { return s.hub }

// Join subscribes a connection to the pair's room. Idempotent, no
// response payload.
func (s *Service) Join(sub Subscriber, userID, friendID string) {
	roomID := RoomID(userID, friendID)
	s.hub.Subscribe(roomID, sub)
	s.appCtx.Logger.Debug("joined chat room", "room", roomID, "user", userID)
}

// Send validates, persists and fans out one message, returning the
// stored message for the caller's synchronous acknowledgement.
func (s *Service) Send(ctx context.Context, senderID, recipientID uint64, content string) (*MessagePayload, error) {
	if strings.TrimSpace(content) == "" {
		return nil, svcErr.InvalidArgument("message content must not be empty")
	}
	if senderID == recipientID {
		return nil, svcErr.InvalidArgument("cannot message yourself")
	}

	ok, err := s.userRepo.Exists(ctx, senderID, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if !ok {
		return nil, svcErr.NotFound("sender or recipient does not exist")
	}

	// Single atomic write. Failure here means the message never existed:
	// no broadcast, error ack to the caller.
	msg, err := s.messageRepo.Create(ctx, senderID, recipientID, content)
	if err != nil {
		s.appCtx.Logger.Error("message persist failed", "sender", senderID, "recipient", recipientID, "err", err)
		return nil, svcErr.Map(err)
	}

	payload := payloadFor(msg)
	roomID := RoomID(payload.Sender, payload.Recipient)
	delivered := s.hub.Broadcast(roomID, ServerEvent{
		Event:   EventReceiveMessage,
		Message: payload,
	})

	s.appCtx.Logger.Debug("message delivered", "room", roomID, "message_id", msg.ID, "connections", delivered)

	return payload, nil
}

// History returns the conversation between two users, newest first, for
// clients catching up after a reconnect.
func (s *Service) History(ctx context.Context, userA, userB uint64, token *string) ([]*MessagePayload, *string, error) {
	messages, nextToken, err := s.messageRepo.History(ctx, userA, userB, token, historyPageSize)
	if err != nil {
		return nil, nil, svcErr.Map(err)
	}

	out := make([]*MessagePayload, 0, len(messages))
	for i := range messages {
		out = append(out, payloadFor(&messages[i]))
	}
	return out, nextToken, nil
}

func payloadFor(msg *db.Message) *MessagePayload {
	return &MessagePayload{
		ID:        strconv.FormatUint(msg.ID, 10),
		Sender:    strconv.FormatUint(msg.SenderID, 10),
		Recipient: strconv.FormatUint(msg.RecipientID, 10),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}
