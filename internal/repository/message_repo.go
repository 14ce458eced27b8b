package repository

import (
	"context"
	"time"

	"github.com/amora-app/amora/internal/db"
	"github.com/amora-app/amora/internal/utils/pagination"

	"gorm.io/gorm"
)

// MessageRepository provides data access for chat messages.
// Messages are immutable once created; there are no update or delete
// queries by design.
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// Create persists a message as a single atomic write and returns the
// stored row with its id and timestamp assigned.
func (r *MessageRepository) Create(ctx context.Context, senderID, recipientID uint64, content string) (*db.Message, error) {
	msg := db.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns the conversation between two users, newest first.
// This is the reconciliation path for peers that were offline during the
// live broadcast. Cursor-paginated with created_at + id keyset.
func (r *MessageRepository) History(
	ctx context.Context,
	userA, userB uint64,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where(
			"(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userA, userB, userB, userA,
		).
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 && cursor.UnixMillis > 0 {
		ts := time.UnixMilli(cursor.UnixMillis)
		query = query.Where(
			"(created_at < ? OR (created_at = ? AND id < ?))",
			ts, ts, cursor.LastID,
		)
	}

	var messages []db.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(messages) > limit {
		last := messages[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID:     last.ID,
			UnixMillis: last.CreatedAt.UnixMilli(),
		})
		nextToken = &token
		messages = messages[:limit]
	}

	return messages, nextToken, nil
}
