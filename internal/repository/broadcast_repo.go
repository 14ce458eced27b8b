package repository

import (
	"context"

	"github.com/amora-app/amora/internal/db"

	"gorm.io/gorm"
)

// BroadcastRepository persists one-to-many announcements with their
// recipient lists.
type BroadcastRepository struct {
	db *gorm.DB
}

func NewBroadcastRepository(database *gorm.DB) *BroadcastRepository {
	return &BroadcastRepository{db: database}
}

func (r *BroadcastRepository) Create(ctx context.Context, senderID uint64, content string, recipientIDs []uint64) (*db.BroadcastMessage, error) {
	msg := db.BroadcastMessage{
		SenderID: senderID,
		Content:  content,
	}
	for _, id := range recipientIDs {
		msg.Recipients = append(msg.Recipients, db.BroadcastRecipient{UserID: id})
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// ForRecipient lists broadcasts addressed to the given user, newest first.
func (r *BroadcastRepository) ForRecipient(ctx context.Context, userID uint64, limit int) ([]db.BroadcastMessage, error) {
	var msgs []db.BroadcastMessage
	err := r.db.WithContext(ctx).
		Where(
			"EXISTS (SELECT 1 FROM broadcast_recipients br WHERE br.broadcast_id = broadcast_messages.id AND br.user_id = ?)",
			userID,
		).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}
