package repository

import (
	"context"
	"errors"

	"github.com/amora-app/amora/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendshipRepository manages accepted-pair edges. Ids are normalized
// (low, high) before every query so a pair always hits the same row.
type FriendshipRepository struct {
	db *gorm.DB
}

func NewFriendshipRepository(database *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{db: database}
}

func orderPair(a, b uint64) (uint64, uint64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Create records a friendship. Insert-ignore keeps a racing mutual like
// from producing duplicate rows.
func (r *FriendshipRepository) Create(ctx context.Context, userA, userB uint64) error {
	low, high := orderPair(userA, userB)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.Friendship{UserAID: low, UserBID: high}).Error
}

// Delete removes a friendship. Missing edge → ErrRecordNotFound.
func (r *FriendshipRepository) Delete(ctx context.Context, userA, userB uint64) error {
	low, high := orderPair(userA, userB)
	res := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", low, high).
		Delete(&db.Friendship{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *FriendshipRepository) Exists(ctx context.Context, userA, userB uint64) (bool, error) {
	low, high := orderPair(userA, userB)
	var friendship db.Friendship
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", low, high).
		First(&friendship).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// FriendIDs returns every friend of the given user.
func (r *FriendshipRepository) FriendIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var friendships []db.Friendship
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(friendships))
	for _, f := range friendships {
		if f.UserAID == userID {
			ids = append(ids, f.UserBID)
		} else {
			ids = append(ids, f.UserAID)
		}
	}
	return ids, nil
}
