package repository

import (
	"context"
	"errors"

	"github.com/amora-app/amora/internal/db"
	svcErr "github.com/amora-app/amora/internal/errors"

	"gorm.io/gorm"
)

// FollowerRepository manages the follow edge set.
// One row per (user, follower) pair; the composite PK keeps the edge
// unique.
type FollowerRepository struct {
	db *gorm.DB
}

func NewFollowerRepository(database *gorm.DB) *FollowerRepository {
	return &FollowerRepository{db: database}
}

// Follow creates the edge follower -> user.
// Self-follows are rejected, duplicate edges surface as Conflict with no
// state change.
func (r *FollowerRepository) Follow(ctx context.Context, userID, followerID uint64) error {
	if userID == followerID {
		return svcErr.InvalidArgument("cannot follow yourself")
	}

	var existing db.Follower
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND follower_id = ?", userID, followerID).
		First(&existing).Error
	if err == nil {
		return svcErr.Conflict("already following this user")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return r.db.WithContext(ctx).Create(&db.Follower{
		UserID:     userID,
		FollowerID: followerID,
	}).Error
}

// Unfollow removes the edge. Missing edge → ErrRecordNotFound so the
// caller can surface NotFound.
func (r *FollowerRepository) Unfollow(ctx context.Context, userID, followerID uint64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND follower_id = ?", userID, followerID).
		Delete(&db.Follower{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FollowedIDs returns the users the given follower follows.
// This is the social-graph membership input to the feed query.
func (r *FollowerRepository) FollowedIDs(ctx context.Context, followerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Follower{}).
		Where("follower_id = ?", followerID).
		Pluck("user_id", &ids).Error
	return ids, err
}

// FollowerIDs returns everyone following the given user.
func (r *FollowerRepository) FollowerIDs(ctx context.Context, userID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Follower{}).
		Where("user_id = ?", userID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

// FilterFollowers keeps only the candidate ids that actually follow the
// user. Broadcast messages go through this before persisting recipients.
func (r *FollowerRepository) FilterFollowers(ctx context.Context, userID uint64, candidateIDs []uint64) ([]uint64, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Follower{}).
		Where("user_id = ? AND follower_id IN ?", userID, candidateIDs).
		Pluck("follower_id", &ids).Error
	return ids, err
}
