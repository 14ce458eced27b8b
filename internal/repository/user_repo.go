package repository

import (
	"context"

	"github.com/amora-app/amora/internal/db"

	"gorm.io/gorm"
)

// UserSummary is the read-only denormalization attached to feed posts,
// comments and liked-by listings for display.
type UserSummary struct {
	ID             uint64 `json:"id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// UserRepository provides data access for the User model.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

func (r *UserRepository) Get(ctx context.Context, id uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether every id in the input refers to a stored user.
func (r *UserRepository) Exists(ctx context.Context, ids ...uint64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count == int64(len(ids)), err
}

// SummariesByIDs loads display summaries keyed by user id.
func (r *UserRepository) SummariesByIDs(ctx context.Context, ids []uint64) (map[uint64]UserSummary, error) {
	out := make(map[uint64]UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []db.User
	err := r.db.WithContext(ctx).
		Select("id", "first_name", "last_name", "profile_picture").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		out[u.ID] = UserSummary{
			ID:             u.ID,
			FirstName:      u.FirstName,
			LastName:       u.LastName,
			ProfilePicture: u.ProfilePicture,
		}
	}
	return out, nil
}

// Discover returns active users of the given gender, excluding the ids
// the caller already decided on. Ordered by recency of signup.
func (r *UserRepository) Discover(ctx context.Context, gender string, excludeIDs []uint64, limit int) ([]db.User, error) {
	query := r.db.WithContext(ctx).
		Where("gender = ? AND active = ?", gender, true).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var users []db.User
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
