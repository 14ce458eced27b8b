package repository

import (
	"context"
	"strings"
	"time"

	"github.com/amora-app/amora/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository tracks per-user category view tallies.
// Rows are keyed (user_id, category); counts only ever increment.
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(database *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: database}
}

// RecordView bumps the tally for each category by exactly one and stamps
// last_viewed. Unseen categories start at count=1. Empty or blank input
// is a no-op. Each call increments; idempotence per (user, post) is the
// caller's job via the post view set.
func (r *PreferenceRepository) RecordView(ctx context.Context, userID uint64, categories []string) error {
	now := time.Now().UTC()

	rows := make([]db.ContentPreference, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		rows = append(rows, db.ContentPreference{
			UserID:     userID,
			Category:   c,
			Count:      1,
			LastViewed: now,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "category"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":       gorm.Expr("count + 1"),
				"last_viewed": now,
			}),
		}).
		Create(&rows).Error
}

// TopCategories returns the user's most viewed categories, highest count
// first, ties broken by category name ascending for a stable order.
func (r *PreferenceRepository) TopCategories(ctx context.Context, userID uint64, limit int) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&db.ContentPreference{}).
		Where("user_id = ?", userID).
		Order("count DESC, category ASC").
		Limit(limit).
		Pluck("category", &categories).Error
	return categories, err
}

// GetCount reads a single tally. Mostly for tests and debugging.
func (r *PreferenceRepository) GetCount(ctx context.Context, userID uint64, category string) (int64, error) {
	var pref db.ContentPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		First(&pref).Error
	if err != nil {
		return 0, err
	}
	return pref.Count, nil
}
