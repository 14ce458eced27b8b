package repository

import (
	"context"

	"github.com/amora-app/amora/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VisitRepository tracks profile views. One row per visitor per profile.
type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(database *gorm.DB) *VisitRepository {
	return &VisitRepository{db: database}
}

func (r *VisitRepository) Record(ctx context.Context, ownerID, visitorID uint64) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.ProfileVisit{UserID: ownerID, VisitorID: visitorID}).Error
}

// VisitorIDs returns who viewed the given profile, newest first.
func (r *VisitRepository) VisitorIDs(ctx context.Context, ownerID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.ProfileVisit{}).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Pluck("visitor_id", &ids).Error
	return ids, err
}
