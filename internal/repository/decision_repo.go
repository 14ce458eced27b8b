package repository

import (
	"context"
	"time"

	"github.com/amora-app/amora/internal/db"
	"github.com/amora-app/amora/internal/utils/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DecisionRepository provides data access for the Decision model.
// It encapsulates all queries related to likes/passes between users.
type DecisionRepository struct {
	db *gorm.DB
}

func NewDecisionRepository(database *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: database}
}

// CreateOrUpdateDecision inserts or updates a decision made by actor -> recipient.
// The composite PK on (actor_id, recipient_id) gives the overwrite guarantee:
// deciding twice on the same person keeps a single row.
func (r *DecisionRepository) CreateOrUpdateDecision(
	ctx context.Context,
	actorID, recipientID uint64,
	liked bool,
) error {
	decision := db.Decision{
		ActorID:     actorID,
		RecipientID: recipientID,
		Liked:       liked,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "actor_id"}, {Name: "recipient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"liked"}),
		}).
		Create(&decision).Error
}

// GetLikers returns users who liked the given recipient, newest first.
// Users the recipient explicitly passed are excluded, so a Reject (stored
// as a pass) removes the requester from this listing. Cursor-paginated.
func (r *DecisionRepository) GetLikers(
	ctx context.Context,
	recipientID uint64,
	paginationToken *string,
	limit int,
) ([]db.Decision, *string, error) {
	var decisions []db.Decision

	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("decisions d").
		Where("d.recipient_id = ? AND d.liked = ?", recipientID, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM decisions d2
				WHERE d2.actor_id = ?
				  AND d2.recipient_id = d.actor_id
				  AND d2.liked = ?
			)`, recipientID, false).
		Order("d.updated_at DESC, d.actor_id DESC").
		Limit(limit + 1)

	if cursor.LastID > 0 && cursor.UnixMillis > 0 {
		ts := time.UnixMilli(cursor.UnixMillis)
		query = query.Where(
			"(d.updated_at < ? OR (d.updated_at = ? AND d.actor_id < ?))",
			ts, ts, cursor.LastID,
		)
	}

	if err := query.Find(&decisions).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(decisions) > limit {
		last := decisions[limit-1]
		token, _ := pagination.Encode(pagination.Cursor{
			LastID:     last.ActorID,
			UnixMillis: last.UpdatedAt.UnixMilli(),
		})
		nextToken = &token
		decisions = decisions[:limit]
	}

	return decisions, nextToken, nil
}

// CountLikers returns how many users liked the given recipient,
// excluding anyone the recipient passed. Used as the DB fallback behind
// the Redis counter.
func (r *DecisionRepository) CountLikers(
	ctx context.Context,
	recipientID uint64,
) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("decisions d").
		Where("d.recipient_id = ? AND d.liked = ?", recipientID, true).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM decisions d2
				WHERE d2.actor_id = ?
				  AND d2.recipient_id = d.actor_id
				  AND d2.liked = ?
			)`, recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// HasLiked checks whether an actor has liked a recipient. Used for
// mutual-like checks when a new like arrives.
func (r *DecisionRepository) HasLiked(
	ctx context.Context,
	actorID, recipientID uint64,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Decision{}).
		Where("actor_id = ? AND recipient_id = ? AND liked = ?", actorID, recipientID, true).
		Count(&count).Error
	return count > 0, err
}

// GetDecision loads the single decision row for a pair, if any.
func (r *DecisionRepository) GetDecision(
	ctx context.Context,
	actorID, recipientID uint64,
) (*db.Decision, error) {
	var decision db.Decision
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND recipient_id = ?", actorID, recipientID).
		First(&decision).Error
	if err != nil {
		return nil, err
	}
	return &decision, nil
}

// DecidedIDs returns every recipient the actor has already liked or
// passed. Discovery excludes these so nobody reappears after a decision.
func (r *DecisionRepository) DecidedIDs(ctx context.Context, actorID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.Decision{}).
		Where("actor_id = ?", actorID).
		Pluck("recipient_id", &ids).Error
	return ids, err
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
