package repository

import (
	"context"

	"github.com/amora-app/amora/internal/db"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository provides data access for posts and their edge tables
// (categories, tags, media, comments, reactions, views).
type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(database *gorm.DB) *PostRepository {
	return &PostRepository{db: database}
}

func (r *PostRepository) Create(ctx context.Context, post *db.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// Get loads a post with its edge associations preloaded.
func (r *PostRepository) Get(ctx context.Context, postID uint64) (*db.Post, error) {
	var post db.Post
	err := r.db.WithContext(ctx).
		Preload("Categories").
		Preload("Tags").
		Preload("Media").
		Preload("Comments").
		First(&post, postID).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update persists edited post fields and replaces its category set.
func (r *PostRepository) Update(ctx context.Context, post *db.Post, categories []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(post).
			Select("content", "visibility", "is_hidden", "updated_at").
			Updates(post).Error; err != nil {
			return err
		}
		if categories == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&db.PostCategory{}).Error; err != nil {
			return err
		}
		rows := make([]db.PostCategory, 0, len(categories))
		for _, c := range categories {
			rows = append(rows, db.PostCategory{PostID: post.ID, Category: c})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// Delete removes a post owned by the given author. Missing or foreign
// post → ErrRecordNotFound.
func (r *PostRepository) Delete(ctx context.Context, postID, authorID uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", postID, authorID).
		Delete(&db.Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Feed selects the personalized feed candidates:
// (author followed) OR (category preferred) OR (public), never hidden,
// newest first with id as the deterministic tie-break.
func (r *PostRepository) Feed(
	ctx context.Context,
	followedIDs []uint64,
	preferredCategories []string,
	limit int,
) ([]db.Post, error) {
	or := r.db.Where("visibility = ?", db.VisibilityPublic)
	if len(followedIDs) > 0 {
		or = or.Or("author_id IN ?", followedIDs)
	}
	if len(preferredCategories) > 0 {
		or = or.Or(
			"EXISTS (SELECT 1 FROM post_categories pc WHERE pc.post_id = posts.id AND pc.category IN ?)",
			preferredCategories,
		)
	}

	var posts []db.Post
	err := r.db.WithContext(ctx).
		Model(&db.Post{}).
		Preload("Categories").
		Preload("Tags").
		Preload("Media").
		Preload("Comments").
		Where("is_hidden = ?", false).
		Where(or).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// MarkViewed records a view and reports whether this was the viewer's
// first. The composite PK plus insert-ignore makes repeat views no-ops,
// which is what keeps preference counting idempotent per (user, post).
func (r *PostRepository) MarkViewed(ctx context.Context, postID, userID uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.PostView{PostID: postID, UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ToggleReaction flips a like/save mark: present → removed, absent →
// created. Returns whether the reaction is set after the call.
func (r *PostRepository) ToggleReaction(ctx context.Context, postID, userID uint64, kind string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, kind).
		Delete(&db.PostReaction{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	err := r.db.WithContext(ctx).Create(&db.PostReaction{
		PostID: postID,
		UserID: userID,
		Kind:   kind,
	}).Error
	return err == nil, err
}

// AddReaction records a one-way reaction (shares). Already present is
// fine and stays a single row.
func (r *PostRepository) AddReaction(ctx context.Context, postID, userID uint64, kind string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&db.PostReaction{PostID: postID, UserID: userID, Kind: kind}).Error
}

// ReactionCounts aggregates reaction tallies per post and kind.
func (r *PostRepository) ReactionCounts(ctx context.Context, postIDs []uint64) (map[uint64]map[string]int64, error) {
	out := make(map[uint64]map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		PostID uint64
		Kind   string
		Total  int64
	}
	err := r.db.WithContext(ctx).
		Model(&db.PostReaction{}).
		Select("post_id", "kind", "COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Group("kind").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		if out[row.PostID] == nil {
			out[row.PostID] = make(map[string]int64, 3)
		}
		out[row.PostID][row.Kind] = row.Total
	}
	return out, nil
}

// AddComment appends an immutable comment to a post.
func (r *PostRepository) AddComment(ctx context.Context, comment *db.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}
