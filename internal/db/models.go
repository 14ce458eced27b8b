package db

import (
	"time"
)

// Post visibility levels.
const (
	VisibilityPublic    = "public"
	VisibilityFollowers = "followers"
	VisibilityPrivate   = "private"
)

// Reaction kinds stored in post_reactions.
const (
	ReactionLike  = "like"
	ReactionShare = "share"
	ReactionSave  = "save"
)

// User table
type User struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement"`
	Email          string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash   string `gorm:"size:255;not null"`
	FirstName      string `gorm:"size:64"`
	LastName       string `gorm:"size:64"`
	Gender         string `gorm:"size:16;not null;index"`
	State          string `gorm:"size:64"`
	Age            int
	Bio            string `gorm:"size:512"`
	ProfilePicture string `gorm:"size:255"`
	Active         bool   `gorm:"default:true"`
	LastLoginAt    time.Time
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Decision represents an actor's like/pass decision on a recipient.
//
// Composite PK: (ActorID, RecipientID)
//   - Ensures a single row per pair (overwrite guarantee).
//
// Indexes:
//   - idx_recipient_liked_updated_actor(recipient_id, liked, updated_at DESC, actor_id)
//     Optimizes "who liked me" lists with pagination.
//   - idx_actor_recipient_liked(actor_id, recipient_id, liked)
//     Optimizes O(1) lookup for mutual like checks.
type Decision struct {
	ActorID     uint64    `gorm:"primaryKey;index:idx_actor_recipient_liked,priority:1"`
	RecipientID uint64    `gorm:"primaryKey;index:idx_recipient_liked_updated_actor,priority:1;index:idx_actor_recipient_liked,priority:2"`
	Liked       bool      `gorm:"not null;index:idx_recipient_liked_updated_actor,priority:2;index:idx_actor_recipient_liked,priority:3"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;index:idx_recipient_liked_updated_actor,priority:3,sort:desc"`
}

// Friendship is one row per accepted pair. Ids are stored sorted
// (UserAID < UserBID) so a pair maps to exactly one row regardless of
// which side initiated.
type Friendship struct {
	UserAID   uint64    `gorm:"primaryKey"`
	UserBID   uint64    `gorm:"primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ProfileVisit records who viewed whose profile. Insert-ignore keeps it
// one row per visitor.
type ProfileVisit struct {
	UserID    uint64    `gorm:"primaryKey"` // profile owner
	VisitorID uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Post table. Categories, tags, reactions and views live in edge tables
// instead of embedded arrays so existence checks stay indexed and the
// row never grows unbounded.
type Post struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	AuthorID   uint64    `gorm:"not null;index:idx_author_created,priority:1"`
	Content    string    `gorm:"type:text"`
	Visibility string    `gorm:"size:16;not null;default:public"`
	IsHidden   bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_author_created,priority:2,sort:desc"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Categories []PostCategory `gorm:"foreignKey:PostID"`
	Tags       []PostTag      `gorm:"foreignKey:PostID"`
	Media      []PostMedia    `gorm:"foreignKey:PostID"`
	Comments   []Comment      `gorm:"foreignKey:PostID"`
}

// PostCategory is one category label attached to a post.
type PostCategory struct {
	PostID   uint64 `gorm:"primaryKey"`
	Category string `gorm:"primaryKey;size:64;index"`
}

// PostTag is a user tagged on a post.
type PostTag struct {
	PostID uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"primaryKey;index"`
}

type PostMedia struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	PostID    uint64 `gorm:"not null;index"`
	Type      string `gorm:"size:16;not null"` // image or video
	URL       string `gorm:"size:512;not null"`
	Thumbnail string `gorm:"size:512"`
}

type Comment struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	PostID    uint64    `gorm:"not null;index"`
	AuthorID  uint64    `gorm:"not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// PostReaction holds like/share/save marks, one row per (post, user, kind).
type PostReaction struct {
	PostID    uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"primaryKey"`
	Kind      string    `gorm:"primaryKey;size:16"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// PostView is one row per distinct (post, viewer). The composite PK is
// what makes view tracking, and therefore preference counting, idempotent.
type PostView struct {
	PostID    uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Follower edge: FollowerID follows UserID. Composite PK enforces the
// unique (user, follower) constraint.
type Follower struct {
	UserID     uint64    `gorm:"primaryKey"`
	FollowerID uint64    `gorm:"primaryKey;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// ContentPreference is the per-user per-category view tally that biases
// feed ranking. Composite PK (UserID, Category); Count only grows.
type ContentPreference struct {
	UserID     uint64 `gorm:"primaryKey"`
	Category   string `gorm:"primaryKey;size:64"`
	Count      int64  `gorm:"not null;default:0"`
	LastViewed time.Time
}

// Message is an immutable chat message. The composite index serves
// history range queries for a participant pair.
type Message struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID    uint64    `gorm:"not null;index:idx_pair_created,priority:1"`
	RecipientID uint64    `gorm:"not null;index:idx_pair_created,priority:2"`
	Content     string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_pair_created,priority:3,sort:desc"`
}

// BroadcastMessage is a persisted one-to-many announcement to selected
// followers. Delivery is pull-only; there is no live fan-out for these.
type BroadcastMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	SenderID  uint64    `gorm:"not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Recipients []BroadcastRecipient `gorm:"foreignKey:BroadcastID"`
}

type BroadcastRecipient struct {
	BroadcastID uint64 `gorm:"primaryKey"`
	UserID      uint64 `gorm:"primaryKey;index"`
}
