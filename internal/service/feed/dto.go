package feed

import (
	"time"

	"github.com/amora-app/amora/internal/repository"
)

// FeedPost is the enriched, display-ready view of a post. Enrichment is
// read-only denormalization: it never affects selection or ordering.
type FeedPost struct {
	ID         uint64                   `json:"id"`
	Content    string                   `json:"content"`
	Visibility string                   `json:"visibility"`
	CreatedAt  time.Time                `json:"created_at"`
	Categories []string                 `json:"categories,omitempty"`
	Media      []MediaView              `json:"media,omitempty"`
	Author     repository.UserSummary   `json:"author"`
	Tagged     []repository.UserSummary `json:"tagged,omitempty"`
	Comments   []CommentView            `json:"comments,omitempty"`
	LikeCount  int64                    `json:"like_count"`
	ShareCount int64                    `json:"share_count"`
	SaveCount  int64                    `json:"save_count"`
}

type MediaView struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type CommentView struct {
	ID        uint64                 `json:"id"`
	Content   string                 `json:"content"`
	CreatedAt time.Time              `json:"created_at"`
	Author    repository.UserSummary `json:"author"`
}

// PostInput is the create/edit payload.
type PostInput struct {
	Content    string   `json:"content"`
	Visibility string   `json:"visibility"`
	IsHidden   *bool    `json:"is_hidden,omitempty"`
	Categories []string `json:"categories"`
	TaggedIDs  []uint64 `json:"tagged_ids"`
	Media      []MediaView
}
