package feed

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jinzhu/copier"

	"github.com/amora-app/amora/internal/app"
	"github.com/amora-app/amora/internal/cache"
	"github.com/amora-app/amora/internal/db"
	svcErr "github.com/amora-app/amora/internal/errors"
	"github.com/amora-app/amora/internal/repository"
)

const (
	feedLimit         = 20
	topCategoryCount  = 5
	broadcastPageSize = 50
)

// Service assembles the personalized feed and owns the post/follow
// actions that feed it: content preferences are recorded on post
// creation, edit and first view, and follow edges define the
// social-graph slice of the feed query.
type Service struct {
	appCtx      *app.AppContext
	posts       *repository.PostRepository
	followers   *repository.FollowerRepository
	preferences *repository.PreferenceRepository
	users       *repository.UserRepository
	broadcasts  *repository.BroadcastRepository
}

func NewFeedService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:      appCtx,
		posts:       repository.NewPostRepository(appCtx.DB),
		followers:   repository.NewFollowerRepository(appCtx.DB),
		preferences: repository.NewPreferenceRepository(appCtx.DB),
		users:       repository.NewUserRepository(appCtx.DB),
		broadcasts:  repository.NewBroadcastRepository(appCtx.DB),
	}
}

// GetFeed returns up to 20 posts for the user: authored by someone they
// follow, or matching a preferred category, or public — never hidden,
// newest first. A user with no follows and no view history still gets
// the public feed.
func (s *Service) GetFeed(ctx context.Context, userID uint64) ([]*FeedPost, error) {
	followedIDs, err := s.followers.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	preferred, err := s.topCategories(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	posts, err := s.posts.Feed(ctx, followedIDs, preferred, feedLimit)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	views, err := s.enrich(ctx, posts)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Debug("feed assembled",
		"user", userID, "followed", len(followedIDs), "categories", len(preferred), "posts", len(views))

	return views, nil
}

// topCategories resolves the user's top preferred categories,
// cache-first with a short TTL since every recorded view can reorder
// them. Cache trouble falls back to the DB silently.
func (s *Service) topCategories(ctx context.Context, userID uint64) ([]string, error) {
	key := s.appCtx.RedisCache.KeyForTopCategories(userID)

	if cached, err := s.appCtx.RedisCache.Get(ctx, key); err == nil && cached != "" {
		var categories []string
		if err := json.Unmarshal([]byte(cached), &categories); err == nil {
			return categories, nil
		}
	}

	categories, err := s.preferences.TopCategories(ctx, userID, topCategoryCount)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(categories); err == nil {
		_ = s.appCtx.RedisCache.Set(ctx, key, string(encoded), cache.TopCategoriesTTL)
	}
	return categories, nil
}

// CreatePost persists a new post and records its categories into the
// author's preferences.
func (s *Service) CreatePost(ctx context.Context, authorID uint64, input PostInput) (*FeedPost, error) {
	if strings.TrimSpace(input.Content) == "" && len(input.Media) == 0 {
		return nil, svcErr.InvalidArgument("post needs content or media")
	}

	visibility := input.Visibility
	if visibility == "" {
		visibility = db.VisibilityPublic
	}
	switch visibility {
	case db.VisibilityPublic, db.VisibilityFollowers, db.VisibilityPrivate:
	default:
		return nil, svcErr.InvalidArgument("visibility must be public, followers or private")
	}

	categories := normalizeCategories(input.Categories)

	post := db.Post{
		AuthorID:   authorID,
		Content:    input.Content,
		Visibility: visibility,
	}
	for _, c := range categories {
		post.Categories = append(post.Categories, db.PostCategory{Category: c})
	}
	for _, id := range input.TaggedIDs {
		post.Tags = append(post.Tags, db.PostTag{UserID: id})
	}
	for _, m := range input.Media {
		post.Media = append(post.Media, db.PostMedia{Type: m.Type, URL: m.URL, Thumbnail: m.Thumbnail})
	}

	if err := s.posts.Create(ctx, &post); err != nil {
		return nil, svcErr.Map(err)
	}

	// preference tallies use the same keys as the stored post categories,
	// otherwise the feed query's category match can never see them
	s.recordCategories(ctx, authorID, categories)

	return s.enrichOne(ctx, &post)
}

// EditPost updates an author's own post and re-records its categories.
func (s *Service) EditPost(ctx context.Context, authorID, postID uint64, input PostInput) (*FeedPost, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	if post.AuthorID != authorID {
		return nil, svcErr.NotFound("post not found or not yours")
	}

	if input.Content != "" {
		post.Content = input.Content
	}
	if input.Visibility != "" {
		post.Visibility = input.Visibility
	}
	if input.IsHidden != nil {
		post.IsHidden = *input.IsHidden
	}

	var categories []string
	if input.Categories != nil {
		categories = normalizeCategories(input.Categories)
	}
	if err := s.posts.Update(ctx, post, categories); err != nil {
		return nil, svcErr.Map(err)
	}

	s.recordCategories(ctx, authorID, categories)

	updated, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.enrichOne(ctx, updated)
}

func (s *Service) DeletePost(ctx context.Context, authorID, postID uint64) error {
	if err := s.posts.Delete(ctx, postID, authorID); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

func (s *Service) GetPost(ctx context.Context, postID uint64) (*FeedPost, error) {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.enrichOne(ctx, post)
}

// TrackView records a view. Only the first view by a user counts toward
// their content preferences; repeats are no-ops end to end.
func (s *Service) TrackView(ctx context.Context, userID, postID uint64) error {
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		return svcErr.Map(err)
	}

	firstView, err := s.posts.MarkViewed(ctx, postID, userID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !firstView {
		return nil
	}

	categories := make([]string, 0, len(post.Categories))
	for _, c := range post.Categories {
		categories = append(categories, c.Category)
	}
	s.recordCategories(ctx, userID, categories)
	return nil
}

// recordCategories updates preference tallies and invalidates the
// cached ranking. Recording failures are logged and swallowed so the
// originating post action never fails because of them.
func (s *Service) recordCategories(ctx context.Context, userID uint64, categories []string) {
	if len(categories) == 0 {
		return
	}
	if err := s.preferences.RecordView(ctx, userID, categories); err != nil {
		s.appCtx.Logger.Warn("preference recording failed", "user", userID, "err", err)
		return
	}
	_ = s.appCtx.RedisCache.Del(ctx, s.appCtx.RedisCache.KeyForTopCategories(userID))
}

// LikePost toggles the user's like. Returns whether the like is now set.
func (s *Service) LikePost(ctx context.Context, userID, postID uint64) (bool, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return false, err
	}
	liked, err := s.posts.ToggleReaction(ctx, postID, userID, db.ReactionLike)
	if err != nil {
		return false, svcErr.Map(err)
	}
	return liked, nil
}

// SavePost toggles the user's save mark.
func (s *Service) SavePost(ctx context.Context, userID, postID uint64) (bool, error) {
	if err := s.postExists(ctx, postID); err != nil {
		return false, err
	}
	saved, err := s.posts.ToggleReaction(ctx, postID, userID, db.ReactionSave)
	if err != nil {
		return false, svcErr.Map(err)
	}
	return saved, nil
}

// SharePost records a share once; repeat shares stay a single row.
func (s *Service) SharePost(ctx context.Context, userID, postID uint64) error {
	if err := s.postExists(ctx, postID); err != nil {
		return err
	}
	if err := s.posts.AddReaction(ctx, postID, userID, db.ReactionShare); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

func (s *Service) CommentOnPost(ctx context.Context, userID, postID uint64, content string) (*FeedPost, error) {
	if strings.TrimSpace(content) == "" {
		return nil, svcErr.InvalidArgument("comment content must not be empty")
	}
	if err := s.postExists(ctx, postID); err != nil {
		return nil, err
	}

	comment := db.Comment{PostID: postID, AuthorID: userID, Content: content}
	if err := s.posts.AddComment(ctx, &comment); err != nil {
		return nil, svcErr.Map(err)
	}
	return s.GetPost(ctx, postID)
}

// Follow creates the follower edge viewer -> target.
func (s *Service) Follow(ctx context.Context, targetID, followerID uint64) error {
	ok, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return svcErr.Map(err)
	}
	if !ok {
		return svcErr.NotFound("user does not exist")
	}
	if err := s.followers.Follow(ctx, targetID, followerID); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

func (s *Service) Unfollow(ctx context.Context, targetID, followerID uint64) error {
	if err := s.followers.Unfollow(ctx, targetID, followerID); err != nil {
		apiErr := svcErr.Map(err)
		if apiErr.Code == "not_found" {
			return svcErr.NotFound("not following this user")
		}
		return apiErr
	}
	return nil
}

// Followers lists who follows the given user, as display summaries.
func (s *Service) Followers(ctx context.Context, userID uint64) ([]repository.UserSummary, error) {
	ids, err := s.followers.FollowerIDs(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return s.summaryList(ctx, ids)
}

// SendBroadcast persists an announcement to the subset of recipients who
// actually follow the sender. Pull-only delivery.
func (s *Service) SendBroadcast(ctx context.Context, senderID uint64, content string, recipientIDs []uint64) error {
	if strings.TrimSpace(content) == "" {
		return svcErr.InvalidArgument("broadcast content must not be empty")
	}
	valid, err := s.followers.FilterFollowers(ctx, senderID, recipientIDs)
	if err != nil {
		return svcErr.Map(err)
	}
	if _, err := s.broadcasts.Create(ctx, senderID, content, valid); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

func (s *Service) Broadcasts(ctx context.Context, userID uint64) ([]db.BroadcastMessage, error) {
	msgs, err := s.broadcasts.ForRecipient(ctx, userID, broadcastPageSize)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	return msgs, nil
}

// --- enrichment ---

func (s *Service) enrichOne(ctx context.Context, post *db.Post) (*FeedPost, error) {
	views, err := s.enrich(ctx, []db.Post{*post})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// enrich attaches author, tagged-user and comment-author summaries plus
// reaction counts to each post, with one summary query for the batch.
func (s *Service) enrich(ctx context.Context, posts []db.Post) ([]*FeedPost, error) {
	idSet := make(map[uint64]struct{})
	postIDs := make([]uint64, 0, len(posts))
	for i := range posts {
		postIDs = append(postIDs, posts[i].ID)
		idSet[posts[i].AuthorID] = struct{}{}
		for _, tag := range posts[i].Tags {
			idSet[tag.UserID] = struct{}{}
		}
		for _, comment := range posts[i].Comments {
			idSet[comment.AuthorID] = struct{}{}
		}
	}

	ids := make([]uint64, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	summaries, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	counts, err := s.posts.ReactionCounts(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*FeedPost, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		view := &FeedPost{
			ID:         post.ID,
			Content:    post.Content,
			Visibility: post.Visibility,
			CreatedAt:  post.CreatedAt,
			Author:     summaries[post.AuthorID],
		}
		for _, c := range post.Categories {
			view.Categories = append(view.Categories, c.Category)
		}
		if err := copier.Copy(&view.Media, post.Media); err != nil {
			return nil, err
		}
		for _, tag := range post.Tags {
			view.Tagged = append(view.Tagged, summaries[tag.UserID])
		}
		for _, comment := range post.Comments {
			view.Comments = append(view.Comments, CommentView{
				ID:        comment.ID,
				Content:   comment.Content,
				CreatedAt: comment.CreatedAt,
				Author:    summaries[comment.AuthorID],
			})
		}
		if kinds := counts[post.ID]; kinds != nil {
			view.LikeCount = kinds[db.ReactionLike]
			view.ShareCount = kinds[db.ReactionShare]
			view.SaveCount = kinds[db.ReactionSave]
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) summaryList(ctx context.Context, ids []uint64) ([]repository.UserSummary, error) {
	summaries, err := s.users.SummariesByIDs(ctx, ids)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	out := make([]repository.UserSummary, 0, len(ids))
	for _, id := range ids {
		if summary, ok := summaries[id]; ok {
			out = append(out, summary)
		}
	}
	return out, nil
}

func (s *Service) postExists(ctx context.Context, postID uint64) error {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return svcErr.Map(err)
	}
	return nil
}

func normalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
