package feed_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/amora-app/amora/internal/app"
	"github.com/amora-app/amora/internal/cache"
	"github.com/amora-app/amora/internal/db"
	svcErr "github.com/amora-app/amora/internal/errors"
	"github.com/amora-app/amora/internal/logger"
	"github.com/amora-app/amora/internal/repository"
	"github.com/amora-app/amora/internal/service/feed"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFeedService(t *testing.T) (*feed.Service, *app.AppContext) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db.Models()...); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	mr := miniredis.RunT(t)
	rc := &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	appCtx := app.New(database, rc, logger.L())
	return feed.NewFeedService(appCtx), appCtx
}

func seedUser(t *testing.T, appCtx *app.AppContext, id uint64) {
	t.Helper()
	u := db.User{ID: id, Email: fmt.Sprintf("user%d@amora.test", id), PasswordHash: "x", Gender: "female"}
	assert.NoError(t, appCtx.DB.Create(&u).Error)
}

func seedFeedPost(t *testing.T, appCtx *app.AppContext, post db.Post) db.Post {
	t.Helper()
	assert.NoError(t, appCtx.DB.Create(&post).Error)
	return post
}

func TestGetFeedHiddenExcluded(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	base := time.Now().UTC().Truncate(time.Millisecond)
	seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "a", Visibility: db.VisibilityPublic, CreatedAt: base.Add(-2 * time.Second)})
	seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "b", Visibility: db.VisibilityPublic, CreatedAt: base.Add(-time.Second)})
	seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "c", Visibility: db.VisibilityPublic, CreatedAt: base})
	seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "hidden", Visibility: db.VisibilityPublic, IsHidden: true, CreatedAt: base})

	posts, err := svc.GetFeed(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, posts, 3)
	assert.Equal(t, "c", posts[0].Content)
	assert.Equal(t, "b", posts[1].Content)
	assert.Equal(t, "a", posts[2].Content)
}

func TestGetFeedBounded(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	for i := 0; i < 30; i++ {
		seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "p", Visibility: db.VisibilityPublic})
	}

	posts, err := svc.GetFeed(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, posts, 20)
}

func TestGetFeedFollowedAndPreferred(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	for id := uint64(1); id <= 4; id++ {
		seedUser(t, appCtx, id)
	}

	// user 1 follows user 2 and has viewed travel posts
	followerRepo := repository.NewFollowerRepository(appCtx.DB)
	assert.NoError(t, followerRepo.Follow(ctx, 2, 1))
	prefRepo := repository.NewPreferenceRepository(appCtx.DB)
	assert.NoError(t, prefRepo.RecordView(ctx, 1, []string{"travel"}))

	fromFollowed := seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "followed", Visibility: db.VisibilityFollowers})
	preferred := seedFeedPost(t, appCtx, db.Post{
		AuthorID: 3, Content: "travel pics", Visibility: db.VisibilityFollowers,
		Categories: []db.PostCategory{{Category: "travel"}},
	})
	seedFeedPost(t, appCtx, db.Post{AuthorID: 4, Content: "invisible", Visibility: db.VisibilityFollowers})

	posts, err := svc.GetFeed(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, posts, 2)

	ids := []uint64{posts[0].ID, posts[1].ID}
	assert.ElementsMatch(t, []uint64{fromFollowed.ID, preferred.ID}, ids)
}

func TestGetFeedColdStartPublicOnly(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "public", Visibility: db.VisibilityPublic})
	seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "followers only", Visibility: db.VisibilityFollowers})

	// no follows, no history
	posts, err := svc.GetFeed(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, posts, 1)
	assert.Equal(t, "public", posts[0].Content)
}

func TestCreatePostRecordsPreferences(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)

	post, err := svc.CreatePost(ctx, 1, feed.PostInput{
		Content:    "sunset",
		Categories: []string{"Travel", "travel", "  photo  "},
	})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"travel", "photo"}, post.Categories)

	prefRepo := repository.NewPreferenceRepository(appCtx.DB)
	count, err := prefRepo.GetCount(ctx, 1, "travel")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestPreferenceKeysMatchStoredCategories(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	// mixed-case input is stored and tallied under one normalized key
	post, err := svc.CreatePost(ctx, 1, feed.PostInput{Content: "trip", Categories: []string{"Travel", "travel"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"travel"}, post.Categories)

	prefRepo := repository.NewPreferenceRepository(appCtx.DB)
	top, err := prefRepo.TopCategories(ctx, 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, []string{"travel"}, top)

	count, err := prefRepo.GetCount(ctx, 1, "travel")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// ranked category actually selects posts in the feed query
	fromOther := seedFeedPost(t, appCtx, db.Post{
		AuthorID: 2, Content: "also travel", Visibility: db.VisibilityFollowers,
		Categories: []db.PostCategory{{Category: "travel"}},
	})
	posts, err := svc.GetFeed(ctx, 1)
	assert.NoError(t, err)
	ids := make([]uint64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, fromOther.ID)
}

func TestEditPostRecordsNormalizedCategories(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)

	post := seedFeedPost(t, appCtx, db.Post{AuthorID: 1, Content: "p", Visibility: db.VisibilityPublic})

	_, err := svc.EditPost(ctx, 1, post.ID, feed.PostInput{Categories: []string{"  Music "}})
	assert.NoError(t, err)

	prefRepo := repository.NewPreferenceRepository(appCtx.DB)
	count, err := prefRepo.GetCount(ctx, 1, "music")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)

	_, err := svc.CreatePost(ctx, 1, feed.PostInput{Content: "   "})
	assert.Equal(t, "invalid_argument", svcErr.Map(err).Code)

	_, err = svc.CreatePost(ctx, 1, feed.PostInput{Content: "hi", Visibility: "friends-of-friends"})
	assert.Equal(t, "invalid_argument", svcErr.Map(err).Code)
}

func TestEditPostOnlyByAuthor(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	post := seedFeedPost(t, appCtx, db.Post{AuthorID: 1, Content: "mine", Visibility: db.VisibilityPublic})

	_, err := svc.EditPost(ctx, 2, post.ID, feed.PostInput{Content: "hijacked"})
	assert.Equal(t, "not_found", svcErr.Map(err).Code)

	hidden := true
	updated, err := svc.EditPost(ctx, 1, post.ID, feed.PostInput{Content: "edited", IsHidden: &hidden})
	assert.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)

	// hidden after edit → gone from the feed
	posts, err := svc.GetFeed(ctx, 2)
	assert.NoError(t, err)
	assert.Empty(t, posts)
}

func TestTrackViewCountsOnce(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	post := seedFeedPost(t, appCtx, db.Post{
		AuthorID: 2, Content: "p", Visibility: db.VisibilityPublic,
		Categories: []db.PostCategory{{Category: "music"}},
	})

	// repeat views of the same post must not inflate the tally
	for i := 0; i < 3; i++ {
		assert.NoError(t, svc.TrackView(ctx, 1, post.ID))
	}

	prefRepo := repository.NewPreferenceRepository(appCtx.DB)
	count, err := prefRepo.GetCount(ctx, 1, "music")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestTrackViewMissingPost(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)

	err := svc.TrackView(ctx, 1, 999)
	assert.Equal(t, "not_found", svcErr.Map(err).Code)
}

func TestLikeToggleAndCounts(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	post := seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "p", Visibility: db.VisibilityPublic})

	liked, err := svc.LikePost(ctx, 1, post.ID)
	assert.NoError(t, err)
	assert.True(t, liked)

	view, err := svc.GetPost(ctx, post.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), view.LikeCount)

	liked, err = svc.LikePost(ctx, 1, post.ID)
	assert.NoError(t, err)
	assert.False(t, liked)
}

func TestCommentOnPost(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	seedUser(t, appCtx, 1)
	seedUser(t, appCtx, 2)

	post := seedFeedPost(t, appCtx, db.Post{AuthorID: 2, Content: "p", Visibility: db.VisibilityPublic})

	view, err := svc.CommentOnPost(ctx, 1, post.ID, "nice one")
	assert.NoError(t, err)
	assert.Len(t, view.Comments, 1)
	assert.Equal(t, "nice one", view.Comments[0].Content)

	_, err = svc.CommentOnPost(ctx, 1, post.ID, " ")
	assert.Equal(t, "invalid_argument", svcErr.Map(err).Code)
}

func TestBroadcastOnlyToFollowers(t *testing.T) {
	ctx := context.Background()
	svc, appCtx := setupFeedService(t)
	for id := uint64(1); id <= 3; id++ {
		seedUser(t, appCtx, id)
	}

	followerRepo := repository.NewFollowerRepository(appCtx.DB)
	assert.NoError(t, followerRepo.Follow(ctx, 1, 2))

	// user 3 is in the list but does not follow user 1
	assert.NoError(t, svc.SendBroadcast(ctx, 1, "big news", []uint64{2, 3}))

	forFollower, err := svc.Broadcasts(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, forFollower, 1)
	assert.Equal(t, "big news", forFollower[0].Content)

	forStranger, err := svc.Broadcasts(ctx, 3)
	assert.NoError(t, err)
	assert.Empty(t, forStranger)
}
