package feed

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amora-app/amora/internal/app"
	svcErr "github.com/amora-app/amora/internal/errors"
	"github.com/amora-app/amora/internal/server"
)

// Registrar ties the feed service into the HTTP server.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewFeedService(appCtx)}
}

// Register attaches the feed and post endpoints. The acting user arrives
// as an explicit user_id parameter; session mechanics live upstream.
func (r *Registrar) Register(router *gin.Engine) {
	api := router.Group("/api")

	api.GET("/feed", r.getFeed)

	api.POST("/posts", r.createPost)
	api.GET("/posts/:id", r.getPost)
	api.PUT("/posts/:id", r.editPost)
	api.DELETE("/posts/:id", r.deletePost)
	api.POST("/posts/:id/view", r.trackView)
	api.POST("/posts/:id/like", r.likePost)
	api.POST("/posts/:id/save", r.savePost)
	api.POST("/posts/:id/share", r.sharePost)
	api.POST("/posts/:id/comments", r.commentOnPost)

	api.POST("/users/:id/follow", r.follow)
	api.DELETE("/users/:id/follow", r.unfollow)
	api.GET("/users/:id/followers", r.followers)

	api.POST("/broadcasts", r.sendBroadcast)
	api.GET("/broadcasts", r.broadcasts)
}

func actingUser(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil {
		server.RespondError(c, svcErr.InvalidArgument("user_id must be a valid id"))
		return 0, false
	}
	return id, true
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		server.RespondError(c, svcErr.InvalidArgument("id must be a valid id"))
		return 0, false
	}
	return id, true
}

func (r *Registrar) getFeed(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	posts, err := r.svc.GetFeed(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (r *Registrar) createPost(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("invalid post payload"))
		return
	}
	post, err := r.svc.CreatePost(c.Request.Context(), userID, input)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (r *Registrar) getPost(c *gin.Context) {
	postID, ok := pathID(c)
	if !ok {
		return
	}
	post, err := r.svc.GetPost(c.Request.Context(), postID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (r *Registrar) editPost(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("invalid post payload"))
		return
	}
	post, err := r.svc.EditPost(c.Request.Context(), userID, postID, input)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (r *Registrar) deletePost(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.DeletePost(c.Request.Context(), userID, postID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (r *Registrar) trackView(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.TrackView(c.Request.Context(), userID, postID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Registrar) likePost(c *gin.Context) {
	r.toggle(c, r.svc.LikePost, "liked")
}

func (r *Registrar) savePost(c *gin.Context) {
	r.toggle(c, r.svc.SavePost, "saved")
}

func (r *Registrar) toggle(c *gin.Context, fn func(ctx context.Context, userID, postID uint64) (bool, error), field string) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	set, err := fn(c.Request.Context(), userID, postID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{field: set})
}

func (r *Registrar) sharePost(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.SharePost(c.Request.Context(), userID, postID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "shared"})
}

func (r *Registrar) commentOnPost(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	postID, ok := pathID(c)
	if !ok {
		return
	}
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("comment content must be a non-empty string"))
		return
	}
	post, err := r.svc.CommentOnPost(c.Request.Context(), userID, postID, body.Content)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (r *Registrar) follow(c *gin.Context) {
	followerID, ok := actingUser(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Follow(c.Request.Context(), targetID, followerID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "following"})
}

func (r *Registrar) unfollow(c *gin.Context) {
	followerID, ok := actingUser(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Unfollow(c.Request.Context(), targetID, followerID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
}

func (r *Registrar) followers(c *gin.Context) {
	targetID, ok := pathID(c)
	if !ok {
		return
	}
	followers, err := r.svc.Followers(c.Request.Context(), targetID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"followers": followers})
}

func (r *Registrar) sendBroadcast(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var body struct {
		Content      string   `json:"content"`
		RecipientIDs []uint64 `json:"recipient_ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("invalid broadcast payload"))
		return
	}
	if err := r.svc.SendBroadcast(c.Request.Context(), userID, body.Content, body.RecipientIDs); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}

func (r *Registrar) broadcasts(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	msgs, err := r.svc.Broadcasts(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"broadcasts": msgs})
}
