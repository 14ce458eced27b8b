package match

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/amora-app/amora/internal/app"
	svcErr "github.com/amora-app/amora/internal/errors"
	"github.com/amora-app/amora/internal/server"
)

// Registrar ties the match service into the HTTP server.
type Registrar struct {
	svc *Service
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{svc: NewMatchService(appCtx)}
}

func (r *Registrar) Register(router *gin.Engine) {
	api := router.Group("/api/dating")

	api.GET("/discover", r.discover)
	api.POST("/users/:id/like", r.like)
	api.POST("/users/:id/pass", r.pass)
	api.POST("/users/:id/accept", r.accept)
	api.POST("/users/:id/reject", r.reject)
	api.DELETE("/users/:id/friend", r.unfriend)
	api.GET("/users/:id/profile", r.profile)
	api.GET("/liked-by", r.likedBy)
	api.GET("/liked-by/count", r.likedByCount)
	api.GET("/friends", r.friends)
	api.GET("/visitors", r.visitors)
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

func (r *Registrar) discover(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	users, err := r.svc.Discover(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (r *Registrar) like(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c)
	if !ok {
		return
	}
	mutual, err := r.svc.Like(c.Request.Context(), userID, targetID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "liked", "mutual": mutual})
}

func (r *Registrar) pass(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Pass(c.Request.Context(), userID, targetID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "passed"})
}

func (r *Registrar) accept(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	requesterID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Accept(c.Request.Context(), userID, requesterID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}

func (r *Registrar) reject(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	requesterID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Reject(c.Request.Context(), userID, requesterID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

func (r *Registrar) unfriend(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	friendID, ok := pathID(c)
	if !ok {
		return
	}
	if err := r.svc.Unfriend(c.Request.Context(), userID, friendID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unfriended"})
}

func (r *Registrar) profile(c *gin.Context) {
	viewerID, ok := actingUser(c)
	if !ok {
		return
	}
	ownerID, ok := pathID(c)
	if !ok {
		return
	}
	user, err := r.svc.Profile(c.Request.Context(), viewerID, ownerID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	// never leak the credential hash
	user.PasswordHash = ""
	c.JSON(http.StatusOK, user)
}

func (r *Registrar) likedBy(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	var token *string
	if t := c.Query("token"); t != "" {
		token = &t
	}
	likers, nextToken, err := r.svc.LikedBy(c.Request.Context(), userID, token)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	resp := gin.H{"likers": likers}
	if nextToken != nil {
		resp["next_token"] = *nextToken
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Registrar) likedByCount(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	count, err := r.svc.LikedByCount(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (r *Registrar) friends(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	friends, err := r.svc.Friends(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (r *Registrar) visitors(c *gin.Context) {
	userID, ok := actingUser(c)
	if !ok {
		return
	}
	visitors, err := r.svc.Visitors(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"visitors": visitors})
}
