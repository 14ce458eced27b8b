package chat

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/amora-app/amora/internal/app"
	svcErr "github.com/amora-app/amora/internal/errors"
	"github.com/amora-app/amora/internal/server"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser clients connect cross-origin; auth is out of scope here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Registrar ties the chat service into the HTTP server.
type Registrar struct {
	appCtx *app.AppContext
	svc    *Service
}

// NewRegistrar creates a new Registrar for the chat service.
func NewRegistrar(appCtx *app.AppContext, hub *Hub) *Registrar {
	return &Registrar{appCtx: appCtx, svc: NewChatService(appCtx, hub)}
}

// Service exposes the underlying delivery service for composition.
func (r *Registrar) Service() *Service { return r.svc }

// Register attaches the chat endpoints: the websocket upgrade path plus
// REST mirrors for send and history.
func (r *Registrar) Register(router *gin.Engine) {
	router.GET("/ws", r.serveWS)

	api := router.Group("/api")
	api.POST("/messages", r.sendMessage)
	api.GET("/messages/history", r.history)
}

func (r *Registrar) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.appCtx.Logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := NewClient(r.svc, conn)
	r.appCtx.Logger.Debug("connection opened", "conn", client.id)
	client.Run()
}

type sendMessageRequest struct {
	SenderID    string `json:"sender_id" binding:"required"`
	RecipientID string `json:"recipient_id" binding:"required"`
	Content     string `json:"content"`
}

// sendMessage is the REST mirror of the websocket sendMessage event. The
// caller gets the same synchronous acknowledgement shape; live fan-out
// to joined connections happens regardless of which path sent it.
func (r *Registrar) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("sender_id, recipient_id and content are required"))
		return
	}

	senderID, err1 := strconv.ParseUint(req.SenderID, 10, 64)
	recipientID, err2 := strconv.ParseUint(req.RecipientID, 10, 64)
	if err1 != nil || err2 != nil {
		server.RespondError(c, svcErr.InvalidArgument("sender_id and recipient_id must be valid ids"))
		return
	}

	msg, err := r.svc.Send(c.Request.Context(), senderID, recipientID, req.Content)
	if err != nil {
		server.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": StatusSuccess, "message": msg})
}

func (r *Registrar) history(c *gin.Context) {
	userID, err1 := strconv.ParseUint(c.Query("user_id"), 10, 64)
	friendID, err2 := strconv.ParseUint(c.Query("friend_id"), 10, 64)
	if err1 != nil || err2 != nil {
		server.RespondError(c, svcErr.InvalidArgument("user_id and friend_id must be valid ids"))
		return
	}

	var token *string
	if t := c.Query("token"); t != "" {
		token = &t
	}

	messages, nextToken, err := r.svc.History(c.Request.Context(), userID, friendID, token)
	if err != nil {
		server.RespondError(c, err)
		return
	}

	resp := gin.H{"messages": messages}
	if nextToken != nil {
		resp["next_token"] = *nextToken
	}
	c.JSON(http.StatusOK, resp)
}
