package server

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amora-app/amora/internal/config"
)

// Registrar is a common interface for all route registrars.
type Registrar interface {
	Register(r *gin.Engine)
}

// StartHTTPServer boots the HTTP/websocket server and registers all
// provided services.
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	if cfg.App.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(), cors.Default())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// register all services
	for _, r := range registrars {
		r.Register(router)
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return router.Run(addr)
}
