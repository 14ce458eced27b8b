package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/amora-app/amora/internal/app"
	"github.com/amora-app/amora/internal/cache"
	"github.com/amora-app/amora/internal/config"
	"github.com/amora-app/amora/internal/db"
	"github.com/amora-app/amora/internal/logger"
	"github.com/amora-app/amora/internal/server"
	"github.com/amora-app/amora/internal/service/chat"
	"github.com/amora-app/amora/internal/service/feed"
	"github.com/amora-app/amora/internal/service/match"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	appCtx := app.New(database, redisCache, log)

	if cfg.App.Env == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	hub := chat.NewHub(log)

	registrars := []server.Registrar{
		feed.NewRegistrar(appCtx),
		match.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx, hub),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting http server", "addr", addr, "env", cfg.App.Env)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start http server", "err", err)
	}
}
