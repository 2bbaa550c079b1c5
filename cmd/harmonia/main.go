package main

import (
	"context"
	"log"
	"net/http"

	"harmonia/internal/cache"
	"harmonia/internal/collaborations"
	"harmonia/internal/httpapi"
	"harmonia/internal/logging"
	"harmonia/internal/playlists"
	"harmonia/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	db, err := openDatabase(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()

	redisCache := cache.NewRedis(cfg.RedisAddr)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		// Not fatal: reads degrade to the store until the cache comes back.
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("cache unreachable")
	}

	dataStore := store.New(db)
	collaborationSvc := collaborations.New(dataStore, redisCache, logger)
	playlistSvc := playlists.New(dataStore, redisCache, collaborationSvc, logger)

	server := httpapi.New(playlistSvc, collaborationSvc, httpapi.NewAuthenticator(cfg.JWTSecret), logger)

	logger.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := http.ListenAndServe(cfg.Addr, server.Routes()); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
