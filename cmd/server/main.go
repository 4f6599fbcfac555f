package main

import (
	"context"

	"anoa.com/minimalblog/internal/bootstrap"
	"anoa.com/minimalblog/internal/config"
	"anoa.com/minimalblog/internal/server"
	"anoa.com/minimalblog/pkg/database"
	"anoa.com/minimalblog/pkg/logger"
	"anoa.com/minimalblog/pkg/password"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Setup(cfg.AppEnv, cfg.LogLevel)
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := bootstrap.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	if cfg.IsDevelopment() {
		hasher := password.NewHasher(cfg.PasswordIterations)
		if err := bootstrap.SeedAdminUser(db, hasher, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin user")
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.OpenRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer redisClient.Close()
	}

	srv, err := server.NewServer(cfg, db, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("blog listening")
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}
}
