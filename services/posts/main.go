package main

import (
	"blog-admin/pkg/cache"
	"blog-admin/pkg/config"
	"blog-admin/pkg/database"
	"blog-admin/pkg/logger"
	"blog-admin/pkg/s3"
	"blog-admin/services/posts/internal/app"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// @title           Blog Posts API
// @version         1.0
// @description     Post storage backing the blog admin client

// @host      localhost:4000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()

	var db *gorm.DB
	if cfg.StorageDriver == "postgres" {
		db, err = database.NewPostgresDB(cfg)
		if err != nil {
			log.Error("Failed to connect to database: %v", err)
			panic(err)
		}
		// Migrations are handled by goose - see cmd/migrate/main.go
	} else {
		log.Info("Using in-memory post storage")
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient, err = cache.NewRedisClient(cfg)
		if err != nil {
			log.Error("Failed to connect to redis: %v", err)
			panic(err)
		}
	}

	var s3Client *s3.Client
	if cfg.S3Enabled() {
		s3Client, err = s3.NewClient(cfg)
		if err != nil {
			log.Error("Failed to create S3 client: %v", err)
			panic(err)
		}
	}

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set; write routes are unauthenticated")
	}

	app.Run(cfg, log, db, redisClient, s3Client)
}
