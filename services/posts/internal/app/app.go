package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-admin/pkg/config"
	"blog-admin/pkg/jwt"
	"blog-admin/pkg/logger"
	"blog-admin/pkg/middleware"
	"blog-admin/pkg/s3"
	postHTTP "blog-admin/services/posts/internal/controller/http"
	"blog-admin/services/posts/internal/repo/cache"
	"blog-admin/services/posts/internal/repo/persistent"
	"blog-admin/services/posts/internal/usecase"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "blog-admin/services/posts/docs" // Swagger docs
)

const postCacheTTL = 5 * time.Minute

// NewUseCase picks the storage and optional cache and image backends.
// db, redisClient and s3Client may each be nil.
func NewUseCase(log *logger.Logger, db *gorm.DB, redisClient *redis.Client, s3Client *s3.Client) usecase.PostUseCase {
	var postRepo persistent.PostRepository
	if db != nil {
		postRepo = persistent.NewPostRepository(db)
	} else {
		postRepo = persistent.NewMemoryPostRepository()
	}

	var postCache usecase.PostCache
	if redisClient != nil {
		postCache = cache.NewPostCache(redisClient, postCacheTTL)
	}

	var images usecase.ImageStore
	if s3Client != nil {
		images = s3Client
	}

	return usecase.NewPostUseCase(postRepo, postCache, images, log)
}

// NewRouter builds the HTTP surface the admin client talks to.
func NewRouter(cfg *config.Config, log *logger.Logger, postUseCase usecase.PostUseCase, redisClient *redis.Client) *gin.Engine {
	postHandler := postHTTP.NewPostHandler(postUseCase, log)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.CustomRecovery(middleware.HandlePanics(log)))

	// CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var jwtService *jwt.Service
	if cfg.JWTSecret != "" {
		jwtService = jwt.NewService(cfg.JWTSecret)
	}
	authHandler := postHTTP.NewAuthHandler(usecase.NewAuthUseCase(cfg.AdminUsername, cfg.AdminPasswordHash, jwtService, log), log)
	r.POST("/auth/token", authHandler.Login)

	api := r.Group("/")
	if jwtService != nil {
		api.Use(middleware.WriteGuard(middleware.AuthMiddleware(jwtService)))
	}
	if redisClient != nil {
		api.Use(middleware.WriteRateLimit(middleware.NewRedisCounter(redisClient), cfg.RateLimitPerMinute, time.Minute, log))
	}

	{
		api.GET("/posts", postHandler.ListPosts)
		api.GET("/posts/:id", postHandler.GetPost)
		api.POST("/posts", postHandler.CreatePost)
		api.PUT("/posts/:id", postHandler.UpdatePost)
		api.DELETE("/posts/:id", postHandler.DeletePost)
		api.POST("/images", postHandler.UploadImage)
	}

	return r
}

func Run(cfg *config.Config, log *logger.Logger, db *gorm.DB, redisClient *redis.Client, s3Client *s3.Client) {
	postUseCase := NewUseCase(log, db, redisClient, s3Client)
	r := NewRouter(cfg, log, postUseCase, redisClient)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Posts service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down posts service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("Error closing database: %v", err)
			}
		}
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	log.Info("Posts service exited")
}
