package main

import (
	"flag"
	"fmt"
	"time"

	"blog-admin/pkg/config"
	"blog-admin/pkg/database"
	"blog-admin/pkg/logger"
	"blog-admin/pkg/models"

	"gorm.io/gorm"
)

func main() {
	var count int
	flag.IntVar(&count, "count", 5, "Number of sample posts to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if err := seedPosts(db, count, log); err != nil {
		log.Error("Failed to seed database: %v", err)
		panic(err)
	}

	log.Info("Database seeded successfully!")
}

func seedPosts(db *gorm.DB, count int, log *logger.Logger) error {
	var existing int64
	if err := db.Model(&models.Post{}).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}
	if existing > 0 {
		log.Info("Posts table already has %d rows, skipping", existing)
		return nil
	}

	start := time.Now().Add(-time.Duration(count) * 24 * time.Hour)
	return db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < count; i++ {
			post := &models.Post{
				Title:         fmt.Sprintf("Sample post %d", i+1),
				Description:   fmt.Sprintf("Body of sample post %d.", i+1),
				FeaturedImage: fmt.Sprintf("https://picsum.photos/seed/post-%d/800/400", i+1),
				PublishDate:   start.Add(time.Duration(i) * 24 * time.Hour).Format("2006-01-02T15:04"),
				Published:     i%2 == 0,
			}
			if err := tx.Create(post).Error; err != nil {
				return fmt.Errorf("failed to create post %d: %w", i+1, err)
			}
			log.Info("Created post %s", post.ID)
		}
		return nil
	})
}
