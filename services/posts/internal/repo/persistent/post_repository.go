package persistent

import (
	"errors"
	"fmt"

	"blog-admin/pkg/models"
	"blog-admin/services/posts/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(post *entity.Post) error
	GetByID(id string) (*entity.Post, error)
	List() ([]*entity.Post, error)
	Update(post *entity.Post) error
	Delete(id string) (*entity.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	if err := r.db.Create(postModel).Error; err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(id string) (*entity.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		// ids are uuids; anything else cannot exist and would fail the cast
		return nil, ErrPostNotFound
	}

	var postModel models.Post
	if err := r.db.Where("id = ?", id).First(&postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) List() ([]*entity.Post, error) {
	var postModels []models.Post
	if err := r.db.Order("created_at ASC").Find(&postModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return ToPostEntities(postModels), nil
}

func (r *postRepository) Update(post *entity.Post) error {
	if _, err := uuid.Parse(post.ID); err != nil {
		return ErrPostNotFound
	}

	result := r.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"title":          post.Title,
		"description":    post.Description,
		"featured_image": post.FeaturedImage,
		"publish_date":   post.PublishDate,
		"published":      post.Published,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update post: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}

	updated, err := r.GetByID(post.ID)
	if err != nil {
		return err
	}
	*post = *updated
	return nil
}

func (r *postRepository) Delete(id string) (*entity.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrPostNotFound
	}

	var deleted *entity.Post
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var postModel models.Post
		if err := tx.Where("id = ?", id).First(&postModel).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if err := tx.Delete(&postModel).Error; err != nil {
			return err
		}
		deleted = ToPostEntity(&postModel)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete post: %w", err)
	}
	return deleted, nil
}
