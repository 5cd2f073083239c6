package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"blog-admin/pkg/logger"
	"blog-admin/services/posts/internal/entity"
	"blog-admin/services/posts/internal/repo/persistent"

	"github.com/google/uuid"
)

// ErrImagesDisabled is returned by UploadImage when no bucket is configured.
var ErrImagesDisabled = errors.New("image upload is not configured")

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "invalid post: " + strings.Join(parts, ", ")
}

type PostCache interface {
	GetList(ctx context.Context) ([]*entity.Post, error)
	SetList(ctx context.Context, posts []*entity.Post) error
	GetPost(ctx context.Context, id string) (*entity.Post, error)
	SetPost(ctx context.Context, post *entity.Post) error
	Invalidate(ctx context.Context, ids ...string) error
}

type ImageStore interface {
	UploadFile(key string, file io.Reader, contentType string) (string, error)
}

type PostUseCase interface {
	ListPosts(ctx context.Context) ([]*entity.Post, error)
	GetPost(ctx context.Context, id string) (*entity.Post, error)
	CreatePost(ctx context.Context, in entity.PostInput) (*entity.Post, error)
	UpdatePost(ctx context.Context, id string, in entity.PostInput) (*entity.Post, error)
	DeletePost(ctx context.Context, id string) (*entity.Post, error)
	UploadImage(filename, contentType string, file io.Reader) (string, error)
}

type postUseCase struct {
	postRepo persistent.PostRepository
	cache    PostCache
	images   ImageStore
	logger   *logger.Logger
}

// NewPostUseCase wires the post operations. cache and images may be nil.
func NewPostUseCase(postRepo persistent.PostRepository, cache PostCache, images ImageStore, logger *logger.Logger) PostUseCase {
	return &postUseCase{
		postRepo: postRepo,
		cache:    cache,
		images:   images,
		logger:   logger,
	}
}

func (uc *postUseCase) ListPosts(ctx context.Context) ([]*entity.Post, error) {
	if uc.cache != nil {
		posts, err := uc.cache.GetList(ctx)
		if err != nil {
			uc.logger.Warn("Post cache read failed: %v", err)
		} else if posts != nil {
			return posts, nil
		}
	}

	posts, err := uc.postRepo.List()
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetList(ctx, posts); err != nil {
			uc.logger.Warn("Post cache write failed: %v", err)
		}
	}
	return posts, nil
}

func (uc *postUseCase) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	if uc.cache != nil {
		post, err := uc.cache.GetPost(ctx, id)
		if err != nil {
			uc.logger.Warn("Post cache read failed: %v", err)
		} else if post != nil {
			return post, nil
		}
	}

	post, err := uc.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetPost(ctx, post); err != nil {
			uc.logger.Warn("Post cache write failed: %v", err)
		}
	}
	return post, nil
}

func (uc *postUseCase) CreatePost(ctx context.Context, in entity.PostInput) (*entity.Post, error) {
	if err := validatePublishDate(in.PublishDate); err != nil {
		return nil, err
	}

	post := &entity.Post{}
	in.Apply(post)
	if err := uc.postRepo.Create(post); err != nil {
		return nil, err
	}

	uc.invalidate(ctx)
	uc.logger.Info("Post %s created", post.ID)
	return post, nil
}

func (uc *postUseCase) UpdatePost(ctx context.Context, id string, in entity.PostInput) (*entity.Post, error) {
	if err := validatePublishDate(in.PublishDate); err != nil {
		return nil, err
	}

	post := &entity.Post{ID: id}
	in.Apply(post)
	if err := uc.postRepo.Update(post); err != nil {
		return nil, err
	}

	uc.invalidate(ctx, id)
	uc.logger.Info("Post %s updated", id)
	return post, nil
}

func (uc *postUseCase) DeletePost(ctx context.Context, id string) (*entity.Post, error) {
	post, err := uc.postRepo.Delete(id)
	if err != nil {
		return nil, err
	}

	uc.invalidate(ctx, id)
	uc.logger.Info("Post %s deleted", id)
	return post, nil
}

func (uc *postUseCase) UploadImage(filename, contentType string, file io.Reader) (string, error) {
	if uc.images == nil {
		return "", ErrImagesDisabled
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		return "", &ValidationError{Fields: map[string]string{"file": "file must be a jpg, png, gif or webp image"}}
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	key := fmt.Sprintf("posts/images/%s%s", uuid.New().String(), ext)
	url, err := uc.images.UploadFile(key, file, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return url, nil
}

func (uc *postUseCase) invalidate(ctx context.Context, ids ...string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, ids...); err != nil {
		uc.logger.Warn("Post cache invalidation failed: %v", err)
	}
}

// validatePublishDate accepts the datetime-local form and RFC 3339.
func validatePublishDate(value string) error {
	if _, err := time.Parse(entity.PublishDateLayout, value); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return nil
	}
	return &ValidationError{Fields: map[string]string{
		"publishDate": "publishDate must look like " + entity.PublishDateLayout,
	}}
}
