package persistent

import (
	"sync"
	"time"

	"blog-admin/services/posts/internal/entity"

	"github.com/google/uuid"
)

// memoryRepository keeps posts in insertion order. It backs local runs and
// tests when no database is configured.
type memoryRepository struct {
	mu    sync.RWMutex
	posts map[string]entity.Post
	order []string
}

func NewMemoryPostRepository() PostRepository {
	return &memoryRepository{posts: make(map[string]entity.Post)}
}

func (r *memoryRepository) Create(post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	r.posts[post.ID] = *post
	r.order = append(r.order, post.ID)
	return nil
}

func (r *memoryRepository) GetByID(id string) (*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	return &post, nil
}

func (r *memoryRepository) List() ([]*entity.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := make([]*entity.Post, 0, len(r.order))
	for _, id := range r.order {
		post := r.posts[id]
		posts = append(posts, &post)
	}
	return posts, nil
}

func (r *memoryRepository) Update(post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[post.ID]
	if !ok {
		return ErrPostNotFound
	}
	post.CreatedAt = existing.CreatedAt
	post.UpdatedAt = time.Now()
	r.posts[post.ID] = *post
	return nil
}

func (r *memoryRepository) Delete(id string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	delete(r.posts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return &post, nil
}
