package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blog-admin/services/posts/internal/entity"

	"github.com/redis/go-redis/v9"
)

const (
	listKey    = "posts:list"
	postPrefix = "posts:item:"
)

// PostCache keeps read results in redis. A miss returns (nil, nil).
type PostCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPostCache(client *redis.Client, ttl time.Duration) *PostCache {
	return &PostCache{client: client, ttl: ttl}
}

func (c *PostCache) GetList(ctx context.Context) ([]*entity.Post, error) {
	var posts []*entity.Post
	found, err := c.get(ctx, listKey, &posts)
	if err != nil || !found {
		return nil, err
	}
	return posts, nil
}

func (c *PostCache) SetList(ctx context.Context, posts []*entity.Post) error {
	return c.set(ctx, listKey, posts)
}

func (c *PostCache) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	var post entity.Post
	found, err := c.get(ctx, postPrefix+id, &post)
	if err != nil || !found {
		return nil, err
	}
	return &post, nil
}

func (c *PostCache) SetPost(ctx context.Context, post *entity.Post) error {
	return c.set(ctx, postPrefix+post.ID, post)
}

// Invalidate drops the list and the given posts.
func (c *PostCache) Invalidate(ctx context.Context, ids ...string) error {
	keys := []string{listKey}
	for _, id := range ids {
		keys = append(keys, postPrefix+id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate post cache: %w", err)
	}
	return nil
}

func (c *PostCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

func (c *PostCache) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}
