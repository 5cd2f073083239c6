package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"blog-admin/pkg/logger"
	"blog-admin/services/posts/internal/entity"
	"blog-admin/services/posts/internal/repo/persistent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *entity.Post) error {
	args := m.Called(post)
	if args.Error(0) == nil {
		post.ID = "generated"
	}
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(id string) (*entity.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostRepository) List() ([]*entity.Post, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostRepository) Update(post *entity.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(id string) (*entity.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

type MockPostCache struct {
	mock.Mock
}

func (m *MockPostCache) GetList(ctx context.Context) ([]*entity.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Post), args.Error(1)
}

func (m *MockPostCache) SetList(ctx context.Context, posts []*entity.Post) error {
	return m.Called(ctx, posts).Error(0)
}

func (m *MockPostCache) GetPost(ctx context.Context, id string) (*entity.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Post), args.Error(1)
}

func (m *MockPostCache) SetPost(ctx context.Context, post *entity.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *MockPostCache) Invalidate(ctx context.Context, ids ...string) error {
	args := []interface{}{ctx}
	for _, id := range ids {
		args = append(args, id)
	}
	return m.Called(args...).Error(0)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) UploadFile(key string, file io.Reader, contentType string) (string, error) {
	args := m.Called(key, file, contentType)
	return args.String(0), args.Error(1)
}

func validInput() entity.PostInput {
	return entity.PostInput{
		Title:         "A",
		Description:   "d",
		FeaturedImage: "https://images.test/a.png",
		PublishDate:   "2024-01-01T00:00",
	}
}

func TestListPosts_CacheHit(t *testing.T) {
	repo := new(MockPostRepository)
	cache := new(MockPostCache)
	cached := []*entity.Post{{ID: "1", Title: "A"}}
	cache.On("GetList", mock.Anything).Return(cached, nil)

	uc := NewPostUseCase(repo, cache, nil, logger.Discard())
	posts, err := uc.ListPosts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cached, posts)
	repo.AssertNotCalled(t, "List")
}

func TestListPosts_CacheMissFillsCache(t *testing.T) {
	repo := new(MockPostRepository)
	cache := new(MockPostCache)
	stored := []*entity.Post{{ID: "1", Title: "A"}}
	cache.On("GetList", mock.Anything).Return(nil, nil)
	repo.On("List").Return(stored, nil)
	cache.On("SetList", mock.Anything, stored).Return(nil)

	uc := NewPostUseCase(repo, cache, nil, logger.Discard())
	posts, err := uc.ListPosts(context.Background())

	require.NoError(t, err)
	assert.Equal(t, stored, posts)
	cache.AssertExpectations(t)
}

func TestListPosts_CacheErrorFallsBackToRepository(t *testing.T) {
	repo := new(MockPostRepository)
	cache := new(MockPostCache)
	cache.On("GetList", mock.Anything).Return(nil, errors.New("connection refused"))
	cache.On("SetList", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	repo.On("List").Return([]*entity.Post{}, nil)

	uc := NewPostUseCase(repo, cache, nil, logger.Discard())
	posts, err := uc.ListPosts(context.Background())

	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestGetPost_NotFound(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("GetByID", "missing").Return(nil, persistent.ErrPostNotFound)

	uc := NewPostUseCase(repo, nil, nil, logger.Discard())
	_, err := uc.GetPost(context.Background(), "missing")

	assert.ErrorIs(t, err, persistent.ErrPostNotFound)
}

func TestCreatePost_InvalidatesList(t *testing.T) {
	repo := new(MockPostRepository)
	cache := new(MockPostCache)
	repo.On("Create", mock.AnythingOfType("*entity.Post")).Return(nil)
	cache.On("Invalidate", mock.Anything).Return(nil)

	uc := NewPostUseCase(repo, cache, nil, logger.Discard())
	post, err := uc.CreatePost(context.Background(), validInput())

	require.NoError(t, err)
	assert.Equal(t, "generated", post.ID)
	assert.Equal(t, "A", post.Title)
	cache.AssertExpectations(t)
}

func TestCreatePost_RejectsBadPublishDate(t *testing.T) {
	repo := new(MockPostRepository)
	in := validInput()
	in.PublishDate = "yesterday"

	uc := NewPostUseCase(repo, nil, nil, logger.Discard())
	_, err := uc.CreatePost(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "publishDate")
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreatePost_AcceptsRFC3339(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("Create", mock.Anything).Return(nil)
	in := validInput()
	in.PublishDate = "2024-01-01T00:00:00Z"

	uc := NewPostUseCase(repo, nil, nil, logger.Discard())
	_, err := uc.CreatePost(context.Background(), in)
	assert.NoError(t, err)
}

func TestUpdatePost_InvalidatesPost(t *testing.T) {
	repo := new(MockPostRepository)
	cache := new(MockPostCache)
	repo.On("Update", mock.MatchedBy(func(p *entity.Post) bool {
		return p.ID == "1" && p.Title == "A"
	})).Return(nil)
	cache.On("Invalidate", mock.Anything, "1").Return(nil)

	uc := NewPostUseCase(repo, cache, nil, logger.Discard())
	post, err := uc.UpdatePost(context.Background(), "1", validInput())

	require.NoError(t, err)
	assert.Equal(t, "1", post.ID)
	cache.AssertExpectations(t)
}

func TestDeletePost(t *testing.T) {
	repo := new(MockPostRepository)
	cache := new(MockPostCache)
	repo.On("Delete", "1").Return(&entity.Post{ID: "1", Title: "A"}, nil)
	repo.On("Delete", "2").Return(nil, persistent.ErrPostNotFound)
	cache.On("Invalidate", mock.Anything, "1").Return(nil)

	uc := NewPostUseCase(repo, cache, nil, logger.Discard())

	post, err := uc.DeletePost(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "A", post.Title)

	_, err = uc.DeletePost(context.Background(), "2")
	assert.ErrorIs(t, err, persistent.ErrPostNotFound)
	cache.AssertNumberOfCalls(t, "Invalidate", 1)
}

func TestUploadImage(t *testing.T) {
	images := new(MockImageStore)
	images.On("UploadFile", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "posts/images/") && strings.HasSuffix(key, ".png")
	}), mock.Anything, "image/png").Return("https://bucket.test/posts/images/x.png", nil)

	uc := NewPostUseCase(new(MockPostRepository), nil, images, logger.Discard())

	url, err := uc.UploadImage("Cover.PNG", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.test/posts/images/x.png", url)

	_, err = uc.UploadImage("notes.txt", "text/plain", strings.NewReader("txt"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUploadImage_Disabled(t *testing.T) {
	uc := NewPostUseCase(new(MockPostRepository), nil, nil, logger.Discard())
	_, err := uc.UploadImage("a.png", "image/png", strings.NewReader("png"))
	assert.ErrorIs(t, err, ErrImagesDisabled)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"title": "required", "publishDate": "bad"}}
	assert.Equal(t, "invalid post: publishDate: bad, title: required", err.Error())
}
