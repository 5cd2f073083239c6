package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"blog-admin/pkg/config"
	"blog-admin/pkg/logger"
	"blog-admin/services/admin/internal/blog"
	"blog-admin/services/admin/internal/blogtest"
	"blog-admin/services/admin/internal/entity"
	"blog-admin/services/admin/internal/middleware"
	"blog-admin/services/admin/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *blogtest.Server, *middleware.Toaster) {
	t.Helper()
	server := blogtest.NewServer(t)
	log := logger.Discard()
	toaster := middleware.NewToaster(log)

	a, err := New(&config.Config{BlogAPIURL: server.URL}, log, toaster)
	require.NoError(t, err)
	return a, server, toaster
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func draft(title string) entity.PostDraft {
	return entity.PostDraft{
		Title:         title,
		Description:   "d",
		FeaturedImage: "u",
		PublishDate:   "2024-01-01T00:00",
	}
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	_, err := New(&config.Config{BlogAPIURL: "localhost"}, logger.Discard(), middleware.NewToaster(logger.Discard()))
	assert.Error(t, err)
}

func TestCreateThenList_ContainsPostOnce(t *testing.T) {
	a, _, _ := newTestApp(t)
	posts := a.Service.GetPosts.Subscribe(query.Void{})
	defer posts.Unsubscribe()
	_, err := posts.Wait(testCtx(t))
	require.NoError(t, err)

	created, err := a.Service.AddPost.Trigger(testCtx(t), draft("A"))
	require.NoError(t, err)
	assert.Equal(t, entity.Post{
		ID:            "1",
		Title:         "A",
		Description:   "d",
		FeaturedImage: "u",
		PublishDate:   "2024-01-01T00:00",
	}, created)

	r, err := posts.Wait(testCtx(t))
	require.NoError(t, err)
	count := 0
	for _, p := range r.Data {
		if p.ID == created.ID {
			count++
		}
	}
	assert.Equal(t, 1, count)

	listTag := query.Tag{Type: blog.TagPosts, ID: query.ListID}
	assert.Equal(t, 1, a.Store.GetState().BlogAPI.Invalidations[listTag])
}

func TestUpdateThenGet_ReturnsUpdatedFields(t *testing.T) {
	a, server, _ := newTestApp(t)
	seeded := server.Seed(draft("A"))[0]

	detail := a.Service.GetPostByID.Subscribe(seeded.ID)
	defer detail.Unsubscribe()
	_, err := detail.Wait(testCtx(t))
	require.NoError(t, err)

	changed := seeded
	changed.Title = "A2"
	changed.Published = true
	_, err = a.Service.UpdatePost.Trigger(testCtx(t), changed)
	require.NoError(t, err)

	r, err := detail.Wait(testCtx(t))
	require.NoError(t, err)
	assert.Equal(t, changed, r.Data)
	assert.Equal(t, seeded.ID, r.Data.ID)
	assert.Equal(t, 2, server.Calls("GET /posts/:id"))
}

func TestDeleteThenList_DropsPost(t *testing.T) {
	a, server, _ := newTestApp(t)
	seeded := server.Seed(draft("A"), draft("B"))

	posts := a.Service.GetPosts.Subscribe(query.Void{})
	defer posts.Unsubscribe()
	r, err := posts.Wait(testCtx(t))
	require.NoError(t, err)
	require.Len(t, r.Data, 2)

	_, err = a.Service.DeletePost.Trigger(testCtx(t), seeded[0].ID)
	require.NoError(t, err)

	r, err = posts.Wait(testCtx(t))
	require.NoError(t, err)
	require.Len(t, r.Data, 1)
	assert.Equal(t, seeded[1].ID, r.Data[0].ID)
}

func TestDelete_InvalidatesOpenDetailView(t *testing.T) {
	a, server, toaster := newTestApp(t)
	seeded := server.Seed(draft("A"))[0]

	detail := a.Service.GetPostByID.Subscribe(seeded.ID)
	defer detail.Unsubscribe()
	_, err := detail.Wait(testCtx(t))
	require.NoError(t, err)

	deleted, err := a.Service.DeletePost.Trigger(testCtx(t), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded, deleted)

	postTag := query.Tag{Type: blog.TagPosts, ID: seeded.ID}
	assert.Equal(t, 1, a.Store.GetState().BlogAPI.Invalidations[postTag])

	// the refetch finds the post gone
	r, err := detail.Wait(testCtx(t))
	require.NoError(t, err)
	assert.True(t, r.IsError())
	assert.Equal(t, 2, server.Calls("GET /posts/:id"))
	assert.Equal(t, []string{"post not found"}, toaster.Messages())
}

func TestConcurrentListRequests_MakeOneCall(t *testing.T) {
	a, server, _ := newTestApp(t)
	server.Seed(draft("A"))
	release := server.HoldList()
	defer release()

	results := make([][]entity.Post, 2)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			posts, err := a.Service.GetPosts.Refetch(testCtx(t), query.Void{})
			assert.NoError(t, err)
			results[i] = posts
		}()
	}

	assert.Eventually(t, func() bool {
		return server.Calls("GET /posts") == 1
	}, 5*time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()

	assert.Equal(t, 1, server.Calls("GET /posts"))
	assert.Equal(t, results[0], results[1])
}

func TestErrorLogger_OnlyToastsMessages(t *testing.T) {
	a, _, toaster := newTestApp(t)

	_, err := a.Service.AddPost.Trigger(testCtx(t), entity.PostDraft{})
	require.Error(t, err)
	assert.Empty(t, toaster.Messages())

	_, err = a.Service.DeletePost.Trigger(testCtx(t), "missing")
	require.Error(t, err)
	assert.Equal(t, []string{"post not found"}, toaster.Drain())
}

func TestEditTarget(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.Dispatch(blog.StartEditPost("3"))
	assert.Equal(t, "3", a.EditTarget())

	a.Dispatch(blog.CancelEditPost())
	assert.Empty(t, a.EditTarget())
}
