package view

import (
	"context"
	"fmt"
	"io"
	"sync"

	"blog-admin/services/admin/internal/app"
	"blog-admin/services/admin/internal/blog"
	"blog-admin/services/admin/internal/entity"
	"blog-admin/services/admin/internal/query"
)

const skeletonRows = 4

// PostList shows every post and offers edit and delete per row.
type PostList struct {
	app    *app.App
	delete *query.MutationHandle[string, entity.Post]

	mu  sync.Mutex
	sub *query.Subscription[query.Void, []entity.Post]
}

func NewPostList(a *app.App) *PostList {
	return &PostList{
		app:    a,
		delete: a.Service.DeletePost.Use(),
	}
}

// Mount subscribes to the post list. It is safe to call more than once.
func (l *PostList) Mount() {
	l.mounted()
}

func (l *PostList) mounted() *query.Subscription[query.Void, []entity.Post] {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sub == nil {
		l.sub = l.app.Service.GetPosts.Subscribe(query.Void{})
	}
	return l.sub
}

func (l *PostList) Unmount() {
	l.mu.Lock()
	sub := l.sub
	l.sub = nil
	l.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (l *PostList) Result() query.Result[[]entity.Post] {
	return l.app.Service.GetPosts.Select(query.Void{})
}

// Changes signals when the list may need to be rendered again.
func (l *PostList) Changes() <-chan struct{} {
	return l.mounted().Changes()
}

// Wait blocks until the list has settled after the latest invalidation.
func (l *PostList) Wait(ctx context.Context) (query.Result[[]entity.Post], error) {
	return l.mounted().Wait(ctx)
}

func (l *PostList) Render(w io.Writer) error {
	r := l.Result()

	if r.IsFetching() || r.IsUninitialized() {
		for i := 0; i < skeletonRows; i++ {
			if err := SkeletonPost(w); err != nil {
				return err
			}
		}
		return nil
	}

	if r.IsError() && !r.HasData {
		_, err := fmt.Fprintf(w, "could not load posts: %v\n", r.Error)
		return err
	}

	if len(r.Data) == 0 {
		_, err := fmt.Fprintln(w, "no posts yet")
		return err
	}

	target := l.app.EditTarget()
	for _, post := range r.Data {
		if err := PostItem(w, post, post.ID == target); err != nil {
			return err
		}
	}
	return nil
}

func (l *PostList) StartEdit(id string) {
	l.app.Dispatch(blog.StartEditPost(id))
}

// Delete removes the post and waits for the server. Deleting the post the
// form is editing also cancels the edit.
func (l *PostList) Delete(ctx context.Context, id string) error {
	if _, err := l.delete.Trigger(ctx, id); err != nil {
		return err
	}
	if l.app.EditTarget() == id {
		l.app.Dispatch(blog.CancelEditPost())
	}
	return nil
}
