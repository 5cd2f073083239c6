package view

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"blog-admin/services/admin/internal/app"
	"blog-admin/services/admin/internal/apperr"
	"blog-admin/services/admin/internal/blog"
	"blog-admin/services/admin/internal/entity"
	"blog-admin/services/admin/internal/query"
	"blog-admin/services/admin/internal/store"
)

const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldFeaturedImage = "featuredImage"
	FieldPublishDate   = "publishDate"
)

// CreatePost is the create and edit form. It follows the edit target: when a
// post is selected its data is loaded into the form, when the target is
// cleared the form starts over from the empty template.
type CreatePost struct {
	app    *app.App
	add    *query.MutationHandle[entity.PostDraft, entity.Post]
	update *query.MutationHandle[entity.Post, entity.Post]
	upload *query.MutationHandle[entity.ImageUpload, entity.ImageURL]

	mu      sync.Mutex
	form    entity.Post
	target  string
	seeded  bool
	postSub *query.Subscription[string, entity.Post]
	stop    func()
}

func NewCreatePost(a *app.App) *CreatePost {
	return &CreatePost{
		app:    a,
		add:    a.Service.AddPost.Use(),
		update: a.Service.UpdatePost.Use(),
		upload: a.Service.UploadImage.Use(),
		form:   entity.EmptyPost(),
		seeded: true,
	}
}

// Mount starts following the edit target.
func (c *CreatePost) Mount() {
	c.mu.Lock()
	if c.stop != nil {
		c.mu.Unlock()
		return
	}
	// the current target, not the snapshot: a commit may be delivered after
	// later ones were made
	c.stop = c.app.Store.Subscribe(func(app.RootState, store.Action) {
		c.sync(c.app.EditTarget())
	})
	c.mu.Unlock()

	c.sync(c.app.EditTarget())
}

func (c *CreatePost) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.postSub != nil {
		c.postSub.Unsubscribe()
		c.postSub = nil
	}
}

func (c *CreatePost) sync(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if target != c.target {
		if c.postSub != nil {
			c.postSub.Unsubscribe()
			c.postSub = nil
		}
		c.target = target
		c.seeded = target == ""
		if target == "" {
			c.form = entity.EmptyPost()
		} else {
			c.postSub = c.app.Service.GetPostByID.Subscribe(target)
		}
	}

	if !c.seeded && c.postSub != nil {
		if r := c.postSub.Result(); r.IsSuccess() {
			c.form = r.Data
			c.seeded = true
		}
	}
}

// WaitLoaded blocks until the post being edited is in the form.
func (c *CreatePost) WaitLoaded(ctx context.Context) error {
	c.mu.Lock()
	sub := c.postSub
	c.mu.Unlock()
	if sub == nil {
		return nil
	}

	r, err := sub.Wait(ctx)
	if err != nil {
		return err
	}
	if r.IsError() {
		return r.Error
	}
	c.sync(c.app.EditTarget())
	return nil
}

func (c *CreatePost) Editing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target != ""
}

func (c *CreatePost) Form() entity.Post {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *CreatePost) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch name {
	case FieldTitle:
		c.form.Title = value
	case FieldDescription:
		c.form.Description = value
	case FieldFeaturedImage:
		c.form.FeaturedImage = value
	case FieldPublishDate:
		c.form.PublishDate = value
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	return nil
}

func (c *CreatePost) SetPublished(published bool) {
	c.mu.Lock()
	c.form.Published = published
	c.mu.Unlock()
}

// AttachImage uploads img and puts its URL in the featured image field.
func (c *CreatePost) AttachImage(ctx context.Context, img entity.ImageUpload) (string, error) {
	res, err := c.upload.Trigger(ctx, img)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.form.FeaturedImage = res.URL
	c.mu.Unlock()
	return res.URL, nil
}

// Submit creates a post, or updates the edit target when one is set. The
// form is reset on success and left untouched on failure.
func (c *CreatePost) Submit(ctx context.Context) (entity.Post, error) {
	c.mu.Lock()
	form := c.form
	target := c.target
	c.mu.Unlock()

	var (
		saved entity.Post
		err   error
	)
	if target == "" {
		saved, err = c.add.Trigger(ctx, form.Draft())
	} else {
		form.ID = target
		saved, err = c.update.Trigger(ctx, form)
	}
	if err != nil {
		return entity.Post{}, err
	}

	c.mu.Lock()
	c.form = entity.EmptyPost()
	c.mu.Unlock()
	return saved, nil
}

// Cancel leaves edit mode and clears the form.
func (c *CreatePost) Cancel() {
	c.app.Dispatch(blog.CancelEditPost())
	c.sync(c.app.EditTarget())
	c.mu.Lock()
	c.form = entity.EmptyPost()
	c.mu.Unlock()
}

// FormErrors holds the per-field messages of the last failed create, or of
// the last failed update while editing.
func (c *CreatePost) FormErrors() map[string]string {
	var err error
	if c.Editing() {
		err = c.update.Result().Error
	} else {
		err = c.add.Result().Error
	}
	fields, ok := apperr.EntityFields(err)
	if !ok {
		return nil
	}
	return fields
}

func (c *CreatePost) Render(w io.Writer) error {
	form := c.Form()
	heading := "New post"
	if c.Editing() {
		heading = "Edit post " + c.app.EditTarget()
	}
	if _, err := fmt.Fprintln(w, heading); err != nil {
		return err
	}

	errs := c.FormErrors()
	fields := []struct{ name, value string }{
		{FieldTitle, form.Title},
		{FieldFeaturedImage, form.FeaturedImage},
		{FieldDescription, form.Description},
		{FieldPublishDate, form.PublishDate},
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "  %-14s %s\n", f.name+":", f.value); err != nil {
			return err
		}
		if msg, ok := errs[f.name]; ok {
			if _, err := fmt.Fprintf(w, "  %-14s ! %s\n", "", msg); err != nil {
				return err
			}
		}
	}
	if _, err := fmt.Fprintf(w, "  %-14s %t\n", "published:", form.Published); err != nil {
		return err
	}

	// errors for fields the form does not show
	var extra []string
	for name := range errs {
		switch name {
		case FieldTitle, FieldFeaturedImage, FieldDescription, FieldPublishDate:
		default:
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		if _, err := fmt.Fprintf(w, "  ! %s: %s\n", name, errs[name]); err != nil {
			return err
		}
	}
	return nil
}
