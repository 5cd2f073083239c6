package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"blog-admin/pkg/config"
	"blog-admin/pkg/logger"
	"blog-admin/services/admin/internal/app"
	"blog-admin/services/admin/internal/blog"
	"blog-admin/services/admin/internal/entity"
	"blog-admin/services/admin/internal/middleware"
	"blog-admin/services/admin/internal/view"

	"github.com/spf13/cobra"
)

type cli struct {
	out    io.Writer
	errOut io.Writer

	apiURL  string
	token   string
	timeout time.Duration
	verbose bool

	app     *app.App
	toaster *middleware.Toaster
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "blogadmin",
		Short: "Manage the posts of a blog",
		Long: `blogadmin lists, creates, edits and deletes blog posts through the blog API.

The API address and token come from BLOG_API_URL and BLOG_API_TOKEN (a .env
file is read when present) and can be overridden with flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "Blog API base URL (default from BLOG_API_URL)")
	root.PersistentFlags().StringVar(&c.token, "token", "", "Bearer token for write requests (default from BLOG_API_TOKEN)")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "Timeout per command")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Log requests and warnings to stderr")

	root.AddCommand(c.listCmd())
	root.AddCommand(c.getCmd())
	root.AddCommand(c.createCmd())
	root.AddCommand(c.updateCmd())
	root.AddCommand(c.deleteCmd())

	return root
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("api-url") {
		cfg.BlogAPIURL = c.apiURL
	}
	if cmd.Flags().Changed("token") {
		cfg.BlogAPIToken = c.token
	}

	log := logger.Discard()
	if c.verbose {
		log = logger.NewWithWriter(c.errOut)
	}
	c.toaster = middleware.NewToaster(log)

	c.app, err = app.New(cfg, log, c.toaster)
	return err
}

// run gives fn a context bounded by --timeout and prints the warnings
// collected while it ran.
func (c *cli) run(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), c.timeout)
		defer cancel()

		err := fn(ctx, cmd, args)
		for _, msg := range c.toaster.Drain() {
			fmt.Fprintf(c.errOut, "warning: %s\n", msg)
		}
		return err
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: c.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			list := view.NewPostList(c.app)
			defer list.Unmount()

			r, err := list.Wait(ctx)
			if err != nil {
				return err
			}
			if r.IsError() {
				return r.Error
			}
			return list.Render(c.out)
		}),
	}
}

func (c *cli) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one post",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			post, err := c.app.Service.GetPostByID.Initiate(ctx, args[0])
			if err != nil {
				return err
			}
			return view.PostItem(c.out, post, false)
		}),
	}
}

type postFlags struct {
	title       string
	description string
	image       string
	imageFile   string
	publishDate string
	published   bool
}

func (f *postFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Post title")
	cmd.Flags().StringVar(&f.description, "description", "", "Post description")
	cmd.Flags().StringVar(&f.image, "image", "", "Featured image URL")
	cmd.Flags().StringVar(&f.imageFile, "image-file", "", "Upload a local file as the featured image")
	cmd.Flags().StringVar(&f.publishDate, "publish-date", "", "Publish date ("+entity.PublishDateLayout+")")
	cmd.Flags().BoolVar(&f.published, "published", false, "Mark the post as published")
}

// apply copies the flags that were set into the form.
func (f *postFlags) apply(ctx context.Context, cmd *cobra.Command, form *view.CreatePost) error {
	fields := []struct {
		flag, field, value string
	}{
		{"title", view.FieldTitle, f.title},
		{"description", view.FieldDescription, f.description},
		{"image", view.FieldFeaturedImage, f.image},
		{"publish-date", view.FieldPublishDate, f.publishDate},
	}
	for _, fl := range fields {
		if !cmd.Flags().Changed(fl.flag) {
			continue
		}
		if err := form.SetField(fl.field, fl.value); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("published") {
		form.SetPublished(f.published)
	}

	if f.imageFile != "" {
		content, err := os.ReadFile(f.imageFile)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		if _, err := form.AttachImage(ctx, entity.ImageUpload{
			Filename: filepath.Base(f.imageFile),
			Content:  content,
		}); err != nil {
			return fmt.Errorf("failed to upload image: %w", err)
		}
	}
	return nil
}

func (c *cli) submit(ctx context.Context, form *view.CreatePost, verb string) error {
	saved, err := form.Submit(ctx)
	if err != nil {
		if form.FormErrors() != nil {
			_ = form.Render(c.errOut)
		}
		return err
	}
	fmt.Fprintf(c.out, "%s post %s\n", verb, saved.ID)
	return view.PostItem(c.out, saved, false)
}

func (c *cli) createCmd() *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: c.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			form := view.NewCreatePost(c.app)
			form.Mount()
			defer form.Unmount()

			if err := f.apply(ctx, cmd, form); err != nil {
				return err
			}
			return c.submit(ctx, form, "created")
		}),
	}
	f.register(cmd)
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var f postFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a post; fields without a flag keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			form := view.NewCreatePost(c.app)
			form.Mount()
			defer form.Unmount()

			c.app.Dispatch(blog.StartEditPost(args[0]))
			if err := form.WaitLoaded(ctx); err != nil {
				return err
			}
			if err := f.apply(ctx, cmd, form); err != nil {
				return err
			}
			return c.submit(ctx, form, "updated")
		}),
	}
	f.register(cmd)
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: c.run(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			list := view.NewPostList(c.app)
			defer list.Unmount()

			if err := list.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "deleted post %s\n", args[0])
			return nil
		}),
	}
}
