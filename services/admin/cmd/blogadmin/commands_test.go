package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"blog-admin/services/admin/internal/blogtest"
	"blog-admin/services/admin/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, server *blogtest.Server, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--api-url", server.URL}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestList(t *testing.T) {
	server := blogtest.NewServer(t)
	server.Seed(entity.PostDraft{Title: "Hello", PublishDate: "2024-01-01T00:00"})

	out, _, err := execute(t, server, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "draft")
}

func TestCreate(t *testing.T) {
	server := blogtest.NewServer(t)

	out, _, err := execute(t, server, "create",
		"--title", "A",
		"--description", "d",
		"--image", "u",
		"--publish-date", "2024-01-01T00:00",
		"--published",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "created post 1")

	posts := server.Posts()
	require.Len(t, posts, 1)
	assert.True(t, posts[0].Published)
	assert.Equal(t, "u", posts[0].FeaturedImage)
}

func TestCreate_ValidationErrorPrintsFields(t *testing.T) {
	server := blogtest.NewServer(t)

	_, errOut, err := execute(t, server, "create", "--description", "d")
	require.Error(t, err)
	assert.Contains(t, errOut, "! title is required")
	assert.NotContains(t, errOut, "warning:")
	assert.Empty(t, server.Posts())
}

func TestCreate_UploadsImageFile(t *testing.T) {
	server := blogtest.NewServer(t)
	path := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	_, _, err := execute(t, server, "create", "--title", "A", "--publish-date", "2024-01-01T00:00", "--image-file", path)
	require.NoError(t, err)
	assert.Equal(t, "https://images.test/cover.png", server.Posts()[0].FeaturedImage)
}

func TestUpdate_KeepsUnsetFields(t *testing.T) {
	server := blogtest.NewServer(t)
	seeded := server.Seed(entity.PostDraft{Title: "A", Description: "keep me", PublishDate: "2024-01-01T00:00"})[0]

	out, _, err := execute(t, server, "update", seeded.ID, "--title", "A2")
	require.NoError(t, err)
	assert.Contains(t, out, "updated post "+seeded.ID)

	post := server.Posts()[0]
	assert.Equal(t, "A2", post.Title)
	assert.Equal(t, "keep me", post.Description)
}

func TestGetAndDelete(t *testing.T) {
	server := blogtest.NewServer(t)
	seeded := server.Seed(entity.PostDraft{Title: "A", PublishDate: "2024-01-01T00:00"})[0]

	out, _, err := execute(t, server, "get", seeded.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "A")

	out, _, err = execute(t, server, "delete", seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "deleted post "+seeded.ID+"\n", out)
	assert.Empty(t, server.Posts())

	_, errOut, err := execute(t, server, "delete", seeded.ID)
	require.Error(t, err)
	assert.Contains(t, errOut, "warning: post not found")
}

func TestUpdate_MissingPost(t *testing.T) {
	server := blogtest.NewServer(t)

	_, errOut, err := execute(t, server, "update", "9", "--title", "x")
	require.Error(t, err)
	assert.Contains(t, errOut, "warning: post not found")
}
