// Package view holds headless view models of the admin screens and the text
// renderers the CLI prints them with.
package view

import (
	"fmt"
	"io"
	"strings"

	"blog-admin/services/admin/internal/entity"
)

// PostItem renders one post row. The row being edited is marked with '*'.
func PostItem(w io.Writer, post entity.Post, editing bool) error {
	marker := " "
	if editing {
		marker = "*"
	}
	status := "draft"
	if post.Published {
		status = "published"
	}

	_, err := fmt.Fprintf(w, "%s %-8s %-32s %-9s %s\n", marker, post.ID, truncate(post.Title, 32), status, post.PublishDate)
	if err != nil {
		return err
	}
	if post.Description != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", truncate(post.Description, 72)); err != nil {
			return err
		}
	}
	if post.FeaturedImage != "" {
		if _, err := fmt.Fprintf(w, "  image: %s\n", post.FeaturedImage); err != nil {
			return err
		}
	}
	return nil
}

// SkeletonPost renders the placeholder shown while posts load.
func SkeletonPost(w io.Writer) error {
	_, err := fmt.Fprintf(w, "  %s %s %s\n", strings.Repeat("░", 8), strings.Repeat("░", 32), strings.Repeat("░", 9))
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
