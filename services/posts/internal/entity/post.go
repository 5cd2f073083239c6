package entity

import "time"

// PublishDateLayout is the datetime-local form posted by the admin form.
const PublishDateLayout = "2006-01-02T15:04"

// Post is a blog post as the admin client sees it.
type Post struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	FeaturedImage string    `json:"featuredImage"`
	PublishDate   string    `json:"publishDate"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// PostInput holds the client-editable fields of a post.
type PostInput struct {
	Title         string
	Description   string
	FeaturedImage string
	PublishDate   string
	Published     bool
}

func (in PostInput) Apply(p *Post) {
	p.Title = in.Title
	p.Description = in.Description
	p.FeaturedImage = in.FeaturedImage
	p.PublishDate = in.PublishDate
	p.Published = in.Published
}
