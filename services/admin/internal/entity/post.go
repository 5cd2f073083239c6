package entity

// PublishDateLayout is the datetime-local form the admin form produces.
const PublishDateLayout = "2006-01-02T15:04"

type Post struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	FeaturedImage string `json:"featuredImage"`
	PublishDate   string `json:"publishDate"`
	Published     bool   `json:"published"`
}

// PostDraft is a post without its server-assigned id. It is the body of
// create and update requests.
type PostDraft struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	FeaturedImage string `json:"featuredImage"`
	PublishDate   string `json:"publishDate"`
	Published     bool   `json:"published"`
}

func (p Post) Draft() PostDraft {
	return PostDraft{
		Title:         p.Title,
		Description:   p.Description,
		FeaturedImage: p.FeaturedImage,
		PublishDate:   p.PublishDate,
		Published:     p.Published,
	}
}

func (d PostDraft) WithID(id string) Post {
	return Post{
		ID:            id,
		Title:         d.Title,
		Description:   d.Description,
		FeaturedImage: d.FeaturedImage,
		PublishDate:   d.PublishDate,
		Published:     d.Published,
	}
}

// EmptyPost is the template the create form starts from.
func EmptyPost() Post {
	return Post{}
}

// ImageUpload is a local file to be stored as a featured image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ImageURL struct {
	URL string `json:"url"`
}
