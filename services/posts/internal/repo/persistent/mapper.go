package persistent

import (
	"blog-admin/pkg/models"
	"blog-admin/services/posts/internal/entity"
)

func ToPostEntity(m *models.Post) *entity.Post {
	if m == nil {
		return nil
	}

	return &entity.Post{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		FeaturedImage: m.FeaturedImage,
		PublishDate:   m.PublishDate,
		Published:     m.Published,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ToPostModel(e *entity.Post) *models.Post {
	if e == nil {
		return nil
	}

	return &models.Post{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		FeaturedImage: e.FeaturedImage,
		PublishDate:   e.PublishDate,
		Published:     e.Published,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func ToPostEntities(ms []models.Post) []*entity.Post {
	posts := make([]*entity.Post, 0, len(ms))
	for i := range ms {
		posts = append(posts, ToPostEntity(&ms[i]))
	}
	return posts
}
