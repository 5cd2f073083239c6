package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is the posts table row. PublishDate keeps the client's string form.
type Post struct {
	ID            string         `gorm:"type:uuid;primary_key" json:"id"`
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	FeaturedImage string         `gorm:"type:varchar(500);not null" json:"featuredImage"`
	PublishDate   string         `gorm:"type:varchar(40);not null" json:"publishDate"`
	Published     bool           `gorm:"default:false;index" json:"published"`
	CreatedAt     time.Time      `json:"-"`
	UpdatedAt     time.Time      `json:"-"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
