package models

import "time"

// BlogPost is an editorial article with SEO metadata.
type BlogPost struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	AuthorID        uint       `gorm:"index" json:"author_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Slug            string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Excerpt         string     `gorm:"size:512" json:"excerpt"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	CoverURL        string     `gorm:"size:1024" json:"cover_url"`
	MetaDescription string     `gorm:"size:320" json:"meta_description"`
	Keywords        string     `gorm:"size:512" json:"keywords"`
	Published       bool       `gorm:"default:false;index" json:"published"`
	PublishedAt     *time.Time `json:"published_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Author          User       `gorm:"foreignKey:AuthorID" json:"author"`
}
