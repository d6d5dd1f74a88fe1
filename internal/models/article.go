// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Article is a published piece of content. Every persisted article has a
// non-empty title, category and content, and an AuthorID pointing at an
// existing user; the validation layer enforces this before any write.
type Article struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Title         string `gorm:"not null" json:"title"`
	Category      string `gorm:"not null;index" json:"category"`
	Content       string `gorm:"type:text;not null" json:"content"`
	FeaturedImage string `json:"featured_image"`
	AuthorID      uint   `gorm:"not null;index" json:"author_id"`
	Author        User   `gorm:"foreignKey:AuthorID" json:"author"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int            `gorm:"->" json:"comments_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
