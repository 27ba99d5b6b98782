package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Post represents a blog post.
type Post struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement" validate:"gte=0"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" validate:"required"`
}

// AddPostRequest is the typed body of an "add post" submission. Fields are
// pointers so that an absent field can be told apart from an empty one.
type AddPostRequest struct {
	Title   *string `json:"title" validate:"required"`
	Content *string `json:"content" validate:"required"`
}
