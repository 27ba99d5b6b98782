package models

import (
	"errors"
	"net/http"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// SetCreatedAt stamps the creation time unless one is already set.
func (p *Post) SetCreatedAt() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
}

// Validate reports a missing title or content.
func (r *AddPostRequest) Validate() error {
	return validate.Struct(r)
}

// Post builds the record to insert. Validate must succeed first.
func (r *AddPostRequest) Post() *Post {
	return &Post{
		Title:   *r.Title,
		Content: *r.Content,
	}
}

// AddPostRequestFromForm reads title and content from a url-encoded body.
// A field missing from the form stays nil.
func AddPostRequestFromForm(r *http.Request) (*AddPostRequest, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}

	req := &AddPostRequest{}
	if vals, ok := r.PostForm["title"]; ok && len(vals) > 0 {
		req.Title = &vals[0]
	}
	if vals, ok := r.PostForm["content"]; ok && len(vals) > 0 {
		req.Content = &vals[0]
	}
	return req, nil
}
