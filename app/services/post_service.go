package services

import (
	"context"
	"errors"
	"fmt"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// ErrInvalidPost marks a request the client must fix before retrying.
var ErrInvalidPost = errors.New("invalid post")

// PostService handles business logic for blog posts
type PostService struct {
	postRepo repositories.PostRepository
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
	}
}

// CreatePost validates req and stores the resulting post.
func (s *PostService) CreatePost(ctx context.Context, req *models.AddPostRequest) (*models.Post, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidPost)
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPost, err)
	}

	post := req.Post()
	post.SetCreatedAt()
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPost, err)
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id int) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts retrieves every post ordered by id.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}
