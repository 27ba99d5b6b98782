package repositories

import (
	"context"
	"io"

	"inkpost/app/models"
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id int) (*models.Post, error)
	// List returns every post ordered by id ascending.
	List(ctx context.Context) ([]*models.Post, error)
}

// Store is a PostRepository backed by an opened database.
type Store interface {
	PostRepository

	// Ping reports whether the underlying database is reachable.
	Ping(ctx context.Context) error
	// Backup writes every post to w as JSON lines.
	Backup(ctx context.Context, w io.Writer) error
	// Restore inserts posts read with ReadBackup, keeping their ids. The store must be empty.
	Restore(ctx context.Context, posts []*models.Post) error
	Close() error
}
