package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"

	"inkpost/app/models"

	"gorm.io/gorm"
)

// GormPostRepository implements Store on a relational database through gorm.
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository wraps an opened gorm handle and creates the posts
// table when it does not exist yet.
func NewGormPostRepository(db *gorm.DB) (*GormPostRepository, error) {
	if err := db.AutoMigrate(&models.Post{}); err != nil {
		return nil, fmt.Errorf("failed to create posts table: %w", err)
	}
	return &GormPostRepository{db: db}, nil
}

// Create inserts post and stores the generated id on it.
func (r *GormPostRepository) Create(ctx context.Context, post *models.Post) error {
	post.ID = 0
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *GormPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}
	return &post, nil
}

// List returns all posts ordered by id.
func (r *GormPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	if err := r.db.WithContext(ctx).Order("id asc").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// Ping checks the connection pool.
func (r *GormPostRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Backup writes all posts as JSON lines.
func (r *GormPostRepository) Backup(ctx context.Context, w io.Writer) error {
	posts, err := r.List(ctx)
	if err != nil {
		return err
	}
	return writeBackup(w, posts)
}

// Restore inserts the posts of a backup with their original ids.
func (r *GormPostRepository) Restore(ctx context.Context, posts []*models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Post{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrStoreNotEmpty
		}
		if len(posts) == 0 {
			return nil
		}
		for _, post := range posts {
			post.SetCreatedAt()
		}
		if err := tx.CreateInBatches(posts, 100).Error; err != nil {
			return fmt.Errorf("failed to restore posts: %w", err)
		}
		// Explicit ids bypass the serial sequence on postgres.
		if tx.Dialector.Name() == "postgres" {
			return tx.Exec("SELECT setval(pg_get_serial_sequence('posts', 'id'), (SELECT MAX(id) FROM posts))").Error
		}
		return nil
	})
}

// Close closes the underlying connection pool.
func (r *GormPostRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
