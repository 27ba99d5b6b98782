package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"inkpost/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements Store using BadgerDB
type BadgerPostRepository struct {
	db *badger.DB
	// owned is set when the repository opened db itself and must close it.
	owned bool
	// mutex serialises id allocation so concurrent creates never conflict.
	mutex sync.Mutex
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// OpenBadger opens a Badger database at path. An empty path or ":memory:"
// opens an in-memory database.
func OpenBadger(path string) (*BadgerPostRepository, error) {
	opts := badger.DefaultOptions(path)
	if path == "" || path == memoryDSN {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil).WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", path, err)
	}
	return &BadgerPostRepository{db: db, owned: true}, nil
}

// Create creates a new post
func (r *BadgerPostRepository) Create(ctx context.Context, post *models.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		data, err := marshalEntity(post)
		if err != nil {
			return err
		}

		return txn.Set(postKey(post.ID), data)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(postKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return unmarshalEntity(val, &post)
		})
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List retrieves all posts in key order, which is id order.
func (r *BadgerPostRepository) List(ctx context.Context) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PostKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var post models.Post
			err := it.Item().Value(func(val []byte) error {
				return unmarshalEntity(val, &post)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal post: %w", err)
			}
			posts = append(posts, &post)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Ping checks that the database has not been closed.
func (r *BadgerPostRepository) Ping(ctx context.Context) error {
	if r.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return ctx.Err()
}

// Backup writes all posts as JSON lines.
func (r *BadgerPostRepository) Backup(ctx context.Context, w io.Writer) error {
	posts, err := r.List(ctx)
	if err != nil {
		return err
	}
	return writeBackup(w, posts)
}

// Restore loads a backup into an empty database in a single transaction.
func (r *BadgerPostRepository) Restore(ctx context.Context, posts []*models.Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(PostSeqKey))
		if err == nil {
			return ErrStoreNotEmpty
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		maxID := 0
		for _, post := range posts {
			if err := ctx.Err(); err != nil {
				return err
			}
			post.SetCreatedAt()
			data, err := marshalEntity(post)
			if err != nil {
				return err
			}
			if err := txn.Set(postKey(post.ID), data); err != nil {
				return err
			}
			if post.ID > maxID {
				maxID = post.ID
			}
		}
		return setSequence(txn, PostSeqKey, maxID)
	})
}

// Close closes the database if the repository opened it.
func (r *BadgerPostRepository) Close() error {
	if !r.owned {
		return nil
	}
	return r.db.Close()
}
