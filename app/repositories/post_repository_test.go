package repositories_test

import (
	"bytes"
	"context"
	"io"
	"log"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
	"inkpost/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

var discardLog = slog.New(slog.NewTextHandler(io.Discard, nil))

type storeFactory func(t *testing.T) repositories.Store

func backends() map[string]storeFactory {
	return map[string]storeFactory{
		"sqlite memory": func(t *testing.T) repositories.Store {
			return openStore(t, repositories.Options{Driver: repositories.DriverSQLite, DSN: ":memory:"})
		},
		"sqlite file": func(t *testing.T) repositories.Store {
			dsn := filepath.Join(t.TempDir(), "data", "blog.db")
			return openStore(t, repositories.Options{Driver: repositories.DriverSQLite, DSN: dsn})
		},
		"badger memory": func(t *testing.T) repositories.Store {
			return openStore(t, repositories.Options{Driver: repositories.DriverBadger})
		},
		"badger dir": func(t *testing.T) repositories.Store {
			dir := filepath.Join(t.TempDir(), "badger")
			return openStore(t, repositories.Options{Driver: repositories.DriverBadger, DSN: dir})
		},
		"mock": func(t *testing.T) repositories.Store {
			return mock.NewPostRepository()
		},
	}
}

func openStore(t *testing.T, opts repositories.Options) repositories.Store {
	t.Helper()
	store, err := repositories.Open(opts, discardLog)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newPost(title, content string) *models.Post {
	return &models.Post{Title: title, Content: content, CreatedAt: time.Now().UTC()}
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()

	for name, factory := range backends() {
		t.Run(name, func(t *testing.T) {
			t.Run("empty listing", func(t *testing.T) {
				repo := factory(t)
				posts, err := repo.List(ctx)
				require.NoError(t, err)
				assert.Empty(t, posts)
			})

			t.Run("create and get post", func(t *testing.T) {
				repo := factory(t)
				post := newPost("Test Post", "This is a test post content")

				require.NoError(t, repo.Create(ctx, post))
				assert.Greater(t, post.ID, 0)

				retrieved, err := repo.GetByID(ctx, post.ID)
				require.NoError(t, err)
				assert.Equal(t, post.ID, retrieved.ID)
				assert.Equal(t, "Test Post", retrieved.Title)
				assert.Equal(t, "This is a test post content", retrieved.Content)

				posts, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, posts, 1)
				assert.Equal(t, "Test Post", posts[0].Title)
				assert.Equal(t, "This is a test post content", posts[0].Content)
			})

			t.Run("empty strings are stored", func(t *testing.T) {
				repo := factory(t)
				post := newPost("", "")
				require.NoError(t, repo.Create(ctx, post))

				retrieved, err := repo.GetByID(ctx, post.ID)
				require.NoError(t, err)
				assert.Equal(t, "", retrieved.Title)
				assert.Equal(t, "", retrieved.Content)
			})

			t.Run("unknown id", func(t *testing.T) {
				repo := factory(t)
				post := newPost("Only", "one")
				require.NoError(t, repo.Create(ctx, post))

				_, err := repo.GetByID(ctx, post.ID+1)
				assert.ErrorIs(t, err, repositories.ErrNotFound)
			})

			t.Run("sequential ids are distinct", func(t *testing.T) {
				repo := factory(t)
				first := newPost("First", "one")
				second := newPost("Second", "two")
				require.NoError(t, repo.Create(ctx, first))
				require.NoError(t, repo.Create(ctx, second))
				assert.NotEqual(t, first.ID, second.ID)
				assert.Greater(t, second.ID, first.ID)

				got, err := repo.GetByID(ctx, first.ID)
				require.NoError(t, err)
				assert.Equal(t, "First", got.Title)
				got, err = repo.GetByID(ctx, second.ID)
				require.NoError(t, err)
				assert.Equal(t, "Second", got.Title)
			})

			t.Run("list is ordered by id", func(t *testing.T) {
				repo := factory(t)
				for i := 0; i < 12; i++ {
					require.NoError(t, repo.Create(ctx, newPost("List Test Post", "Content for list test")))
				}

				posts, err := repo.List(ctx)
				require.NoError(t, err)
				require.Len(t, posts, 12)
				for i := 1; i < len(posts); i++ {
					assert.Less(t, posts[i-1].ID, posts[i].ID)
				}
			})

			t.Run("concurrent creates", func(t *testing.T) {
				repo := factory(t)
				var wg sync.WaitGroup
				errs := make(chan error, 8)
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						errs <- repo.Create(ctx, newPost("Concurrent", "post"))
					}()
				}
				wg.Wait()
				close(errs)
				for err := range errs {
					assert.NoError(t, err)
				}

				posts, err := repo.List(ctx)
				require.NoError(t, err)
				assert.Len(t, posts, 8)
			})

			t.Run("ping", func(t *testing.T) {
				repo := factory(t)
				assert.NoError(t, repo.Ping(ctx))
			})

			t.Run("backup and restore", func(t *testing.T) {
				source := factory(t)
				for _, title := range []string{"Hello", "Again"} {
					require.NoError(t, source.Create(ctx, newPost(title, "World")))
				}

				var buf bytes.Buffer
				require.NoError(t, source.Backup(ctx, &buf))
				posts, err := repositories.ReadBackup(&buf)
				require.NoError(t, err)
				require.Len(t, posts, 2)

				target := factory(t)
				require.NoError(t, target.Restore(ctx, posts))

				restored, err := target.List(ctx)
				require.NoError(t, err)
				require.Len(t, restored, 2)
				assert.Equal(t, "Hello", restored[0].Title)
				assert.Equal(t, "Again", restored[1].Title)

				next := newPost("After restore", "new")
				require.NoError(t, target.Create(ctx, next))
				assert.Greater(t, next.ID, restored[1].ID)

				err = target.Restore(ctx, posts)
				assert.ErrorIs(t, err, repositories.ErrStoreNotEmpty)
			})
		})
	}
}

func TestOpen(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		_, err := repositories.Open(repositories.Options{Driver: "oracle"}, discardLog)
		assert.Error(t, err)
	})

	t.Run("sqlite file survives reopen", func(t *testing.T) {
		ctx := context.Background()
		opts := repositories.Options{Driver: repositories.DriverSQLite, DSN: filepath.Join(t.TempDir(), "blog.db")}

		store, err := repositories.Open(opts, discardLog)
		require.NoError(t, err)
		post := newPost("Persisted", "content")
		require.NoError(t, store.Create(ctx, post))
		require.NoError(t, store.Close())

		assert.True(t, repositories.Exists(opts))

		store, err = repositories.Open(opts, discardLog)
		require.NoError(t, err)
		defer store.Close()
		got, err := store.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Persisted", got.Title)
	})

	t.Run("remove local store", func(t *testing.T) {
		opts := repositories.Options{Driver: repositories.DriverBadger, DSN: filepath.Join(t.TempDir(), "badger")}
		store, err := repositories.Open(opts, discardLog)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.True(t, repositories.Exists(opts))
		require.NoError(t, repositories.Remove(opts))
		assert.False(t, repositories.Exists(opts))
	})

	t.Run("schema parsing logs no warnings", func(t *testing.T) {
		var buf bytes.Buffer
		old := gormlogger.Default
		gormlogger.Default = gormlogger.New(log.New(&buf, "", 0), gormlogger.Config{LogLevel: gormlogger.Warn})
		defer func() { gormlogger.Default = old }()

		store, err := repositories.Open(repositories.Options{Driver: repositories.DriverSQLite, DSN: ":memory:"}, discardLog)
		require.NoError(t, err)
		defer store.Close()
		require.NoError(t, store.Create(context.Background(), newPost("quiet", "schema")))

		assert.Empty(t, buf.String())
	})

	t.Run("memory and postgres are not local", func(t *testing.T) {
		assert.False(t, repositories.IsLocal(repositories.Options{Driver: repositories.DriverSQLite, DSN: ":memory:"}))
		assert.False(t, repositories.IsLocal(repositories.Options{Driver: repositories.DriverPostgres, DSN: "postgres://x"}))
		assert.Error(t, repositories.Remove(repositories.Options{Driver: repositories.DriverPostgres}))
	})
}
