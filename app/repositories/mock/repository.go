package mock

import (
	"context"
	"encoding/json"
	"io"
	"sort"
	"sync"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// PostRepository is an in-memory repositories.Store for tests.
type PostRepository struct {
	posts  map[int]*models.Post
	nextID int
	mutex  sync.RWMutex

	// Err, when set, is returned by every operation.
	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]*models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int]*models.Post)
	m.nextID = 1
}

func (m *PostRepository) Create(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	post.ID = m.nextID
	m.nextID++
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *post
	return &found, nil
}

func (m *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	posts := make([]*models.Post, 0, len(m.posts))
	for _, post := range m.posts {
		p := *post
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].ID < posts[j].ID
	})
	return posts, nil
}

func (m *PostRepository) Ping(ctx context.Context) error {
	return m.Err
}

func (m *PostRepository) Backup(ctx context.Context, w io.Writer) error {
	posts, err := m.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	for _, post := range posts {
		if err := enc.Encode(post); err != nil {
			return err
		}
	}
	return nil
}

func (m *PostRepository) Restore(ctx context.Context, posts []*models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if len(m.posts) > 0 {
		return repositories.ErrStoreNotEmpty
	}

	for _, p := range posts {
		post := *p
		m.posts[post.ID] = &post
		if post.ID >= m.nextID {
			m.nextID = post.ID + 1
		}
	}
	return nil
}

func (m *PostRepository) Close() error {
	return nil
}

var _ repositories.Store = (*PostRepository)(nil)
