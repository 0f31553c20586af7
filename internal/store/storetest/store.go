// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"github.com/appsquad/tooldir/internal/store"
)

// Store is a threadsafe in-memory store.Store implementation.
type Store struct {
	mu sync.Mutex

	nextUserID   int64
	nextToolID   int64
	nextReviewID int64

	users   map[int64]store.User
	tools   map[int64]store.Tool
	reviews map[int64]store.AudioReview
	// assocs maps user id to the ordered tool ids they added.
	assocs map[int64][]int64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		users:   map[int64]store.User{},
		tools:   map[int64]store.Tool{},
		reviews: map[int64]store.AudioReview{},
		assocs:  map[int64][]int64{},
	}
}

// SeedUser inserts a user directly, bypassing uniqueness checks.
func (s *Store) SeedUser(u store.User) store.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		s.nextUserID++
		u.ID = s.nextUserID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = u
	return u
}

// CreateUser implements store.UserRepository.
func (s *Store) CreateUser(_ context.Context, u store.User) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email || existing.URL == u.URL || existing.Username == u.Username {
			return store.User{}, store.ErrDuplicate
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = time.Now()
	s.users[u.ID] = u
	return u, nil
}

// UserByID implements store.UserRepository.
func (s *Store) UserByID(_ context.Context, id int64) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

// UserByEmail implements store.UserRepository.
func (s *Store) UserByEmail(_ context.Context, email string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

// UserByURL implements store.UserRepository.
func (s *Store) UserByURL(_ context.Context, url string) (store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.URL == url {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

// ConfirmUser implements store.UserRepository.
func (s *Store) ConfirmUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Confirmed = true
	s.users[id] = u
	return nil
}

// ListUserTools implements store.UserRepository.
func (s *Store) ListUserTools(_ context.Context, userID int64) ([]store.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tools []store.Tool
	for _, toolID := range s.assocs[userID] {
		tools = append(tools, s.tools[toolID])
	}
	return tools, nil
}

// AddUserTool implements store.UserRepository.
func (s *Store) AddUserTool(_ context.Context, userID, toolID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assocs[userID] {
		if existing == toolID {
			return nil
		}
	}
	s.assocs[userID] = append(s.assocs[userID], toolID)
	return nil
}

// RemoveUserTool implements store.UserRepository.
func (s *Store) RemoveUserTool(_ context.Context, userID, toolID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.assocs[userID]
	for i, existing := range ids {
		if existing == toolID {
			s.assocs[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

// CreateTool implements store.ToolRepository.
func (s *Store) CreateTool(_ context.Context, t store.Tool) (store.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tools {
		if existing.Link == t.Link {
			return store.Tool{}, store.ErrDuplicate
		}
	}
	s.nextToolID++
	t.ID = s.nextToolID
	s.tools[t.ID] = t
	return t, nil
}

// ToolByID implements store.ToolRepository.
func (s *Store) ToolByID(_ context.Context, id int64) (store.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tools[id]
	if !ok {
		return store.Tool{}, store.ErrNotFound
	}
	return t, nil
}

// ToolByLink implements store.ToolRepository.
func (s *Store) ToolByLink(_ context.Context, link string) (store.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tools {
		if t.Link == link {
			return t, nil
		}
	}
	return store.Tool{}, store.ErrNotFound
}

// CreateReview implements store.ReviewRepository.
func (s *Store) CreateReview(_ context.Context, r store.AudioReview) (store.AudioReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReviewID++
	r.ID = s.nextReviewID
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	s.reviews[r.ID] = r
	return r, nil
}

// FindReview implements store.ReviewRepository.
func (s *Store) FindReview(_ context.Context, f store.ReviewFilter, withAudio bool) (store.AudioReview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var match *store.AudioReview
	for id := int64(1); id <= s.nextReviewID; id++ {
		r, ok := s.reviews[id]
		if !ok {
			continue
		}
		if f.ID != nil && r.ID != *f.ID {
			continue
		}
		if f.ToolID != nil && r.ToolID != *f.ToolID {
			continue
		}
		if f.UserID != nil && r.UserID != *f.UserID {
			continue
		}
		match = &r
		break
	}
	if match == nil {
		return store.AudioReview{}, store.ErrNotFound
	}
	r := *match
	if !withAudio {
		r.Audio = nil
	}
	return r, nil
}

// DeleteReview implements store.ReviewRepository.
func (s *Store) DeleteReview(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

// ReviewCount reports how many reviews currently exist (for assertions).
func (s *Store) ReviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews)
}

// ToolCount reports how many tool rows currently exist (for assertions).
func (s *Store) ToolCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tools)
}
