package store

import (
	"sync"

	"postboard/internal/domain"
)

// Compile-time assertion that MemoryPostStore implements domain.PostStore.
var _ domain.PostStore = (*MemoryPostStore)(nil)

// MemoryPostStore is an in-memory, append-only post history.
//
// Readers take a snapshot under the read lock, so a history send that has
// already captured its count is never affected by a concurrent Append.
type MemoryPostStore struct {
	mu    sync.RWMutex
	posts []domain.StoredPost
}

// NewMemoryPostStore returns an empty store.
func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{}
}

// Append adds p at the end of the history.
func (s *MemoryPostStore) Append(p domain.StoredPost) error {
	stored := domain.StoredPost{
		Post: p.Post,
		Envelope: domain.SignedPost{
			Signer:    p.Envelope.Signer,
			Body:      append([]byte(nil), p.Envelope.Body...),
			Signature: append([]byte(nil), p.Envelope.Signature...),
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, stored)
	return nil
}

// Snapshot returns the stored posts in insertion order.
func (s *MemoryPostStore) Snapshot() []domain.StoredPost {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StoredPost, len(s.posts))
	copy(out, s.posts)
	return out
}

// Count returns the number of stored posts.
func (s *MemoryPostStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}
