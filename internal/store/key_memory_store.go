package store

import (
	"crypto/rsa"
	"fmt"
	"sync"

	"postboard/internal/domain"
)

// MemoryKeyStore holds keys in process memory.
type MemoryKeyStore struct {
	mu      sync.RWMutex
	public  map[domain.UserID]*rsa.PublicKey
	private map[domain.UserID]*rsa.PrivateKey
}

// NewMemoryKeyStore returns an empty MemoryKeyStore.
func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{
		public:  make(map[domain.UserID]*rsa.PublicKey),
		private: make(map[domain.UserID]*rsa.PrivateKey),
	}
}

// Add registers both halves of priv under id.
func (s *MemoryKeyStore) Add(id domain.UserID, priv *rsa.PrivateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.private[id] = priv
	s.public[id] = &priv.PublicKey
}

// AddPublic registers only a public key under id.
func (s *MemoryKeyStore) AddPublic(id domain.UserID, pub *rsa.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.public[id] = pub
}

// SavePublicKey implements domain.KeyWriter.
func (s *MemoryKeyStore) SavePublicKey(id domain.UserID, pub *rsa.PublicKey) error {
	s.AddPublic(id, pub)
	return nil
}

// SavePrivateKey implements domain.KeyWriter. Only the private half is stored.
func (s *MemoryKeyStore) SavePrivateKey(id domain.UserID, priv *rsa.PrivateKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.private[id] = priv
	return nil
}

// LoadPublicKey returns the public key registered for id.
func (s *MemoryKeyStore) LoadPublicKey(id domain.UserID) (*rsa.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pub, ok := s.public[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrKeyNotFound, id)
	}
	return pub, nil
}

// LoadPrivateKey returns the private key registered for id.
func (s *MemoryKeyStore) LoadPrivateKey(id domain.UserID) (*rsa.PrivateKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	priv, ok := s.private[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrKeyNotFound, id)
	}
	return priv, nil
}

// Compile-time assertion that MemoryKeyStore implements domain.KeyRing.
var _ domain.KeyRing = (*MemoryKeyStore)(nil)
