package store

import (
	"crypto/rsa"
	"sync"

	"postboard/internal/domain"
)

type cachedKey[K any] struct {
	key K
	err error
}

// CachedKeyStore memoizes lookups on another KeyStore, failures included.
// A sealed private key is then opened once for as long as the cache lives.
type CachedKeyStore struct {
	keys domain.KeyStore

	mu      sync.Mutex
	public  map[domain.UserID]cachedKey[*rsa.PublicKey]
	private map[domain.UserID]cachedKey[*rsa.PrivateKey]
}

// NewCachedKeyStore returns an empty cache in front of keys.
func NewCachedKeyStore(keys domain.KeyStore) *CachedKeyStore {
	return &CachedKeyStore{
		keys:    keys,
		public:  make(map[domain.UserID]cachedKey[*rsa.PublicKey]),
		private: make(map[domain.UserID]cachedKey[*rsa.PrivateKey]),
	}
}

// LoadPublicKey implements domain.KeyStore.
func (s *CachedKeyStore) LoadPublicKey(id domain.UserID) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.public[id]; ok {
		return c.key, c.err
	}
	pub, err := s.keys.LoadPublicKey(id)
	s.public[id] = cachedKey[*rsa.PublicKey]{pub, err}
	return pub, err
}

// LoadPrivateKey implements domain.KeyStore.
func (s *CachedKeyStore) LoadPrivateKey(id domain.UserID) (*rsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.private[id]; ok {
		return c.key, c.err
	}
	priv, err := s.keys.LoadPrivateKey(id)
	s.private[id] = cachedKey[*rsa.PrivateKey]{priv, err}
	return priv, err
}

var _ domain.KeyStore = (*CachedKeyStore)(nil)
