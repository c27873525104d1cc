package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"postboard/internal/domain"
	"postboard/internal/store"
)

// KeyBits is the RSA modulus size used for test keys.
const KeyBits = 2048

var (
	keysMu sync.Mutex
	keys   = map[domain.UserID]*rsa.PrivateKey{}
)

// Key returns a generated private key for id. Keys are cached per id for the
// life of the test binary, since RSA generation is slow.
func Key(t testing.TB, id domain.UserID) *rsa.PrivateKey {
	t.Helper()
	keysMu.Lock()
	defer keysMu.Unlock()

	if k, ok := keys[id]; ok {
		return k
	}
	k, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		t.Fatalf("rsa.GenerateKey(%s): %v", id, err)
	}
	keys[id] = k
	return k
}

// Keyring returns a MemoryKeyStore holding key pairs for every id.
func Keyring(t testing.TB, ids ...domain.UserID) *store.MemoryKeyStore {
	t.Helper()
	ks := store.NewMemoryKeyStore()
	for _, id := range ids {
		ks.Add(id, Key(t, id))
	}
	return ks
}

// CountingKeyRing is a KeyRing that counts private key loads.
type CountingKeyRing struct {
	domain.KeyRing

	mu           sync.Mutex
	PrivateLoads map[domain.UserID]int
}

// NewCountingKeyRing wraps ks.
func NewCountingKeyRing(ks domain.KeyRing) *CountingKeyRing {
	return &CountingKeyRing{KeyRing: ks, PrivateLoads: map[domain.UserID]int{}}
}

// LoadPrivateKey counts the call and delegates.
func (k *CountingKeyRing) LoadPrivateKey(id domain.UserID) (*rsa.PrivateKey, error) {
	k.mu.Lock()
	k.PrivateLoads[id]++
	k.mu.Unlock()
	return k.KeyRing.LoadPrivateKey(id)
}

// Loads returns how often id's private key was loaded.
func (k *CountingKeyRing) Loads(id domain.UserID) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.PrivateLoads[id]
}
