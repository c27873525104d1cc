package interfaces

import (
	"crypto/rsa"

	"postboard/internal/domain/types"
)

// KeyStore resolves key material by user id. Both methods return an error
// wrapping domain.ErrKeyNotFound when the id has no key.
type KeyStore interface {
	LoadPublicKey(id types.UserID) (*rsa.PublicKey, error)
	LoadPrivateKey(id types.UserID) (*rsa.PrivateKey, error)
}

// KeyWriter persists key material for a user id.
type KeyWriter interface {
	SavePublicKey(id types.UserID, pub *rsa.PublicKey) error
	SavePrivateKey(id types.UserID, priv *rsa.PrivateKey) error
}

// KeyRing is a KeyStore that can also be written to.
type KeyRing interface {
	KeyStore
	KeyWriter
}

// PostStore is the server-side ordered collection of accepted posts.
type PostStore interface {
	// Append adds a verified post at the end of the store.
	Append(p types.StoredPost) error

	// Snapshot returns a copy of every stored post in insertion order.
	// The returned slice is unaffected by later appends.
	Snapshot() []types.StoredPost

	// Count returns the number of stored posts.
	Count() int
}
