// Package store provides the storage backends behind postboard's domain
// interfaces.
//
// It contains:
//   - MemoryPostStore, the server's append-only, snapshot-read post history.
//   - FileKeyStore, which resolves keys from <dir>/<id>.pub and <dir>/<id>.prv.
//   - BoltKeyStore, which keeps the same encodings in a bbolt database.
//   - MemoryKeyStore, an in-process key map for tests and embedding.
//
// Private keys may be stored sealed under a passphrase (scrypt-derived key,
// ChaCha20-Poly1305). All types are safe for concurrent use.
package store
