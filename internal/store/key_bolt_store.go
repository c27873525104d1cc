package store

import (
	"crypto/rsa"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"postboard/internal/crypto"
	"postboard/internal/domain"
)

const (
	publicBucket  = "public"
	privateBucket = "private"
)

// BoltKeyStore keeps keys in a bbolt database, one bucket per key kind,
// keyed by user id. Values use the same encodings as FileKeyStore.
type BoltKeyStore struct {
	db         *bolt.DB
	passphrase string
}

// OpenBoltKeyStore opens (creating if needed) the database at path.
func OpenBoltKeyStore(path, passphrase string) (*BoltKeyStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open key database: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{publicBucket, privateBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init key database: %w", err)
	}
	return &BoltKeyStore{db: db, passphrase: passphrase}, nil
}

// Close releases the database.
func (s *BoltKeyStore) Close() error {
	return s.db.Close()
}

// WithPassphrase returns a BoltKeyStore sharing the same database that opens
// and seals private keys with passphrase. Close only the store returned by OpenBoltKeyStore.
func (s *BoltKeyStore) WithPassphrase(passphrase string) *BoltKeyStore {
	return &BoltKeyStore{db: s.db, passphrase: passphrase}
}

// LoadPublicKey returns the public key stored for id.
func (s *BoltKeyStore) LoadPublicKey(id domain.UserID) (*rsa.PublicKey, error) {
	b, err := s.get(publicBucket, id)
	if err != nil {
		return nil, err
	}
	pub, err := crypto.ParsePublicKeyPEM(b)
	if err != nil {
		return nil, fmt.Errorf("public key for %q: %w", id, err)
	}
	return pub, nil
}

// LoadPrivateKey returns the private key stored for id.
func (s *BoltKeyStore) LoadPrivateKey(id domain.UserID) (*rsa.PrivateKey, error) {
	b, err := s.get(privateBucket, id)
	if err != nil {
		return nil, err
	}
	raw, err := decodePrivate(s.passphrase, b)
	if err != nil {
		return nil, fmt.Errorf("private key for %q: %w", id, err)
	}
	defer crypto.Wipe(raw)

	priv, err := crypto.ParsePrivateKeyPEM(raw)
	if err != nil {
		return nil, fmt.Errorf("private key for %q: %w", id, err)
	}
	return priv, nil
}

// SavePublicKey stores pub for id, replacing any existing entry.
func (s *BoltKeyStore) SavePublicKey(id domain.UserID, pub *rsa.PublicKey) error {
	b, err := crypto.MarshalPublicKeyPEM(pub)
	if err != nil {
		return err
	}
	return s.put(publicBucket, id, b)
}

// SavePrivateKey stores priv for id, sealed if a passphrase is set.
func (s *BoltKeyStore) SavePrivateKey(id domain.UserID, priv *rsa.PrivateKey) error {
	pemBytes, err := crypto.MarshalPrivateKeyPEM(priv)
	if err != nil {
		return err
	}
	defer crypto.Wipe(pemBytes)

	b, err := encodePrivate(s.passphrase, pemBytes)
	if err != nil {
		return err
	}
	return s.put(privateBucket, id, b)
}

func (s *BoltKeyStore) get(bucket string, id domain.UserID) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucket)).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %q", domain.ErrKeyNotFound, id)
		}
		// v is only valid for the life of the transaction.
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

func (s *BoltKeyStore) put(bucket string, id domain.UserID, b []byte) error {
	if id == "" {
		return fmt.Errorf("%w: empty user id", domain.ErrKeyNotFound)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(id), b)
	})
}

// Compile-time assertion that BoltKeyStore implements domain.KeyRing.
var _ domain.KeyRing = (*BoltKeyStore)(nil)
