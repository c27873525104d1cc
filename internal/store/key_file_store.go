package store

import (
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"postboard/internal/crypto"
	"postboard/internal/domain"
)

const (
	publicKeyExt  = ".pub"
	privateKeyExt = ".prv"
)

// FileKeyStore resolves keys from files named after the user id.
type FileKeyStore struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// NewFileKeyStore returns a FileKeyStore rooted at dir. The passphrase is used
// to open sealed private keys and to seal keys written by SavePrivateKey; it
// may be empty.
func NewFileKeyStore(dir, passphrase string) *FileKeyStore {
	return &FileKeyStore{dir: dir, passphrase: passphrase}
}

// WithPassphrase returns a FileKeyStore over the same directory that opens
// and seals private keys with passphrase.
func (s *FileKeyStore) WithPassphrase(passphrase string) *FileKeyStore {
	return NewFileKeyStore(s.dir, passphrase)
}

// LoadPublicKey reads <dir>/<id>.pub.
func (s *FileKeyStore) LoadPublicKey(id domain.UserID) (*rsa.PublicKey, error) {
	b, err := s.read(id, publicKeyExt)
	if err != nil {
		return nil, err
	}
	pub, err := crypto.ParsePublicKeyPEM(b)
	if err != nil {
		return nil, fmt.Errorf("public key for %q: %w", id, err)
	}
	return pub, nil
}

// LoadPrivateKey reads <dir>/<id>.prv, unsealing it when needed.
func (s *FileKeyStore) LoadPrivateKey(id domain.UserID) (*rsa.PrivateKey, error) {
	b, err := s.read(id, privateKeyExt)
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

// SavePublicKey writes pub to <dir>/<id>.pub.
func (s *FileKeyStore) SavePublicKey(id domain.UserID, pub *rsa.PublicKey) error {
	b, err := crypto.MarshalPublicKeyPEM(pub)
	if err != nil {
		return err
	}
	return s.write(id, publicKeyExt, b, 0o644)
}

// SavePrivateKey writes priv to <dir>/<id>.prv, sealed if a passphrase is set.
func (s *FileKeyStore) SavePrivateKey(id domain.UserID, priv *rsa.PrivateKey) error {
	pemBytes, err := crypto.MarshalPrivateKeyPEM(priv)
	if err != nil {
		return err
	}
	defer crypto.Wipe(pemBytes)

	b, err := encodePrivate(s.passphrase, pemBytes)
	if err != nil {
		return err
	}
	return s.write(id, privateKeyExt, b, 0o600)
}

func (s *FileKeyStore) read(id domain.UserID, ext string) ([]byte, error) {
	path, err := s.path(id, ext)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrKeyNotFound, id)
	}
	return b, nil
}

func (s *FileKeyStore) write(id domain.UserID, ext string, b []byte, mode os.FileMode) error {
	path, err := s.path(id, ext)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFile(path, b, mode)
}

// path maps id onto a file inside dir. Ids that could escape dir have no key.
func (s *FileKeyStore) path(id domain.UserID, ext string) (string, error) {
	name := id.String()
	if !validUserID(name) {
		return "", fmt.Errorf("%w: invalid user id %q", domain.ErrKeyNotFound, name)
	}
	return filepath.Join(s.dir, name+ext), nil
}

func validUserID(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..") && !strings.ContainsRune(name, 0)
}

// Compile-time assertion that FileKeyStore implements domain.KeyRing.
var _ domain.KeyRing = (*FileKeyStore)(nil)
