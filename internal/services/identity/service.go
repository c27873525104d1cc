package identity

import (
	"fmt"
	"unicode"

	"postboard/internal/crypto"
	"postboard/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)
)

// Service manages access to key pairs held in a backing key store.
type Service struct {
	keys domain.KeyStore
}

// New returns an identity service backed by keys.
func New(keys domain.KeyStore) *Service { return &Service{keys: keys} }

// Fingerprint returns the fingerprint of id's public key.
func (s *Service) Fingerprint(id domain.UserID) (string, error) {
	pub, err := s.keys.LoadPublicKey(id)
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(pub), nil
}

// CopyTo writes id's key pair into dst and returns its fingerprint. The
// private key is stored the way dst stores keys, so a destination opened with
// a different passphrase re-seals it.
func (s *Service) CopyTo(id domain.UserID, dst domain.KeyWriter) (string, error) {
	priv, err := s.keys.LoadPrivateKey(id)
	if err != nil {
		return "", err
	}
	pub, err := s.keys.LoadPublicKey(id)
	if err != nil {
		return "", err
	}
	if !pub.Equal(&priv.PublicKey) {
		return "", fmt.Errorf("identity: public and private keys of %q do not match", id)
	}

	if err := dst.SavePrivateKey(id, priv); err != nil {
		return "", err
	}
	if err := dst.SavePublicKey(id, pub); err != nil {
		return "", err
	}
	return crypto.Fingerprint(pub), nil
}

// CheckPassphrase enforces a basic strength policy on passphrases used to
// seal private keys.
func CheckPassphrase(passphrase string) error {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return ErrWeakPassphrase
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if !(hasUpper && hasLower && hasDigit && hasSymbol) {
		return ErrWeakPassphrase
	}
	return nil
}
