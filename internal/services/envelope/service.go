package envelope

import (
	"fmt"

	"postboard/internal/crypto"
	"postboard/internal/domain"
)

// Service implements domain.EnvelopeService over a key store.
type Service struct {
	keys domain.KeyStore
}

// New returns an envelope service backed by keys.
func New(keys domain.KeyStore) *Service { return &Service{keys: keys} }

// Encrypt encrypts plaintext to recipient and returns base64 ciphertext.
func (s *Service) Encrypt(recipient domain.UserID, plaintext string) (string, error) {
	pub, err := s.keys.LoadPublicKey(recipient)
	if err != nil {
		return "", err
	}
	ct, err := crypto.EncryptPKCS1v15(pub, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("encrypt for %q: %w", recipient, err)
	}
	return crypto.B64(ct), nil
}

// Decrypt returns the plaintext of text for owner, or text unchanged if it
// cannot be decrypted for any reason.
func (s *Service) Decrypt(owner domain.UserID, text string) string {
	out, _ := s.Open(owner, text)
	return out
}

// Open is Decrypt with an explicit result: ok is false when text was not
// decryptable by owner, in which case text is returned unchanged.
func (s *Service) Open(owner domain.UserID, text string) (string, bool) {
	priv, err := s.keys.LoadPrivateKey(owner)
	if err != nil {
		return text, false
	}
	ct, err := crypto.FromB64(text)
	if err != nil || len(ct) == 0 {
		return text, false
	}
	pt, err := crypto.DecryptPKCS1v15(priv, ct)
	if err != nil {
		return text, false
	}
	return string(pt), true
}

// Sign signs the canonical encoding of p with author's private key.
func (s *Service) Sign(author domain.UserID, p domain.Post) (domain.SignedPost, error) {
	priv, err := s.keys.LoadPrivateKey(author)
	if err != nil {
		return domain.SignedPost{}, err
	}
	body, err := crypto.MarshalPost(p)
	if err != nil {
		return domain.SignedPost{}, err
	}
	sig, err := crypto.Sign(priv, body)
	if err != nil {
		return domain.SignedPost{}, fmt.Errorf("sign as %q: %w", author, err)
	}
	return domain.SignedPost{Signer: author, Body: body, Signature: sig}, nil
}

// Verify checks sp against its signer's public key and returns the enclosed
// post. The decoded post must name the signer as its author.
func (s *Service) Verify(sp domain.SignedPost) (domain.Post, error) {
	pub, err := s.keys.LoadPublicKey(sp.Signer)
	if err != nil {
		return domain.Post{}, err
	}
	if !crypto.Verify(pub, sp.Body, sp.Signature) {
		return domain.Post{}, fmt.Errorf("%w: signer %q", domain.ErrInvalidSignature, sp.Signer)
	}
	p, err := crypto.UnmarshalPost(sp.Body)
	if err != nil {
		return domain.Post{}, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	if p.AuthorID != sp.Signer {
		return domain.Post{}, fmt.Errorf("%w: post author %q signed by %q",
			domain.ErrInvalidSignature, p.AuthorID, sp.Signer)
	}
	return p, nil
}

// VerifyFrom is Verify for a submission whose author id was announced
// separately; claimed must match the envelope's signer.
func (s *Service) VerifyFrom(claimed domain.UserID, sp domain.SignedPost) (domain.Post, error) {
	if claimed != sp.Signer {
		return domain.Post{}, fmt.Errorf("%w: claimed author %q, signer %q",
			domain.ErrInvalidSignature, claimed, sp.Signer)
	}
	return s.Verify(sp)
}

// Compile-time assertion that Service implements domain.EnvelopeService.
var _ domain.EnvelopeService = (*Service)(nil)
