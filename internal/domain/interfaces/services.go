package interfaces

import "postboard/internal/domain/types"

// EnvelopeService applies and checks the cryptographic envelope of a post.
type EnvelopeService interface {
	Encrypt(recipient types.UserID, plaintext string) (string, error)
	Decrypt(owner types.UserID, text string) string
	Open(owner types.UserID, text string) (string, bool)
	Sign(author types.UserID, p types.Post) (types.SignedPost, error)
	Verify(sp types.SignedPost) (types.Post, error)
	VerifyFrom(claimed types.UserID, sp types.SignedPost) (types.Post, error)
}
