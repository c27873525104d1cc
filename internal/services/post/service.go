package post

import (
	"time"

	"postboard/internal/crypto"
	"postboard/internal/domain"
)

// TimestampLayout is the human-readable layout stamped on new posts.
const TimestampLayout = time.UnixDate

// Service composes and renders posts on behalf of the local user.
type Service struct {
	env domain.EnvelopeService
	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used to stamp new posts.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a post service using env for all cryptography.
func New(env domain.EnvelopeService, opts ...Option) *Service {
	s := &Service{env: env, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Compose stamps, optionally encrypts and signs a new post from author.
// The payload is encrypted unless recipient is domain.Broadcast.
func (s *Service) Compose(author, recipient domain.UserID, text string) (domain.SignedPost, error) {
	ts := s.now().Format(TimestampLayout)

	payload := text
	if recipient != domain.Broadcast {
		ct, err := s.env.Encrypt(recipient, text)
		if err != nil {
			return domain.SignedPost{}, err
		}
		payload = ct
	}

	p := domain.Post{AuthorID: author, Payload: payload, Timestamp: ts}
	return s.env.Sign(author, p)
}

// Render turns a received envelope into a display view for owner.
//
// It never fails: a body that cannot be decoded yields a view with empty
// fields, a signature that cannot be checked leaves Verified false, and a
// payload that is not for owner is shown as received.
func (s *Service) Render(index int, owner domain.UserID, sp domain.SignedPost) domain.PostView {
	v := domain.PostView{Index: index, Author: sp.Signer}

	p, err := s.env.Verify(sp)
	if err == nil {
		v.Verified = true
	} else if p, err = crypto.UnmarshalPost(sp.Body); err != nil {
		return v
	}

	v.Author = p.AuthorID
	v.Timestamp = p.Timestamp
	v.Text, v.Decrypted = s.env.Open(owner, p.Payload)
	return v
}
