package exchange

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/op/go-logging.v1"

	"postboard/internal/domain"
	"postboard/internal/metrics"
	"postboard/internal/wire"
)

// Server is the server role of the exchange. One Server serves every
// connection; its only shared state is the post store.
type Server struct {
	store   domain.PostStore
	env     domain.EnvelopeService
	metrics *metrics.Metrics
}

// NewServer returns a Server appending verified posts to store. m may be nil.
func NewServer(store domain.PostStore, env domain.EnvelopeService, m *metrics.Metrics) *Server {
	return &Server{store: store, env: env, metrics: m}
}

// Serve runs one exchange on c. It returns nil when the session reached its
// end normally, including when a submitted post was rejected. Cancelling ctx
// closes c.
func (s *Server) Serve(ctx context.Context, c *wire.Conn, log *logging.Logger) error {
	stop := context.AfterFunc(ctx, func() { _ = c.Close() })
	defer stop()

	st := Connected
	enter := func(next State) {
		log.Debugf("%v -> %v", st, next)
		st = next
	}
	defer enter(Closed)

	enter(ReceivingHistory)
	n, err := s.sendHistory(c)
	if err != nil {
		return fmt.Errorf("send history: %w", err)
	}
	log.Debugf("Sent %d post(s)", n)

	enter(AwaitingContinueDecision)
	more, err := c.ReadBool()
	if err != nil {
		return fmt.Errorf("read continue flag: %w", err)
	}
	if !more {
		return nil
	}

	enter(SendingNewPost)
	claimed, err := c.ReadString()
	if err != nil {
		return fmt.Errorf("read author id: %w", err)
	}
	sp, err := c.ReadEnvelope()
	if err != nil {
		return fmt.Errorf("read envelope: %w", err)
	}
	s.accept(domain.UserID(claimed), sp, log)
	return nil
}

// sendHistory writes the count and envelopes of one store snapshot.
func (s *Server) sendHistory(c *wire.Conn) (int, error) {
	posts := s.store.Snapshot()
	if err := c.WriteCount(uint32(len(posts))); err != nil {
		return 0, err
	}
	for _, p := range posts {
		if err := c.WriteEnvelope(p.Envelope); err != nil {
			return 0, err
		}
	}
	return len(posts), c.Flush()
}

// accept verifies a submission and appends it. Failures are logged, never
// returned.
func (s *Server) accept(claimed domain.UserID, sp domain.SignedPost, log *logging.Logger) {
	p, err := s.env.VerifyFrom(claimed, sp)
	if err != nil {
		reason := metrics.ReasonKeyNotFound
		if errors.Is(err, domain.ErrInvalidSignature) {
			reason = metrics.ReasonInvalidSignature
		}
		log.Warningf("Rejected post from %q: %v", claimed, err)
		s.reject(reason)
		return
	}

	if err := s.store.Append(domain.StoredPost{Post: p, Envelope: sp}); err != nil {
		log.Errorf("Failed to store post from %q: %v", claimed, err)
		s.reject(metrics.ReasonStore)
		return
	}
	log.Noticef("Accepted post from %q (%s)", p.AuthorID, p.Timestamp)
	if s.metrics != nil {
		s.metrics.PostsAccepted.Inc()
		s.metrics.PostsStored.Set(float64(s.store.Count()))
	}
}

func (s *Server) reject(reason string) {
	if s.metrics != nil {
		s.metrics.PostsRejected.WithLabelValues(reason).Inc()
	}
}
