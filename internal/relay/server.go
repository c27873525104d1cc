package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/op/go-logging.v1"

	"postboard/internal/log"
	"postboard/internal/metrics"
	"postboard/internal/protocol/exchange"
	"postboard/internal/retry"
	"postboard/internal/wire"
)

const (
	keepAlivePeriod = 3 * time.Minute

	acceptBaseDelay = 5 * time.Millisecond
	acceptMaxDelay  = time.Second
)

// Server is a TCP listener serving the exchange.
type Server struct {
	exchange *exchange.Server
	logs     *log.Backend
	log      *logging.Logger
	metrics  *metrics.Metrics
	connOpts []wire.Option

	l  net.Listener
	wg sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// Listen binds addr. m may be nil. connOpts apply to every accepted
// connection.
func Listen(addr string, ex *exchange.Server, logs *log.Backend, m *metrics.Metrics, connOpts ...wire.Option) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("relay: listen on %s: %w", addr, err)
	}
	return &Server{
		exchange: ex,
		logs:     logs,
		log:      logs.GetLogger("relay"),
		metrics:  m,
		connOpts: connOpts,
		l:        l,
	}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr { return s.l.Addr() }

// Serve accepts connections until ctx is done or Close is called, then waits
// for in-flight sessions to end.
func (s *Server) Serve(ctx context.Context) error {
	addr := s.l.Addr()
	s.log.Noticef("Listening on: %v", addr)
	defer s.log.Noticef("Stopped listening on: %v", addr)

	stop := context.AfterFunc(ctx, func() { _ = s.l.Close() })
	defer stop()
	defer s.wg.Wait()

	failures := 0
	for {
		conn, err := s.l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			wait := retry.Delay(acceptBaseDelay, acceptMaxDelay, 0, failures)
			failures++
			s.log.Errorf("Accept failure: %v (retrying in %v)", err, wait)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
			continue
		}
		failures = 0
		if !s.track() {
			_ = conn.Close()
			return nil
		}

		if tc, ok := conn.(*net.TCPConn); ok {
			_ = tc.SetKeepAlive(true)
			_ = tc.SetKeepAlivePeriod(keepAlivePeriod)
		}
		if s.metrics != nil {
			s.metrics.Connections.Inc()
		}

		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

// track registers a session unless Close has begun.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// Close stops accepting and waits for in-flight sessions.
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	err := s.l.Close()
	s.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	id := uuid.NewString()[:8]
	l := s.logs.GetLogger("conn:" + id)
	l.Debugf("Accepted connection from %v", conn.RemoteAddr())

	if err := s.exchange.Serve(ctx, wire.NewConn(conn, s.connOpts...), l); err != nil {
		l.Warningf("Session with %v failed: %v", conn.RemoteAddr(), err)
		if s.metrics != nil {
			s.metrics.ConnectionFailures.Inc()
		}
		return
	}
	l.Debugf("Session with %v done", conn.RemoteAddr())
}
