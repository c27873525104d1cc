package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"gopkg.in/op/go-logging.v1"

	"postboard/internal/domain"
	"postboard/internal/metrics"
	"postboard/internal/protocol/exchange"
	"postboard/internal/relay"
	"postboard/internal/retry"
	"postboard/internal/services/envelope"
	"postboard/internal/services/post"
	"postboard/internal/store"
	"postboard/internal/wire"
)

const metricsShutdownTimeout = 5 * time.Second

// Console is what a client session needs from the terminal.
type Console interface {
	domain.Prompter
	domain.Renderer
}

// Board is a bound board server with its optional metrics exporter.
type Board struct {
	*relay.Server

	log       *logging.Logger
	metricsL  net.Listener
	metricsHS *http.Server
}

// Listen builds the server dependency graph and binds addr, plus the
// metrics address when one is configured.
func (a *App) Listen(addr string) (*Board, error) {
	cfg := a.Config
	m := metrics.New()
	ex := exchange.NewServer(store.NewMemoryPostStore(), envelope.New(a.Keys), m)

	srv, err := relay.Listen(addr, ex, a.Logs, m,
		wire.WithTimeout(cfg.Server.Timeout()),
		wire.WithMaxEnvelopeSize(cfg.Server.MaxEnvelopeSize),
	)
	if err != nil {
		return nil, err
	}
	b := &Board{Server: srv, log: a.Logs.GetLogger("board")}

	if cfg.Metrics.Address != "" {
		l, err := net.Listen("tcp", cfg.Metrics.Address)
		if err != nil {
			_ = srv.Close()
			return nil, fmt.Errorf("metrics: listen on %s: %w", cfg.Metrics.Address, err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		b.metricsL = l
		b.metricsHS = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	}
	return b, nil
}

// MetricsAddr returns the exporter address, or nil when disabled.
func (b *Board) MetricsAddr() net.Addr {
	if b.metricsL == nil {
		return nil
	}
	return b.metricsL.Addr()
}

// Close stops the board and its metrics exporter.
func (b *Board) Close() error {
	err := b.Server.Close()
	if b.metricsHS != nil {
		_ = b.metricsHS.Close()
		_ = b.metricsL.Close()
	}
	return err
}

// Run serves until ctx is done.
func (b *Board) Run(ctx context.Context) error {
	if b.metricsHS != nil {
		go func() {
			b.log.Noticef("Serving metrics on http://%v/metrics", b.metricsL.Addr())
			if err := b.metricsHS.Serve(b.metricsL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				b.log.Errorf("Metrics exporter failed: %v", err)
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			_ = b.metricsHS.Shutdown(sctx)
		}()
	}
	return b.Server.Serve(ctx)
}

// Session connects to the board at addr and runs one exchange as user.
func (a *App) Session(ctx context.Context, addr string, user domain.UserID, c Console) error {
	cfg := a.Config
	l := a.Logs.GetLogger("client")

	p := retry.DefaultPolicy()
	p.MaxAttempts = cfg.Client.DialAttempts

	conn, err := relay.Dial(ctx, addr, p, l,
		wire.WithTimeout(cfg.Client.Timeout()),
		wire.WithMaxEnvelopeSize(cfg.Server.MaxEnvelopeSize),
	)
	if err != nil {
		return fmt.Errorf("cannot connect to server: %w", err)
	}
	defer conn.Close()

	// Every history post addressed to user needs the same private key.
	posts := post.New(envelope.New(store.NewCachedKeyStore(a.Keys)))
	return exchange.NewClient(user, posts, c, c, l).Run(ctx, conn)
}
