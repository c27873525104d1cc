package relay

import (
	"context"
	"fmt"
	"net"
	"time"

	"gopkg.in/op/go-logging.v1"

	"postboard/internal/retry"
	"postboard/internal/wire"
)

// Dial connects to a postboard server at addr, retrying transient failures
// such as a refused connection under p.
func Dial(ctx context.Context, addr string, p retry.Policy, log *logging.Logger, connOpts ...wire.Option) (*wire.Conn, error) {
	var (
		d    net.Dialer
		conn net.Conn
	)
	err := retry.Do(ctx, p, func(ctx context.Context) error {
		var err error
		conn, err = d.DialContext(ctx, "tcp", addr)
		return err
	}, func(attempt int, err error, wait time.Duration) {
		log.Warningf("Connect to %s failed (attempt %d/%d): %v; retrying in %v", addr, attempt, p.MaxAttempts, err, wait.Round(time.Millisecond))
	})
	if err != nil {
		return nil, fmt.Errorf("relay: connect to %s: %w", addr, err)
	}
	log.Debugf("Connected to %s", addr)
	return wire.NewConn(conn, connOpts...), nil
}
