package relay_test

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"postboard/internal/domain"
	"postboard/internal/log"
	"postboard/internal/metrics"
	"postboard/internal/protocol/exchange"
	"postboard/internal/relay"
	"postboard/internal/retry"
	"postboard/internal/services/envelope"
	"postboard/internal/services/post"
	"postboard/internal/store"
	"postboard/internal/testutil"
	"postboard/internal/wire"
)

type fixture struct {
	addr    string
	store   *store.MemoryPostStore
	posts   *post.Service
	metrics *metrics.Metrics
}

func start(t *testing.T, users ...domain.UserID) *fixture {
	t.Helper()
	return startWithTimeout(t, 5*time.Second, users...)
}

func startWithTimeout(t *testing.T, timeout time.Duration, users ...domain.UserID) *fixture {
	t.Helper()
	keys := testutil.Keyring(t, users...)
	env := envelope.New(keys)

	f := &fixture{
		store:   store.NewMemoryPostStore(),
		posts:   post.New(env),
		metrics: metrics.New(),
	}
	srv, err := relay.Listen("127.0.0.1:0", exchange.NewServer(f.store, env, f.metrics), log.Discard(), f.metrics,
		wire.WithTimeout(timeout))
	require.NoError(t, err)
	f.addr = srv.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return f
}

func (f *fixture) run(t *testing.T, user domain.UserID, answers ...string) (*testutil.Recorder, error) {
	t.Helper()
	logger := log.Discard().GetLogger("client")
	conn, err := relay.Dial(context.Background(), f.addr, retry.DefaultPolicy(), logger, wire.WithTimeout(5*time.Second))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rec := &testutil.Recorder{}
	err = exchange.NewClient(user, f.posts, testutil.NewScript(answers...), rec, logger).Run(context.Background(), conn)
	return rec, err
}

// waitCount polls the store, since the server appends after the client has
// already hung up.
func (f *fixture) waitCount(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return f.store.Count() == n }, 5*time.Second, 5*time.Millisecond)
}

func TestPostAndReadBack(t *testing.T) {
	f := start(t, "alice", "bob", "carol")

	_, err := f.run(t, "alice", "y", "all", "hello")
	require.NoError(t, err)
	f.waitCount(t, 1)

	_, err = f.run(t, "bob", "y", "alice", "secret")
	require.NoError(t, err)
	f.waitCount(t, 2)

	rec, err := f.run(t, "alice", "n")
	require.NoError(t, err)
	require.Equal(t, 2, rec.Count)
	require.Len(t, rec.Views, 2)
	require.Equal(t, "hello", rec.Views[0].Text)
	require.Equal(t, "secret", rec.Views[1].Text)
	require.True(t, rec.Views[1].Decrypted)

	rec, err = f.run(t, "carol", "n")
	require.NoError(t, err)
	require.Len(t, rec.Views, 2)
	require.False(t, rec.Views[1].Decrypted)

	require.Eventually(t, func() bool {
		return promtest.ToFloat64(f.metrics.Connections) == 4
	}, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, 2.0, promtest.ToFloat64(f.metrics.PostsAccepted))
}

func TestConcurrentClients(t *testing.T) {
	const n = 8
	f := start(t, "alice", "bob")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			user := domain.UserID("alice")
			if i%2 == 1 {
				user = "bob"
			}
			rec, err := f.run(t, user, "y", "all", fmt.Sprintf("post %d", i))
			if err == nil && rec.Count != len(rec.Views) {
				err = fmt.Errorf("count %d, got %d views", rec.Count, len(rec.Views))
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	f.waitCount(t, n)

	rec, err := f.run(t, "alice", "n")
	require.NoError(t, err)
	require.Equal(t, n, rec.Count)
	for _, v := range rec.Views {
		require.True(t, v.Verified)
	}
}

func TestIdleClientTimesOut(t *testing.T) {
	f := startWithTimeout(t, 100*time.Millisecond, "alice")

	idle, err := net.Dial("tcp", f.addr)
	require.NoError(t, err)
	defer idle.Close()

	require.Eventually(t, func() bool {
		return promtest.ToFloat64(f.metrics.ConnectionFailures) == 1
	}, 5*time.Second, 5*time.Millisecond)

	// The server wrote the empty history, then hung up.
	require.NoError(t, idle.SetReadDeadline(time.Now().Add(5*time.Second)))
	rest, err := io.ReadAll(idle)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, rest)

	rec, err := f.run(t, "alice", "n")
	require.NoError(t, err)
	require.Equal(t, 0, rec.Count)
	require.Equal(t, 0, f.store.Count())
	require.Equal(t, 1.0, promtest.ToFloat64(f.metrics.ConnectionFailures))
}

func TestDialGivesUpOnRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	p := retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
	_, err = relay.Dial(context.Background(), addr, p, log.Discard().GetLogger("client"))
	require.Error(t, err)
	require.True(t, retry.IsTransientError(err))
}

func TestServeStopsOnCancel(t *testing.T) {
	env := envelope.New(testutil.Keyring(t, "alice"))
	srv, err := relay.Listen("127.0.0.1:0", exchange.NewServer(store.NewMemoryPostStore(), env, nil), log.Discard(), nil)
	require.NoError(t, err)

	// An idle client holding a session open must not block shutdown.
	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestCloseWhileAccepting(t *testing.T) {
	env := envelope.New(testutil.Keyring(t, "alice"))
	srv, err := relay.Listen("127.0.0.1:0", exchange.NewServer(store.NewMemoryPostStore(), env, nil), log.Discard(), nil,
		wire.WithTimeout(50*time.Millisecond))
	require.NoError(t, err)
	addr := srv.Addr().String()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background()) }()

	stop := make(chan struct{})
	dialed := make(chan struct{})
	go func() {
		defer close(dialed)
		for {
			select {
			case <-stop:
				return
			default:
			}
			if conn, err := net.Dial("tcp", addr); err == nil {
				_ = conn.Close()
			}
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, srv.Close())
	close(stop)
	<-dialed

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Close")
	}
}
