package exchange_test

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"postboard/internal/domain"
	"postboard/internal/log"
	"postboard/internal/metrics"
	"postboard/internal/protocol/exchange"
	"postboard/internal/services/envelope"
	"postboard/internal/services/post"
	"postboard/internal/store"
	"postboard/internal/testutil"
	"postboard/internal/wire"
)

var (
	alice   = domain.UserID("alice")
	bob     = domain.UserID("bob")
	carol   = domain.UserID("carol")
	eve     = domain.UserID("eve")
	mallory = domain.UserID("mallory")
)

type board struct {
	store   *store.MemoryPostStore
	env     *envelope.Service
	posts   *post.Service
	metrics *metrics.Metrics
	server  *exchange.Server
}

func newBoard(t *testing.T) *board {
	t.Helper()
	keys := testutil.Keyring(t, alice, bob, carol, eve, mallory)
	env := envelope.New(keys)
	clock := func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	b := &board{
		store:   store.NewMemoryPostStore(),
		env:     env,
		posts:   post.New(env, post.WithClock(clock)),
		metrics: metrics.New(),
	}
	b.server = exchange.NewServer(b.store, env, b.metrics)
	return b
}

// serve starts the server role on one end of a pipe and returns the other
// end plus a channel carrying Serve's result.
func (b *board) serve(t *testing.T) (*wire.Conn, <-chan error) {
	t.Helper()
	sc, cc := net.Pipe()
	t.Cleanup(func() { _ = cc.Close() })

	done := make(chan error, 1)
	go func() {
		defer sc.Close()
		done <- b.server.Serve(context.Background(), wire.NewConn(sc), log.Discard().GetLogger("server"))
	}()
	return wire.NewConn(cc, wire.WithTimeout(5*time.Second)), done
}

// session runs a full client exchange as user.
func (b *board) session(t *testing.T, user domain.UserID, answers ...string) (*testutil.Recorder, error) {
	t.Helper()
	conn, done := b.serve(t)

	rec := &testutil.Recorder{}
	cl := exchange.NewClient(user, b.posts, testutil.NewScript(answers...), rec, log.Discard().GetLogger("client"))
	runErr := cl.Run(context.Background(), conn)
	_ = conn.Close()

	require.NoError(t, <-done)
	return rec, runErr
}

func TestBroadcastPostIsStoredAndVisible(t *testing.T) {
	b := newBoard(t)

	rec, err := b.session(t, alice, "y", "all", "hello")
	require.NoError(t, err)
	require.Equal(t, 0, rec.Count)
	require.Empty(t, rec.Views)
	require.Equal(t, 1, b.store.Count())

	rec, err = b.session(t, bob, "n")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Count)
	require.Len(t, rec.Views, 1)

	v := rec.Views[0]
	require.Equal(t, alice, v.Author)
	require.Equal(t, "hello", v.Text)
	require.True(t, v.Verified)
	require.False(t, v.Decrypted)
	require.Equal(t, "Fri Mar  1 12:00:00 UTC 2024", v.Timestamp)

	require.Equal(t, 1.0, promtest.ToFloat64(b.metrics.PostsAccepted))
	require.Equal(t, 1.0, promtest.ToFloat64(b.metrics.PostsStored))
}

func TestEncryptedPostOnlyReadableByRecipient(t *testing.T) {
	b := newBoard(t)

	_, err := b.session(t, bob, "y", "alice", "for alice")
	require.NoError(t, err)

	rec, err := b.session(t, alice, "n")
	require.NoError(t, err)
	require.Len(t, rec.Views, 1)
	require.Equal(t, "for alice", rec.Views[0].Text)
	require.True(t, rec.Views[0].Decrypted)
	require.Equal(t, bob, rec.Views[0].Author)

	rec, err = b.session(t, carol, "n")
	require.NoError(t, err)
	require.Len(t, rec.Views, 1)
	require.NotEqual(t, "for alice", rec.Views[0].Text)
	require.False(t, rec.Views[0].Decrypted)
	require.True(t, rec.Views[0].Verified)
}

func TestMessageKeepsSurroundingSpaces(t *testing.T) {
	b := newBoard(t)

	_, err := b.session(t, bob, "y", " alice ", "  indented ")
	require.NoError(t, err)

	rec, err := b.session(t, alice, "n")
	require.NoError(t, err)
	require.Len(t, rec.Views, 1)
	require.Equal(t, "  indented ", rec.Views[0].Text)
	require.True(t, rec.Views[0].Decrypted)
}

func TestDeclineLeavesStoreUnchanged(t *testing.T) {
	b := newBoard(t)

	_, err := b.session(t, alice, "y", "all", "first")
	require.NoError(t, err)

	rec, err := b.session(t, bob, "n")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Count)
	require.Equal(t, 1, b.store.Count())
}

func TestForgedPostIsRejected(t *testing.T) {
	b := newBoard(t)

	// eve signs a post naming mallory as author, then claims to be mallory.
	forged, err := b.env.Sign(eve, domain.Post{AuthorID: mallory, Payload: "pay eve", Timestamp: "now"})
	require.NoError(t, err)

	conn, done := b.serve(t)
	n, err := conn.ReadCount()
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, conn.WriteBool(true))
	require.NoError(t, conn.WriteString(mallory.String()))
	require.NoError(t, conn.WriteEnvelope(forged))
	require.NoError(t, conn.Flush())

	require.NoError(t, <-done)
	require.Zero(t, b.store.Count())
	require.Equal(t, 1.0, promtest.ToFloat64(b.metrics.PostsRejected.WithLabelValues(metrics.ReasonInvalidSignature)))
}

func TestUnknownClaimedAuthorIsRejected(t *testing.T) {
	b := newBoard(t)

	sp, err := b.env.Sign(alice, domain.Post{AuthorID: alice, Payload: "x", Timestamp: "now"})
	require.NoError(t, err)
	sp.Signer = "nobody"

	conn, done := b.serve(t)
	_, err = conn.ReadCount()
	require.NoError(t, err)
	require.NoError(t, conn.WriteBool(true))
	require.NoError(t, conn.WriteString("nobody"))
	require.NoError(t, conn.WriteEnvelope(sp))
	require.NoError(t, conn.Flush())

	require.NoError(t, <-done)
	require.Zero(t, b.store.Count())
	require.Equal(t, 1.0, promtest.ToFloat64(b.metrics.PostsRejected.WithLabelValues(metrics.ReasonKeyNotFound)))
}

func TestHistoryFramingMatchesStore(t *testing.T) {
	for size := 0; size <= 3; size++ {
		b := newBoard(t)
		for i := 0; i < size; i++ {
			sp, err := b.posts.Compose(alice, domain.Broadcast, strings.Repeat("x", i+1))
			require.NoError(t, err)
			p, err := b.env.Verify(sp)
			require.NoError(t, err)
			require.NoError(t, b.store.Append(domain.StoredPost{Post: p, Envelope: sp}))
		}

		conn, done := b.serve(t)
		n, err := conn.ReadCount()
		require.NoError(t, err)
		require.EqualValues(t, size, n)

		for i := 0; i < size; i++ {
			sp, err := conn.ReadEnvelope()
			require.NoError(t, err)
			require.Equal(t, b.store.Snapshot()[i].Envelope, sp)
		}
		require.NoError(t, conn.WriteBool(false))
		require.NoError(t, conn.Flush())
		require.NoError(t, <-done)

		// Nothing follows the history once the server is done.
		_, err = conn.ReadBool()
		require.True(t, errors.Is(err, io.EOF) || errors.Is(err, wire.ErrFraming), "got %v", err)
	}
}

func TestServerReportsTruncatedSession(t *testing.T) {
	b := newBoard(t)

	conn, done := b.serve(t)
	_, err := conn.ReadCount()
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	require.Error(t, <-done)
	require.Zero(t, b.store.Count())
}

func TestClientUnknownRecipientSendsNo(t *testing.T) {
	b := newBoard(t)

	_, err := b.session(t, alice, "y", "nobody", "secret")
	require.ErrorIs(t, err, domain.ErrKeyNotFound)
	require.Zero(t, b.store.Count())
}

func TestClientPromptFailure(t *testing.T) {
	b := newBoard(t)

	conn, done := b.serve(t)
	cl := exchange.NewClient(alice, b.posts, testutil.NewScript(), &testutil.Recorder{}, log.Discard().GetLogger("client"))
	err := cl.Run(context.Background(), conn)
	require.ErrorIs(t, err, testutil.ErrScriptExhausted)
	_ = conn.Close()
	require.NoError(t, <-done)
	require.Zero(t, b.store.Count())
}

func TestStateString(t *testing.T) {
	require.Equal(t, "AwaitingContinueDecision", exchange.AwaitingContinueDecision.String())
	require.Equal(t, "Unknown", exchange.State(42).String())
}
