package metrics_test

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"postboard/internal/metrics"
)

func TestHandlerExposesCollectors(t *testing.T) {
	m := metrics.New()
	m.Connections.Inc()
	m.PostsRejected.WithLabelValues(metrics.ReasonInvalidSignature).Inc()
	m.PostsStored.Set(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	require.Contains(t, out, "postboard_connections_total 1")
	require.Contains(t, out, `postboard_posts_rejected_total{reason="invalid_signature"} 1`)
	require.Contains(t, out, "postboard_posts_stored 3")
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.PostsAccepted.Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(a.PostsAccepted))
	require.Equal(t, 0.0, testutil.ToFloat64(b.PostsAccepted))
}
