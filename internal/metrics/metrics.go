// Package metrics exposes server counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "postboard"

// Rejection reasons used as label values.
const (
	ReasonInvalidSignature = "invalid_signature"
	ReasonKeyNotFound      = "key_not_found"
	ReasonStore            = "store"
)

// Metrics groups the server's collectors on a private registry.
type Metrics struct {
	reg *prometheus.Registry

	Connections        prometheus.Counter
	ConnectionFailures prometheus.Counter
	PostsAccepted      prometheus.Counter
	PostsRejected      *prometheus.CounterVec
	PostsStored        prometheus.Gauge
}

// New registers a fresh set of collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		Connections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Accepted client connections.",
		}),
		ConnectionFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_failures_total",
			Help:      "Sessions abandoned on transport or framing errors.",
		}),
		PostsAccepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_accepted_total",
			Help:      "Submissions that passed verification and were stored.",
		}),
		PostsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_rejected_total",
			Help:      "Submissions discarded, by reason.",
		}, []string{"reason"}),
		PostsStored: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "posts_stored",
			Help:      "Posts currently held in memory.",
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
