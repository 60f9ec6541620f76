package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are kept in a registry of their own so that every service instance, and every test,
// starts counting from zero.
type metrics struct {
	registry *prometheus.Registry
	actions  *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "people_actions_total",
			Help: "Number of handled /people requests, partitioned by action.",
		}, []string{"action"}),
	}
	m.registry.MustRegister(m.actions, collectors.NewGoCollector())
	return m
}

func (m *metrics) count(action string) {
	m.actions.WithLabelValues(action).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
