// Package metrics counts pipeline stage transitions and model fits.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var Observer = &Metrics{
	mutex:      new(sync.RWMutex),
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.Stages, Observer.prometheus.Fits)
}

type Metrics struct {
	mutex      *sync.RWMutex
	prometheus Prometheus
}

// Stage counts one stage completion for a dataset, outcome is "ok" or "error".
func (m *Metrics) Stage(dataset, stage, outcome string) {
	m.prometheus.Stages.WithLabelValues(dataset, stage, outcome).Inc()
}

// Fit counts one model fit for a dataset.
func (m *Metrics) Fit(dataset, model string) {
	m.prometheus.Fits.WithLabelValues(dataset, model).Inc()
}

// Handler exposes the registry over http.
func Handler() http.Handler {
	return promhttp.Handler()
}
