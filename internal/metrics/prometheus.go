package metrics

import "github.com/prometheus/client_golang/prometheus"

type Prometheus struct {
	Stages *prometheus.CounterVec
	Fits   *prometheus.CounterVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Stages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edalab",
				Name:      "stages",
			}, []string{"dataset", "stage", "outcome"}),
		Fits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edalab",
				Name:      "fits",
			}, []string{"dataset", "model"}),
	}
}
