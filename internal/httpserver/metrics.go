package httpserver

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	detections      *prometheus.CounterVec
	detectedEvents  *prometheus.CounterVec
	overlapWarnings prometheus.Counter
}

func newMetrics(registry prometheus.Registerer) *metrics {
	m := &metrics{
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gazeseg",
			Name:      "detections_total",
			Help:      "Detection runs by method and outcome.",
		}, []string{"method", "outcome"}),
		detectedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gazeseg",
			Name:      "detected_events_total",
			Help:      "Events emitted by detection runs.",
		}, []string{"method"}),
		overlapWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gazeseg",
			Name:      "segmentation_overlap_warnings_total",
			Help:      "Overlapping events seen while building segmentation masks.",
		}),
	}
	registry.MustRegister(m.detections, m.detectedEvents, m.overlapWarnings)
	return m
}
