// Package metrics exposes Prometheus instrumentation for the rules
// pipeline and room lifecycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder collects pipeline and room counters. It satisfies the
// kernel's Recorder interface.
type Recorder struct {
	actions     *prometheus.CounterVec
	faults      *prometheus.CounterVec
	activeRooms prometheus.Gauge
	registry    *prometheus.Registry
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houserules",
			Name:      "actions_total",
			Help:      "Actions decided by the rules pipeline.",
		}, []string{"action", "outcome"}),
		faults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "houserules",
			Name:      "handler_faults_total",
			Help:      "Card handler panics recovered during polling.",
		}, []string{"action"}),
		activeRooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "houserules",
			Name:      "active_rooms",
			Help:      "Rooms currently running a game loop.",
		}),
	}
}

// ActionDecided counts one pipeline decision.
func (r *Recorder) ActionDecided(action string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	r.actions.WithLabelValues(action, outcome).Inc()
}

// HandlerFault counts one recovered card handler panic. The card name
// is logged, not labeled, to keep series cardinality bounded.
func (r *Recorder) HandlerFault(card, action string) {
	r.faults.WithLabelValues(action).Inc()
}

// RoomOpened marks a room's game loop as running.
func (r *Recorder) RoomOpened() { r.activeRooms.Inc() }

// RoomClosed marks a room's game loop as finished.
func (r *Recorder) RoomClosed() { r.activeRooms.Dec() }

// Handler serves the scrape endpoint for this recorder's registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
