// Package metrics counts container operations with Prometheus collectors.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "servicekit"

// Recorder holds the container collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	actions *prometheus.CounterVec
	entries *prometheus.GaugeVec
}

// NewRecorder creates the collectors and registers them with reg. A collector
// that is already registered is reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "container",
		Name:      "actions_total",
		Help:      "Container operations by action and outcome.",
	}, []string{"container", "action", "outcome"})

	entries := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "container",
		Name:      "entries",
		Help:      "Current number of entries held by a container.",
	}, []string{"container"})

	var err error
	if actions, err = register(reg, actions); err != nil {
		return nil, err
	}
	if entries, err = register(reg, entries); err != nil {
		return nil, err
	}
	return &Recorder{actions: actions, entries: entries}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe counts one action on container.
func (r *Recorder) Observe(container, action, outcome string) {
	if r == nil {
		return
	}
	r.actions.WithLabelValues(container, action, outcome).Inc()
}

// SetEntries records the current size of container.
func (r *Recorder) SetEntries(container string, n int) {
	if r == nil {
		return
	}
	r.entries.WithLabelValues(container).Set(float64(n))
}

// Forget drops the series of a closed container.
func (r *Recorder) Forget(container string) {
	if r == nil {
		return
	}
	r.entries.DeleteLabelValues(container)
}
