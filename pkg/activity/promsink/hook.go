// Package promsink counts settings activity in Prometheus.
package promsink

import (
	"context"

	"github.com/goliatone/go-options-perdomain/pkg/activity"
	"github.com/prometheus/client_golang/prometheus"
)

// Hook increments a counter per verb, object type and channel.
type Hook struct {
	events *prometheus.CounterVec
}

// New registers the counter on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer, namespace string) (*Hook, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "settings",
		Name:      "activity_events_total",
		Help:      "Settings activity events by verb, object type and channel.",
	}, []string{"verb", "object_type", "channel"})
	if err := reg.Register(events); err != nil {
		return nil, err
	}
	return &Hook{events: events}, nil
}

// Notify implements activity.ActivityHook.
func (h *Hook) Notify(_ context.Context, event activity.Event) error {
	if h == nil || h.events == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if normalized.Verb == "" {
		return nil
	}
	h.events.WithLabelValues(normalized.Verb, normalized.ObjectType, normalized.Channel).Inc()
	return nil
}

// Counter exposes the underlying vector for collectors and tests.
func (h *Hook) Counter() *prometheus.CounterVec {
	return h.events
}
