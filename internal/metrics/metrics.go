// Package metrics holds the Prometheus collectors for account domain events.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsPublished counts domain events successfully handed to the broker,
	// labeled by topic.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_events_published_total",
			Help: "Total number of account domain events published",
		},
		[]string{"topic"},
	)

	// EventPublishFailures counts events that could not be handed to the
	// broker. Publishing is best-effort; these are logged and dropped.
	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_event_publish_failures_total",
			Help: "Total number of account domain events that failed to publish",
		},
		[]string{"topic"},
	)
)
