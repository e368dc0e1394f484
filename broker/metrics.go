package broker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	subscribersActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "spoolman_notifier_subscribers",
			Help: "Number of websocket subscribers currently registered",
		},
		[]string{"resource"},
	)

	deliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "spoolman_notifier_deliveries_total",
			Help: "Change event deliveries to subscribers by outcome",
		},
		[]string{"resource", "outcome"},
	)

	mirrorErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "spoolman_notifier_mirror_errors_total",
			Help: "Change events that could not be forwarded to the message bus",
		},
	)
)
