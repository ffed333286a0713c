package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courier_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	OnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "courier_online_users",
			Help: "Identities with a live registry entry",
		},
	)

	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_ws_connections_total",
			Help: "Total websocket connection attempts",
		},
		[]string{"outcome"}, // "admitted" or "rejected"
	)

	MessagesDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_messages_dispatched_total",
			Help: "Messages dispatched by final status",
		},
		[]string{"status"}, // "sent" or "delivered"
	)

	ReadReceipts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_read_receipts_total",
			Help: "Total conversation read receipts processed",
		},
	)

	TypingSignals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "courier_typing_signals_total",
			Help: "Total typing signals relayed",
		},
	)
)
