package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InvitesStored counts stored invites by medium.
	InvitesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbind_invites_stored_total",
			Help: "Total number of pending invites stored",
		},
		[]string{"medium"},
	)

	// BindsSigned counts successful bind operations by medium.
	BindsSigned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbind_binds_signed_total",
			Help: "Total number of signed 3PID bind results produced",
		},
		[]string{"medium"},
	)

	// InviteEmails counts notification dispatch outcomes (sent|skipped|failed).
	InviteEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustbind_invite_emails_total",
			Help: "Invite notification dispatch outcomes",
		},
		[]string{"result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustbind_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
