// Package metrics defines the custom Prometheus metrics of the foundation
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register with the default registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fundacion"

// ── Sponsorship metrics ───────────────────────────────────────────────────────

// SponsorshipsCreatedTotal counts sponsorships that committed.
var SponsorshipsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sponsorships_created_total",
		Help:      "Total number of sponsorships created.",
	},
)

// SponsorshipsFinalizedTotal counts sponsorships moved to FINALIZADO.
var SponsorshipsFinalizedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sponsorships_finalized_total",
		Help:      "Total number of sponsorships finalized.",
	},
)

// SponsorshipsRejectedTotal counts refused sponsorship requests.
// Label:
//   - reason: "child_unavailable", "invalid_role", "not_found" or "invalid_transition"
var SponsorshipsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sponsorships_rejected_total",
		Help:      "Total number of sponsorship operations refused, by reason.",
	},
	[]string{"reason"},
)

// ── Donation metrics ──────────────────────────────────────────────────────────

// DonationsCreatedTotal counts recorded donations.
// Label:
//   - type: "MONETARIA" or "MATERIAL"
var DonationsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donations_created_total",
		Help:      "Total number of donations recorded, by type.",
	},
	[]string{"type"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsQueueDepth tracks pending mails per dispatcher worker.
var NotificationsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_queue_depth",
		Help:      "Current number of mails pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationsTotal counts notification outcomes.
// Label:
//   - result: "sent", "failed" or "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of queued notifications, by outcome.",
	},
	[]string{"result"},
)

// NotificationDuration measures a single delivery attempt.
var NotificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a single notification delivery attempt.",
		Buckets:   prometheus.DefBuckets,
	},
)
