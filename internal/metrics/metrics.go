package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hypoforum"

var (
	// VotesTotal counts vote operations by type and outcome (created, changed, unchanged, withdrawn, rejected).
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Vote operations by vote type and outcome.",
	}, []string{"vote_type", "outcome"})

	VoteRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "vote_retries_total",
		Help:      "Vote transactions retried after a concurrent insert.",
	})

	LifecycleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comment_lifecycle_total",
		Help:      "Comment accept and retract transitions.",
	}, []string{"transition"})

	ModerationVerdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_verdicts_total",
		Help:      "Moderation results by verdict.",
	}, []string{"verdict"})

	NotificationsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Notifications dropped because the queue was full.",
	})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_failures_total",
		Help:      "Notification deliveries that failed, by sink.",
	}, []string{"sink"})

	TreeCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "thread_cache_lookups_total",
		Help:      "Thread detail cache lookups by result.",
	}, []string{"result"})

	AuditDrift = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_drift",
		Help:      "Aggregates that disagreed with the vote ledger in the last audit.",
	})
)
