package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GiveawaysExpired counts giveaways closed by the scheduler.
	GiveawaysExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "giveaway",
		Name:      "expired_total",
		Help:      "Number of giveaways closed by the expiration scheduler.",
	})

	// SchedulerItemErrors counts per-giveaway failures inside a tick.
	SchedulerItemErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "giveaway",
		Name:      "scheduler_item_errors_total",
		Help:      "Number of giveaways the scheduler failed to process.",
	})

	// StoreFlushErrors counts failed persistence cycles of the JSON store.
	StoreFlushErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "giveaway",
		Name:      "store_flush_errors_total",
		Help:      "Number of failed JSON store flushes.",
	})

	// PresenterErrors counts best-effort outward refreshes that failed.
	PresenterErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "giveaway",
		Name:      "presenter_errors_total",
		Help:      "Number of failed outward message refreshes or announcements.",
	})

	// TickDuration observes the wall time of a full scheduler tick.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "giveaway",
		Name:      "scheduler_tick_seconds",
		Help:      "Duration of a full expiration scheduler tick.",
		Buckets:   prometheus.DefBuckets,
	})
)
