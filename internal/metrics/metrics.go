// Package metrics provides Prometheus metrics for the bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Remote listing metrics
	remoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meddrivebot_remote_requests_total",
			Help: "Total folder listing requests against the remote backend",
		},
		[]string{"backend", "status"},
	)

	remoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meddrivebot_remote_request_duration_seconds",
			Help:    "Folder listing request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// Cache metrics
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meddrivebot_cache_lookups_total",
			Help: "Listing cache lookups by result",
		},
		[]string{"result"},
	)

	cachedListings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meddrivebot_cached_listings",
			Help: "Number of folder listings currently cached",
		},
	)

	// Watcher metrics
	watchCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meddrivebot_watch_cycles_total",
			Help: "Total watch cycles by outcome",
		},
		[]string{"status"},
	)

	watchCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meddrivebot_watch_cycle_duration_seconds",
			Help:    "Watch cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meddrivebot_scans_total",
			Help: "Total subtree scans by outcome",
		},
		[]string{"status"},
	)

	scanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meddrivebot_scan_duration_seconds",
			Help:    "Subtree scan duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	newEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meddrivebot_new_entries_total",
			Help: "Total entries detected as new across all cycles",
		},
	)

	// Notification metrics
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meddrivebot_notifications_total",
			Help: "Total notification sends by outcome",
		},
		[]string{"status"},
	)

	notificationsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meddrivebot_notifications_dropped_total",
			Help: "Notifications dropped by the per-cycle cap",
		},
	)

	// State store metrics
	statePersistsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meddrivebot_state_persists_total",
			Help: "Durable state writes by outcome",
		},
		[]string{"status"},
	)

	// Interactive metrics
	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "meddrivebot_active_sessions",
			Help: "Number of live browse sessions",
		},
	)

	actionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meddrivebot_actions_total",
			Help: "Interactive navigation actions by kind and outcome",
		},
		[]string{"action", "status"},
	)

	rateLimitHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "meddrivebot_rate_limit_hits_total",
			Help: "Interactive actions rejected by the per-chat rate limit",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRemoteRequest records one listing request against a backend.
func RecordRemoteRequest(backend string, duration time.Duration, success bool) {
	remoteRequestsTotal.WithLabelValues(backend, statusLabel(success)).Inc()
	remoteRequestDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordCacheLookup records a listing cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// SetCachedListings sets the number of cached folder listings.
func SetCachedListings(count int) {
	cachedListings.Set(float64(count))
}

// RecordWatchCycle records a completed watch cycle.
func RecordWatchCycle(duration time.Duration, success bool) {
	watchCyclesTotal.WithLabelValues(statusLabel(success)).Inc()
	watchCycleDuration.Observe(duration.Seconds())
}

// RecordScan records a subtree scan.
func RecordScan(duration time.Duration, success bool) {
	scansTotal.WithLabelValues(statusLabel(success)).Inc()
	scanDuration.Observe(duration.Seconds())
}

// RecordNewEntries counts entries detected as new.
func RecordNewEntries(count int) {
	newEntriesTotal.Add(float64(count))
}

// RecordNotification records one notification send.
func RecordNotification(success bool) {
	notificationsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordNotificationsDropped counts notifications cut by the cap.
func RecordNotificationsDropped(count int) {
	notificationsDroppedTotal.Add(float64(count))
}

// RecordStatePersist records a durable state write.
func RecordStatePersist(success bool) {
	statePersistsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// SetActiveSessions sets the live session count.
func SetActiveSessions(count int) {
	activeSessions.Set(float64(count))
}

// RecordAction records an interactive navigation action.
func RecordAction(action string, success bool) {
	actionsTotal.WithLabelValues(action, statusLabel(success)).Inc()
}

// RecordRateLimitHit records a rate limit rejection.
func RecordRateLimitHit() {
	rateLimitHitsTotal.Inc()
}
