package pool

import "github.com/go-i2p/dbpool/lib/metrics"

// Pool utilization metrics
var (
	// MetricConnectionsMax is the configured connection limit.
	MetricConnectionsMax = metrics.NewGauge(
		"dbpool_connections_max",
		"Configured maximum number of connections in the pool",
	)
	// MetricConnectionsOpen is the current number of owned connections.
	MetricConnectionsOpen = metrics.NewGauge(
		"dbpool_connections_open",
		"Current number of owned connections",
	)
	// MetricConnectionsIdle is the current number of idle connections.
	MetricConnectionsIdle = metrics.NewGauge(
		"dbpool_connections_idle",
		"Current number of idle connections in the pool",
	)
	// MetricConnectionsInUse is the number of connections currently borrowed.
	MetricConnectionsInUse = metrics.NewGauge(
		"dbpool_connections_in_use",
		"Number of connections currently borrowed",
	)
	// MetricAcquireTotal is the total number of acquire attempts.
	MetricAcquireTotal = metrics.NewCounter(
		"dbpool_acquire_total",
		"Total number of connection acquire attempts",
	)
	// MetricAcquireSuccessTotal is the number of successful acquires.
	MetricAcquireSuccessTotal = metrics.NewCounter(
		"dbpool_acquire_success_total",
		"Total number of successful connection acquires",
	)
	// MetricAcquireFailedTotal is the number of failed acquires.
	MetricAcquireFailedTotal = metrics.NewCounter(
		"dbpool_acquire_failed_total",
		"Total number of failed connection acquires",
	)
	// MetricReleaseTotal is the number of releases.
	MetricReleaseTotal = metrics.NewCounter(
		"dbpool_release_total",
		"Total number of connection releases",
	)
	// MetricIdleEvictionsTotal is the number of idle-timeout evictions.
	MetricIdleEvictionsTotal = metrics.NewCounter(
		"dbpool_idle_evictions_total",
		"Total number of connections evicted by the idle sweeper",
	)
	// MetricDeadLinksTotal is the number of dead connections dropped.
	MetricDeadLinksTotal = metrics.NewCounter(
		"dbpool_dead_links_total",
		"Total number of dead connections dropped on reuse or release",
	)
	// MetricAcquireLatency tracks time spent acquiring connections.
	MetricAcquireLatency = metrics.NewHistogram(
		"dbpool_acquire_duration_seconds",
		"Time spent acquiring a connection from the pool",
		metrics.DefaultLatencyBuckets,
	)
)

// UpdateMetrics publishes the gauge portion of a Stats snapshot.
func UpdateMetrics(stats Stats) {
	MetricConnectionsMax.Set(int64(stats.MaxConnections))
	MetricConnectionsOpen.Set(int64(stats.NumOpen))
	MetricConnectionsIdle.Set(int64(stats.NumIdle))
	MetricConnectionsInUse.Set(int64(stats.NumInUse))
}
