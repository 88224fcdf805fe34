// Package pool provides a driver-agnostic pool of database connections
// for concurrent client code.
//
// The pool supports:
//   - Bounded connection count with single-flight acquisition
//   - Idle-connection recycling with time-based eviction
//   - The full request surface of a single connection (query, exec,
//     prepare, begin-transaction), borrowing and releasing transparently
//   - Release-wrapping results, statements, and transactions that return
//     the borrowed connection exactly once, when the caller is done
//   - Metrics for pool utilization
//
// # Basic Usage
//
//	connector := pool.ConnectorFunc(func(ctx context.Context) (pool.Link, error) {
//	    return myDriver.Dial(ctx, dsn)
//	})
//
//	cfg := pool.DefaultConfig()
//	cfg.MaxConnections = 10
//	cfg.IdleTimeout = time.Minute
//
//	p, err := pool.New(connector, cfg)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	res, err := p.Query(ctx, "SELECT id, name FROM users")
//	if err != nil {
//	    return err
//	}
//	defer res.Close() // releases the borrowed connection
//
// # Acquisition model
//
// Acquisitions are serialized pool-wide: at most one caller is connecting or
// waiting for capacity at any instant, and later callers queue behind it.
// This trades a little concurrency for the absence of connect stampedes and
// idle-list races. Releases never block and never fail.
//
// # Metrics
//
// Pool utilization metrics are registered with the metrics package:
//   - dbpool_connections_max: Configured connection limit
//   - dbpool_connections_open: Current owned connections
//   - dbpool_connections_idle: Current idle connections
//   - dbpool_connections_in_use: Connections currently borrowed
//   - dbpool_acquire_total: Total acquire attempts
//   - dbpool_acquire_success_total: Successful acquires
//   - dbpool_acquire_failed_total: Failed acquires
//   - dbpool_release_total: Total releases
//   - dbpool_idle_evictions_total: Idle-timeout evictions
//   - dbpool_dead_links_total: Dead connections dropped on reuse or release
package pool
