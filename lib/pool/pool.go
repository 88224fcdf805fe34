package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-i2p/dbpool/lib/errors"
)

// Config configures the connection pool.
type Config struct {
	// MaxConnections is the maximum number of live connections the pool
	// owns at any moment. Must be at least 1.
	// Default: 100
	MaxConnections int
	// IdleTimeout is how long an unborrowed connection may sit idle before
	// the sweeper closes it. Must be at least one second.
	// Default: 60 seconds
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with the default limits.
func DefaultConfig() Config {
	return Config{
		MaxConnections: 100,
		IdleTimeout:    60 * time.Second,
	}
}

// Option customizes pool construction.
type Option func(*Pool)

// WithSweepInterval overrides the idle-sweep cadence. The default is one
// second; tests shorten it.
func WithSweepInterval(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.sweepEvery = d
		}
	}
}

// Pool multiplexes logical database operations over a bounded set of live
// connections. It exposes the same request surface as a single connection,
// borrowing and releasing transparently around each operation.
type Pool struct {
	connector Connector
	cfg       Config

	mu        sync.Mutex
	turnstile *sync.Cond // callers queued behind the in-flight acquisition
	released  *sync.Cond // the pending capacity waiter
	acquiring bool       // an acquisition episode is in flight
	waiting   bool       // a capacity waiter is registered
	owned     map[Link]struct{}
	idle      []Link // release appends at the tail; reuse pops the head
	closed    bool

	sweepEvery time.Duration
	stopSweep  chan struct{}
	sweepDone  chan struct{}

	acquireCount   uint64
	acquireSuccess uint64
	acquireFailed  uint64
	releaseCount   uint64
	idleEvictions  uint64
	deadLinks      uint64
}

// New creates a pool that obtains connections from the given connector.
// It fails with a configuration error if the limits are out of range.
func New(connector Connector, cfg Config, opts ...Option) (*Pool, error) {
	if connector == nil {
		return nil, errors.ErrNoConnector
	}
	if cfg.MaxConnections < 1 {
		return nil, errors.ErrMaxConnections
	}
	if cfg.IdleTimeout < time.Second {
		return nil, errors.ErrIdleTimeout
	}

	p := &Pool{
		connector:  connector,
		cfg:        cfg,
		owned:      make(map[Link]struct{}),
		idle:       make([]Link, 0, cfg.MaxConnections),
		sweepEvery: time.Second,
		stopSweep:  make(chan struct{}),
		sweepDone:  make(chan struct{}),
	}
	p.turnstile = sync.NewCond(&p.mu)
	p.released = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}

	go p.sweepLoop()

	log.WithField("maxConnections", cfg.MaxConnections).
		WithField("idleTimeout", cfg.IdleTimeout).
		Debug("pool created")
	return p, nil
}

// Acquire borrows a live connection from the pool. Acquisitions are
// serialized pool-wide: if another caller is connecting or waiting for
// capacity, Acquire blocks behind it and then re-evaluates from scratch.
// It returns once it holds a live Link, or fails if the pool closes or
// the context is canceled while it waits.
func (p *Pool) Acquire(ctx context.Context) (Link, error) {
	atomic.AddUint64(&p.acquireCount, 1)
	MetricAcquireTotal.Inc()
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	// Queue behind the in-flight acquisition, if any.
	for p.acquiring {
		if p.closed {
			return nil, p.failAcquire(errors.ErrPoolClosed)
		}
		if err := ctx.Err(); err != nil {
			return nil, p.failAcquire(err)
		}
		p.condWait(ctx, p.turnstile)
	}

	p.acquiring = true
	defer func() {
		p.acquiring = false
		p.turnstile.Signal()
	}()

	for {
		if p.closed {
			return nil, p.failAcquire(errors.ErrPoolClosed)
		}
		if err := ctx.Err(); err != nil {
			return nil, p.failAcquire(err)
		}

		// Reuse the longest-released idle connection first.
		for len(p.idle) > 0 {
			link := p.idle[0]
			p.idle = p.idle[1:]
			if link.IsAlive() {
				p.succeedAcquire(start)
				log.Debug("acquired idle connection from pool")
				return link, nil
			}
			p.dropDead(link)
		}

		// Create a new connection if under the limit. The single-flight
		// flag keeps the owned set stable across the suspension, so no
		// slot is reserved up front and a failure leaves state unchanged.
		if len(p.owned) < p.cfg.MaxConnections {
			p.mu.Unlock()
			link, err := p.connector.Connect(ctx)
			p.mu.Lock()

			if err != nil {
				log.WithError(err).Debug("connector failed")
				return nil, p.failAcquire(err)
			}
			if p.closed {
				go link.Close()
				return nil, p.failAcquire(errors.ErrPoolClosed)
			}
			p.owned[link] = struct{}{}
			p.succeedAcquire(start)
			log.WithField("open", len(p.owned)).Debug("created new connection")
			return link, nil
		}

		// At capacity: register as the pending waiter and suspend until a
		// release signals. The release does not hand over a connection;
		// the loop re-checks the idle registry from scratch.
		log.Debug("pool saturated, waiting for a release")
		p.waiting = true
		p.condWait(ctx, p.released)
		p.waiting = false
	}
}

// condWait waits on cond, waking early if the context is canceled.
// The caller must hold p.mu.
func (p *Pool) condWait(ctx context.Context, cond *sync.Cond) {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			cond.Broadcast()
			p.mu.Unlock()
		case <-done:
		}
	}()
	cond.Wait()
	close(done)
}

// failAcquire records a failed acquisition. The caller must hold p.mu.
func (p *Pool) failAcquire(err error) error {
	atomic.AddUint64(&p.acquireFailed, 1)
	MetricAcquireFailedTotal.Inc()
	return err
}

// succeedAcquire records a successful acquisition. The caller must hold p.mu.
func (p *Pool) succeedAcquire(start time.Time) {
	atomic.AddUint64(&p.acquireSuccess, 1)
	MetricAcquireSuccessTotal.Inc()
	MetricAcquireLatency.ObserveDuration(time.Since(start))
}

// dropDead removes a dead connection from the owned set.
// The caller must hold p.mu.
func (p *Pool) dropDead(link Link) {
	delete(p.owned, link)
	atomic.AddUint64(&p.deadLinks, 1)
	MetricDeadLinksTotal.Inc()
	go link.Close()
	log.Debug("dropped dead connection on reuse")
}

// Release returns a borrowed connection to the pool. Alive connections
// rejoin the idle registry; dead ones leave the owned set. Release never
// blocks and never fails; releasing a connection the pool does not own is
// an invariant violation and panics.
func (p *Pool) Release(link Link) {
	if link == nil {
		return
	}

	atomic.AddUint64(&p.releaseCount, 1)
	MetricReleaseTotal.Inc()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.owned[link]; !ok {
		panic("pool: release of connection not owned by this pool")
	}

	if p.closed {
		// Close already tore the connection down when the pool shut
		// down; the late release only surrenders ownership.
		delete(p.owned, link)
		return
	}

	if link.IsAlive() {
		p.idle = append(p.idle, link)
		log.Debug("connection released to pool")
	} else {
		delete(p.owned, link)
		atomic.AddUint64(&p.deadLinks, 1)
		MetricDeadLinksTotal.Inc()
		go link.Close()
		log.Debug("dead connection dropped on release")
	}

	if p.waiting {
		p.released.Signal()
	}
}

// ExtractLink permanently removes one connection from pool ownership and
// hands it to the caller, who becomes responsible for closing it. The
// connection is borrowed through the normal acquisition path first.
func (p *Pool) ExtractLink(ctx context.Context) (Link, error) {
	link, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	delete(p.owned, link)
	p.mu.Unlock()

	log.Debug("connection extracted from pool")
	return link, nil
}

// sweepLoop evicts idle connections on a fixed cadence until the pool closes.
func (p *Pool) sweepLoop() {
	defer close(p.sweepDone)

	ticker := time.NewTicker(p.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopSweep:
			return
		case <-ticker.C:
			p.sweepIdle()
		}
	}
}

// sweepIdle scans the idle registry from the release-insertion end (the
// tail) and evicts connections idle past the timeout, stopping at the first
// connection still inside it. Entries nearer the head that have already
// expired are picked up on a later cycle, once everything behind them has
// expired too.
func (p *Pool) sweepIdle() {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return
	}

	var evicted []Link
	now := time.Now()

	i := len(p.idle) - 1
	for ; i >= 0; i-- {
		link := p.idle[i]
		if now.Sub(link.LastUsedAt()) <= p.cfg.IdleTimeout {
			break
		}
		evicted = append(evicted, link)
		delete(p.owned, link)
	}
	p.idle = p.idle[:i+1]

	p.mu.Unlock()

	// Close outside the lock
	for _, link := range evicted {
		link.Close()
		atomic.AddUint64(&p.idleEvictions, 1)
		MetricIdleEvictionsTotal.Inc()
	}

	if len(evicted) > 0 {
		log.WithField("evicted", len(evicted)).Debug("idle sweep closed connections")
	}
}

// Close marks the pool closed, closes every owned connection (borrowed ones
// are closed from under their callers), clears the idle registry, and fails
// any pending waiter with a pool-closed error. Close is idempotent.
func (p *Pool) Close() error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		return nil
	}

	p.closed = true
	close(p.stopSweep)

	for link := range p.owned {
		go link.Close()
	}
	// Idle connections leave the owned set now; borrowed ones linger until
	// their holders release them.
	for _, link := range p.idle {
		delete(p.owned, link)
	}
	p.idle = nil

	p.released.Broadcast()
	p.turnstile.Broadcast()
	p.mu.Unlock()

	<-p.sweepDone

	log.Debug("pool closed")
	return nil
}

// IsAlive reports whether the pool accepts borrows.
func (p *Pool) IsAlive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed
}

// ConnCount returns the number of connections the pool currently owns.
func (p *Pool) ConnCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.owned)
}

// IdleCount returns the number of idle connections.
func (p *Pool) IdleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

// Limit returns the configured connection limit.
func (p *Pool) Limit() int {
	return p.cfg.MaxConnections
}

// IdleTimeout returns the configured idle timeout.
func (p *Pool) IdleTimeout() time.Duration {
	return p.cfg.IdleTimeout
}

// LastUsedAt returns the most recent activity timestamp across all owned
// connections, or the zero time if the pool owns none.
func (p *Pool) LastUsedAt() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	var last time.Time
	for link := range p.owned {
		if t := link.LastUsedAt(); t.After(last) {
			last = t
		}
	}
	return last
}

// Stats is a snapshot of pool state and lifetime counters.
type Stats struct {
	// MaxConnections is the configured connection limit.
	MaxConnections int
	// NumOpen is the current number of owned connections.
	NumOpen int
	// NumIdle is the current number of idle connections.
	NumIdle int
	// NumInUse is the number of connections currently borrowed.
	NumInUse int
	// AcquireCount is the total number of acquire attempts.
	AcquireCount uint64
	// AcquireSuccess is the number of successful acquires.
	AcquireSuccess uint64
	// AcquireFailed is the number of failed acquires.
	AcquireFailed uint64
	// ReleaseCount is the number of releases.
	ReleaseCount uint64
	// IdleEvictions is the number of connections evicted by the sweeper.
	IdleEvictions uint64
	// DeadLinks is the number of dead connections dropped.
	DeadLinks uint64
}

// Stats returns current pool statistics.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		MaxConnections: p.cfg.MaxConnections,
		NumOpen:        len(p.owned),
		NumIdle:        len(p.idle),
		NumInUse:       len(p.owned) - len(p.idle),
		AcquireCount:   atomic.LoadUint64(&p.acquireCount),
		AcquireSuccess: atomic.LoadUint64(&p.acquireSuccess),
		AcquireFailed:  atomic.LoadUint64(&p.acquireFailed),
		ReleaseCount:   atomic.LoadUint64(&p.releaseCount),
		IdleEvictions:  atomic.LoadUint64(&p.idleEvictions),
		DeadLinks:      atomic.LoadUint64(&p.deadLinks),
	}
}
