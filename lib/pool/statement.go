package pool

import (
	"context"
	"sync"

	"github.com/go-i2p/dbpool/lib/errors"
)

// Stmt is a prepared statement with the lifetime of the pool rather than of
// one connection. Each execution borrows whichever connection is next
// available, preparing the statement on it lazily and caching the prepared
// form per connection for reuse.
//
// Stmt is safe for concurrent use.
type Stmt struct {
	pool  *Pool
	query string

	mu     sync.Mutex
	cache  map[Link]Statement
	closed bool
}

// Prepare returns a pool-lifetime statement handle for the given query.
// It never fails synchronously; preparation errors surface on first use.
func (p *Pool) Prepare(query string) *Stmt {
	return &Stmt{
		pool:  p,
		query: query,
		cache: make(map[Link]Statement),
	}
}

// Query runs the statement with args and streams the resulting rows. The
// borrowed connection is released when the returned result is closed.
func (s *Stmt) Query(ctx context.Context, args []any) (Result, error) {
	link, st, err := s.bind(ctx)
	if err != nil {
		return nil, err
	}

	res, err := st.Query(ctx, args)
	if err != nil {
		s.pool.Release(link)
		return nil, err
	}
	return newPooledResult(res, s.pool, link), nil
}

// Exec runs the statement with args. The borrowed connection is released
// when the returned result is closed.
func (s *Stmt) Exec(ctx context.Context, args []any) (Result, error) {
	link, st, err := s.bind(ctx)
	if err != nil {
		return nil, err
	}

	res, err := st.Exec(ctx, args)
	if err != nil {
		s.pool.Release(link)
		return nil, err
	}
	return newPooledResult(res, s.pool, link), nil
}

// bind borrows a connection and returns the statement prepared on it,
// preparing and caching it on first use of that connection.
func (s *Stmt) bind(ctx context.Context) (Link, Statement, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, errors.ErrStatementClosed
	}
	s.mu.Unlock()

	link, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.pool.Release(link)
		return nil, nil, errors.ErrStatementClosed
	}
	s.prune()
	st, ok := s.cache[link]
	s.mu.Unlock()
	if ok {
		return link, st, nil
	}

	// Prepare outside the lock; only this caller holds the link.
	st, err = link.Prepare(ctx, s.query)
	if err != nil {
		s.pool.Release(link)
		return nil, nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		st.Close()
		s.pool.Release(link)
		return nil, nil, errors.ErrStatementClosed
	}
	s.cache[link] = st
	s.mu.Unlock()

	log.WithField("cached", true).Debug("statement prepared on connection")
	return link, st, nil
}

// prune drops cached statements whose connection has died.
// The caller must hold s.mu.
func (s *Stmt) prune() {
	for link := range s.cache {
		if !link.IsAlive() {
			delete(s.cache, link)
		}
	}
}

// Close closes every cached prepared statement. Further uses of the
// statement fail with ErrStatementClosed. Close is idempotent.
func (s *Stmt) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	cached := make([]Statement, 0, len(s.cache))
	for _, st := range s.cache {
		cached = append(cached, st)
	}
	s.cache = nil
	s.mu.Unlock()

	var errs []error
	for _, st := range cached {
		if err := st.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
