package pool

import (
	"context"
	"sync"

	"github.com/go-i2p/dbpool/lib/errors"
)

// Query borrows a connection, runs a row-returning statement on it, and
// wraps the result so the connection is released exactly once, when the
// caller closes the result. On failure the connection is released before
// the error is returned.
func (p *Pool) Query(ctx context.Context, query string) (Result, error) {
	link, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	res, err := link.Query(ctx, query)
	if err != nil {
		p.Release(link)
		return nil, err
	}
	return newPooledResult(res, p, link), nil
}

// Exec borrows a connection, runs a parameterized statement on it, and
// wraps the result so the connection is released exactly once, when the
// caller closes the result.
func (p *Pool) Exec(ctx context.Context, query string, args []any) (Result, error) {
	link, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	res, err := link.Exec(ctx, query, args)
	if err != nil {
		p.Release(link)
		return nil, err
	}
	return newPooledResult(res, p, link), nil
}

// Begin borrows a connection and starts a transaction on it. The borrowed
// connection is released exactly once, when the transaction is committed
// or rolled back.
func (p *Pool) Begin(ctx context.Context, level IsolationLevel) (Transaction, error) {
	link, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := link.Begin(ctx, level)
	if err != nil {
		p.Release(link)
		return nil, err
	}
	return newPooledTx(tx, p, link), nil
}

// pooledResult proxies a Result and releases the borrowed connection back
// to the pool exactly once, when the caller closes it.
type pooledResult struct {
	inner   Result
	release func()
	closed  bool
	mu      sync.Mutex
}

func newPooledResult(inner Result, p *Pool, link Link) *pooledResult {
	var once sync.Once
	return &pooledResult{
		inner: inner,
		release: func() {
			once.Do(func() { p.Release(link) })
		},
	}
}

func (r *pooledResult) Columns() []string {
	return r.inner.Columns()
}

func (r *pooledResult) Next(dest []any) error {
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return errors.ErrResultClosed
	}
	return r.inner.Next(dest)
}

func (r *pooledResult) RowsAffected() int64 {
	return r.inner.RowsAffected()
}

func (r *pooledResult) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.inner.Close()
	r.release()
	return err
}

// pooledTx proxies a Transaction and releases the borrowed connection back
// to the pool exactly once, when the transaction concludes.
type pooledTx struct {
	inner   Transaction
	release func()
	done    bool
	mu      sync.Mutex
}

func newPooledTx(inner Transaction, p *Pool, link Link) *pooledTx {
	var once sync.Once
	return &pooledTx{
		inner: inner,
		release: func() {
			once.Do(func() { p.Release(link) })
		},
	}
}

func (t *pooledTx) Query(ctx context.Context, query string) (Result, error) {
	if t.isDone() {
		return nil, errors.ErrTxDone
	}
	return t.inner.Query(ctx, query)
}

func (t *pooledTx) Exec(ctx context.Context, query string, args []any) (Result, error) {
	if t.isDone() {
		return nil, errors.ErrTxDone
	}
	return t.inner.Exec(ctx, query, args)
}

func (t *pooledTx) Commit() error {
	if err := t.conclude(); err != nil {
		return err
	}
	err := t.inner.Commit()
	t.release()
	return err
}

func (t *pooledTx) Rollback() error {
	if err := t.conclude(); err != nil {
		return err
	}
	err := t.inner.Rollback()
	t.release()
	return err
}

func (t *pooledTx) isDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// conclude transitions the transaction to done, once.
func (t *pooledTx) conclude() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return errors.ErrTxDone
	}
	t.done = true
	return nil
}
