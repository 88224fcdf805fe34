// Package driverdb adapts database/sql/driver based drivers to the pool's
// capability interfaces. Any driver.Connector becomes a pool.Connector and
// every connection it produces becomes a pool.Link, so the pool can manage
// third-party drivers (MySQL, SQLite) without knowing their wire protocols.
package driverdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-i2p/dbpool/lib/config"
	"github.com/go-i2p/dbpool/lib/pool"
)

// Connector adapts a driver.Connector to pool.Connector.
type Connector struct {
	dc driver.Connector
}

// New wraps a driver.Connector for use with the pool.
func New(dc driver.Connector) *Connector {
	return &Connector{dc: dc}
}

// FromConfig builds a connector for the driver named in the configuration.
func FromConfig(cfg config.DBConfig) (pool.Connector, error) {
	switch cfg.Driver {
	case "mysql":
		return NewMySQL(cfg)
	case "sqlite3":
		return NewSQLite(cfg.Database), nil
	default:
		return nil, fmt.Errorf("driverdb: unknown driver %q", cfg.Driver)
	}
}

// Connect implements pool.Connector.
func (c *Connector) Connect(ctx context.Context) (pool.Link, error) {
	conn, err := c.dc.Connect(ctx)
	if err != nil {
		return nil, err
	}
	log.Debug("driver connection established")
	return &link{conn: conn, lastUsed: time.Now()}, nil
}

// link adapts a driver.Conn to pool.Link. The adapter tracks the last-used
// timestamp itself since driver connections do not expose one.
type link struct {
	conn driver.Conn

	mu       sync.Mutex
	closed   bool
	lastUsed time.Time
}

func (l *link) touch() {
	l.mu.Lock()
	l.lastUsed = time.Now()
	l.mu.Unlock()
}

// Query implements pool.Link.
func (l *link) Query(ctx context.Context, query string) (pool.Result, error) {
	l.touch()

	if q, ok := l.conn.(driver.QueryerContext); ok {
		rows, err := q.QueryContext(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return &rowsResult{rows: rows}, nil
	}

	// Drivers without a queryer run through a one-shot prepared statement.
	stmt, err := l.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	rows, err := stmtQuery(ctx, stmt, nil)
	if err != nil {
		stmt.Close()
		return nil, err
	}
	return &rowsResult{rows: rows, stmt: stmt}, nil
}

// Exec implements pool.Link.
func (l *link) Exec(ctx context.Context, query string, args []any) (pool.Result, error) {
	l.touch()

	if e, ok := l.conn.(driver.ExecerContext); ok {
		res, err := e.ExecContext(ctx, query, namedValues(args))
		if err != nil {
			return nil, err
		}
		return newExecResult(res), nil
	}

	stmt, err := l.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	res, err := stmtExec(ctx, stmt, args)
	if err != nil {
		return nil, err
	}
	return newExecResult(res), nil
}

// Prepare implements pool.Link.
func (l *link) Prepare(ctx context.Context, query string) (pool.Statement, error) {
	l.touch()

	stmt, err := l.prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return &statement{link: l, stmt: stmt}, nil
}

func (l *link) prepare(ctx context.Context, query string) (driver.Stmt, error) {
	if p, ok := l.conn.(driver.ConnPrepareContext); ok {
		return p.PrepareContext(ctx, query)
	}
	return l.conn.Prepare(query)
}

// Begin implements pool.Link.
func (l *link) Begin(ctx context.Context, level pool.IsolationLevel) (pool.Transaction, error) {
	l.touch()

	var dtx driver.Tx
	var err error
	if b, ok := l.conn.(driver.ConnBeginTx); ok {
		dtx, err = b.BeginTx(ctx, driver.TxOptions{Isolation: isolation(level)})
	} else {
		dtx, err = l.conn.Begin() //nolint:staticcheck // fallback for legacy drivers
	}
	if err != nil {
		return nil, err
	}
	return &tx{link: l, tx: dtx}, nil
}

// Close implements pool.Link. It is safe to call more than once.
func (l *link) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	log.Debug("driver connection closed")
	return l.conn.Close()
}

// IsAlive implements pool.Link, consulting driver.Validator when available.
func (l *link) IsAlive() bool {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return false
	}
	if v, ok := l.conn.(driver.Validator); ok {
		return v.IsValid()
	}
	return true
}

// LastUsedAt implements pool.Link.
func (l *link) LastUsedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastUsed
}

// statement adapts a driver.Stmt to pool.Statement.
type statement struct {
	link *link
	stmt driver.Stmt
}

func (s *statement) Query(ctx context.Context, args []any) (pool.Result, error) {
	s.link.touch()
	rows, err := stmtQuery(ctx, s.stmt, args)
	if err != nil {
		return nil, err
	}
	return &rowsResult{rows: rows}, nil
}

func (s *statement) Exec(ctx context.Context, args []any) (pool.Result, error) {
	s.link.touch()
	res, err := stmtExec(ctx, s.stmt, args)
	if err != nil {
		return nil, err
	}
	return newExecResult(res), nil
}

func (s *statement) Close() error {
	return s.stmt.Close()
}

// tx adapts a driver.Tx to pool.Transaction. Statements inside the
// transaction run on the same underlying connection.
type tx struct {
	link *link
	tx   driver.Tx
}

func (t *tx) Query(ctx context.Context, query string) (pool.Result, error) {
	return t.link.Query(ctx, query)
}

func (t *tx) Exec(ctx context.Context, query string, args []any) (pool.Result, error) {
	return t.link.Exec(ctx, query, args)
}

func (t *tx) Commit() error {
	return t.tx.Commit()
}

func (t *tx) Rollback() error {
	return t.tx.Rollback()
}

// rowsResult adapts driver.Rows to pool.Result. If the rows came from a
// one-shot prepared statement, the statement is closed with them.
type rowsResult struct {
	rows driver.Rows
	stmt driver.Stmt

	mu     sync.Mutex
	closed bool
	buf    []driver.Value
}

func (r *rowsResult) Columns() []string {
	return r.rows.Columns()
}

func (r *rowsResult) Next(dest []any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return io.EOF
	}
	if r.buf == nil {
		r.buf = make([]driver.Value, len(r.rows.Columns()))
	}
	if err := r.rows.Next(r.buf); err != nil {
		return err
	}
	for i := range r.buf {
		if i < len(dest) {
			dest[i] = r.buf[i]
		}
	}
	return nil
}

func (r *rowsResult) RowsAffected() int64 { return 0 }

func (r *rowsResult) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.rows.Close()
	if r.stmt != nil {
		if serr := r.stmt.Close(); err == nil {
			err = serr
		}
	}
	return err
}

// execResult adapts driver.Result to pool.Result.
type execResult struct {
	affected int64
}

func newExecResult(res driver.Result) *execResult {
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	return &execResult{affected: affected}
}

func (r *execResult) Columns() []string     { return nil }
func (r *execResult) Next(dest []any) error { return io.EOF }
func (r *execResult) RowsAffected() int64   { return r.affected }
func (r *execResult) Close() error          { return nil }

// stmtQuery runs a prepared statement query through the context-aware
// interface when the driver offers it.
func stmtQuery(ctx context.Context, stmt driver.Stmt, args []any) (driver.Rows, error) {
	if q, ok := stmt.(driver.StmtQueryContext); ok {
		return q.QueryContext(ctx, namedValues(args))
	}
	return stmt.Query(values(args)) //nolint:staticcheck // fallback for legacy drivers
}

// stmtExec runs a prepared statement execution through the context-aware
// interface when the driver offers it.
func stmtExec(ctx context.Context, stmt driver.Stmt, args []any) (driver.Result, error) {
	if e, ok := stmt.(driver.StmtExecContext); ok {
		return e.ExecContext(ctx, namedValues(args))
	}
	return stmt.Exec(values(args)) //nolint:staticcheck // fallback for legacy drivers
}

func namedValues(args []any) []driver.NamedValue {
	nv := make([]driver.NamedValue, len(args))
	for i, a := range args {
		nv[i] = driver.NamedValue{Ordinal: i + 1, Value: a}
	}
	return nv
}

func values(args []any) []driver.Value {
	vs := make([]driver.Value, len(args))
	for i, a := range args {
		vs[i] = a
	}
	return vs
}
