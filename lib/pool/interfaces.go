package pool

import (
	"context"
	"time"
)

// IsolationLevel selects the isolation level for a new transaction.
// The zero value defers to the database's default.
type IsolationLevel int

// Transaction isolation levels.
const (
	LevelDefault IsolationLevel = iota
	LevelReadUncommitted
	LevelReadCommitted
	LevelRepeatableRead
	LevelSerializable
)

// String returns the SQL spelling of the isolation level.
func (l IsolationLevel) String() string {
	switch l {
	case LevelReadUncommitted:
		return "READ UNCOMMITTED"
	case LevelReadCommitted:
		return "READ COMMITTED"
	case LevelRepeatableRead:
		return "REPEATABLE READ"
	case LevelSerializable:
		return "SERIALIZABLE"
	default:
		return "DEFAULT"
	}
}

// Link is one live database connection. Links are owned exclusively by the
// pool once created; callers hold a borrow, never ownership. A Link updates
// its own last-used timestamp as operations run on it.
type Link interface {
	// Query runs a row-returning statement.
	Query(ctx context.Context, query string) (Result, error)
	// Exec runs a statement with parameters.
	Exec(ctx context.Context, query string, args []any) (Result, error)
	// Prepare creates a prepared statement bound to this connection.
	Prepare(ctx context.Context, query string) (Statement, error)
	// Begin starts a transaction on this connection.
	Begin(ctx context.Context, level IsolationLevel) (Transaction, error)
	// Close tears down the connection.
	Close() error
	// IsAlive reports whether the connection is still usable.
	IsAlive() bool
	// LastUsedAt reports when the connection last ran an operation.
	LastUsedAt() time.Time
}

// Connector produces one live Link or fails. Implementations are supplied
// by the embedding driver or injected by the caller.
type Connector interface {
	Connect(ctx context.Context) (Link, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Link, error)

// Connect implements Connector.
func (f ConnectorFunc) Connect(ctx context.Context) (Link, error) {
	return f(ctx)
}

// Result is the outcome of a query or execution. Row-returning operations
// stream rows through Next; others report an affected-row count. Close must
// be called when the caller is done; for pooled results it returns the
// borrowed connection.
type Result interface {
	// Columns returns the column names, empty for row-less results.
	Columns() []string
	// Next reads the next row into dest. It returns io.EOF when the
	// result set is exhausted.
	Next(dest []any) error
	// RowsAffected returns the number of rows changed by an execution.
	RowsAffected() int64
	// Close releases resources held by the result.
	Close() error
}

// Statement is a prepared statement bound to a single connection.
type Statement interface {
	Query(ctx context.Context, args []any) (Result, error)
	Exec(ctx context.Context, args []any) (Result, error)
	Close() error
}

// Transaction is an open transaction bound to a single connection. Exactly
// one of Commit or Rollback concludes it.
type Transaction interface {
	Query(ctx context.Context, query string) (Result, error)
	Exec(ctx context.Context, query string, args []any) (Result, error)
	Commit() error
	Rollback() error
}
