package driverdb

import (
	"context"
	"database/sql/driver"

	"github.com/go-i2p/dbpool/lib/pool"
	"github.com/mattn/go-sqlite3"
)

// NewSQLite builds a pool connector for a SQLite database file. The
// sqlite3 driver predates driver.Connector, so the DSN is captured in a
// small shim that opens connections on demand.
func NewSQLite(path string) pool.Connector {
	log.WithField("path", path).Debug("sqlite3 connector configured")
	return New(dsnConnector{dsn: path, drv: &sqlite3.SQLiteDriver{}})
}

// dsnConnector adapts a legacy driver.Driver plus DSN to driver.Connector.
type dsnConnector struct {
	dsn string
	drv driver.Driver
}

func (c dsnConnector) Connect(ctx context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.drv
}
