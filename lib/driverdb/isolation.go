package driverdb

import (
	"database/sql"
	"database/sql/driver"

	"github.com/go-i2p/dbpool/lib/pool"
)

// isolation maps pool isolation levels onto the database/sql numbering
// that drivers expect in TxOptions.
func isolation(level pool.IsolationLevel) driver.IsolationLevel {
	switch level {
	case pool.LevelReadUncommitted:
		return driver.IsolationLevel(sql.LevelReadUncommitted)
	case pool.LevelReadCommitted:
		return driver.IsolationLevel(sql.LevelReadCommitted)
	case pool.LevelRepeatableRead:
		return driver.IsolationLevel(sql.LevelRepeatableRead)
	case pool.LevelSerializable:
		return driver.IsolationLevel(sql.LevelSerializable)
	default:
		return driver.IsolationLevel(sql.LevelDefault)
	}
}
