package driverdb

import (
	"github.com/go-i2p/dbpool/lib/config"
	"github.com/go-i2p/dbpool/lib/pool"
	"github.com/go-sql-driver/mysql"
)

// NewMySQL builds a pool connector for a MySQL server from the database
// section of the configuration.
func NewMySQL(cfg config.DBConfig) (pool.Connector, error) {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Address
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.DBName = cfg.Database
	if len(cfg.Params) > 0 {
		mc.Params = cfg.Params
	}

	dc, err := mysql.NewConnector(mc)
	if err != nil {
		return nil, err
	}

	log.WithField("addr", cfg.Address).WithField("database", cfg.Database).
		Debug("mysql connector configured")
	return New(dc), nil
}
