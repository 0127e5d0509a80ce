// Package database opens the sqlx/MySQL pool backing the profile store.
// go-sql-driver/mysql is the driver; MariaDB works unchanged over the MySQL
// wire protocol.
//
// Pool sizing
//   The profile workload is one small upsert per completed signup plus
//   occasional reads from /api/user-profile, so the pool stays deliberately
//   small: 10 open connections is well above the expected concurrent
//   hand-off rate, 5 idle keeps a warm path for bursts, and the 30-minute
//   lifetime stays far under MySQL's default wait_timeout so the server
//   never reaps a connection the pool still considers live.
//
// Both helpers Ping before returning so boot fails fast on a bad DSN.
// Callers own Close().
package database

import (
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const connMaxLifetime = 30 * time.Minute

// Open returns the profile pool with the sizing described above.
func Open(dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(dsn, 10, 5)
}

// OpenWithOptions lets callers tune maxOpen and maxIdle per pool.
func OpenWithOptions(dsn string, maxOpen, maxIdle int) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}
