package data

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	TableDefault = "customer"
)

var (
	errDBNotInitialized = errors.New("database not initialized")

	// ErrUnsupportedDriver is returned for drivers other than sqlite and postgres.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// Drivers lists the supported database drivers.
var Drivers = []string{DriverSQLite, DriverPostgres}

// GetDB opens a database handle for driver. Sources are only ever read, so
// sqlite files are opened in read-only mode.
func GetDB(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn not specified")
	}

	driver = strings.ToLower(strings.TrimSpace(driver))
	switch driver {
	case DriverSQLite, "sqlite3":
		driver = DriverSQLite
		dsn = sqliteReadOnly(dsn)
	case DriverPostgres, "postgresql", "pg":
		driver = DriverPostgres
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	slog.Debug("opening database", "driver", driver)
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return conn, nil
}

func sqliteReadOnly(dsn string) string {
	if strings.Contains(dsn, "mode=") || dsn == ":memory:" {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&mode=ro"
	}
	return dsn + "?mode=ro"
}
