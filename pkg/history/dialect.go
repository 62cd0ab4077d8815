package history

import (
	"fmt"
	"strconv"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const tableName = "knapsack_runs"

// Dialect encapsulates the engine-specific parts of the SQL store.
type Dialect interface {
	// DriverName returns the database/sql driver name.
	DriverName() string
	// CheckDSN rejects connection strings the driver cannot use.
	CheckDSN(dsn string) error
	// Placeholder returns the parameter placeholder for the n-th parameter (1-based).
	Placeholder(n int) string
	// QuoteIdentifier wraps a table or column name in dialect-specific quoting.
	QuoteIdentifier(name string) string
	// CreateTableSQL returns the DDL for the runs table.
	CreateTableSQL() string
}

// DialectFor returns the dialect for a backend name.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case "sqlite":
		return SQLiteDialect{}, nil
	case "mysql":
		return MySQLDialect{}, nil
	case "postgres":
		return PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("history: no SQL dialect for %q", backend)
	}
}

// SQLiteDialect targets modernc.org/sqlite.
type SQLiteDialect struct{}

func (SQLiteDialect) DriverName() string { return "sqlite" }

func (SQLiteDialect) CheckDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("history: sqlite dsn is empty")
	}
	return nil
}

func (SQLiteDialect) Placeholder(n int) string { return "?" }

func (SQLiteDialect) QuoteIdentifier(name string) string { return `"` + name + `"` }

func (d SQLiteDialect) CreateTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS ` + d.QuoteIdentifier(tableName) + ` (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	best_fitness REAL NOT NULL,
	feasible INTEGER NOT NULL,
	payload TEXT NOT NULL
)`
}

// MySQLDialect targets github.com/go-sql-driver/mysql.
type MySQLDialect struct{}

func (MySQLDialect) DriverName() string { return "mysql" }

func (MySQLDialect) CheckDSN(dsn string) error {
	if _, err := mysqldriver.ParseDSN(dsn); err != nil {
		return fmt.Errorf("history: invalid mysql dsn: %w", err)
	}
	return nil
}

func (MySQLDialect) Placeholder(n int) string { return "?" }

func (MySQLDialect) QuoteIdentifier(name string) string { return "`" + name + "`" }

func (d MySQLDialect) CreateTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS ` + d.QuoteIdentifier(tableName) + ` (
	id VARCHAR(36) PRIMARY KEY,
	created_at BIGINT NOT NULL,
	best_fitness DOUBLE NOT NULL,
	feasible TINYINT NOT NULL,
	payload TEXT NOT NULL
)`
}

// PostgresDialect targets github.com/lib/pq.
type PostgresDialect struct{}

func (PostgresDialect) DriverName() string { return "postgres" }

func (PostgresDialect) CheckDSN(dsn string) error {
	if dsn == "" {
		return fmt.Errorf("history: postgres dsn is empty")
	}
	if _, err := pq.NewConnector(dsn); err != nil {
		return fmt.Errorf("history: invalid postgres dsn: %w", err)
	}
	return nil
}

func (PostgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (PostgresDialect) QuoteIdentifier(name string) string { return pq.QuoteIdentifier(name) }

func (d PostgresDialect) CreateTableSQL() string {
	return `CREATE TABLE IF NOT EXISTS ` + d.QuoteIdentifier(tableName) + ` (
	id VARCHAR(36) PRIMARY KEY,
	created_at BIGINT NOT NULL,
	best_fitness DOUBLE PRECISION NOT NULL,
	feasible SMALLINT NOT NULL,
	payload TEXT NOT NULL
)`
}
