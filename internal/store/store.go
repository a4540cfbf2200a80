// Package store reads service definitions, availability promises and
// outage records from the DW_DDS warehouse. Access is strictly read-only:
// there is no write path and no schema migration here.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// Driver identifiers accepted in Options.Driver.
const (
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
)

// Options describes the connection target.
type Options struct {
	// Database is the database name; for the sqlite driver it is the file
	// path (":memory:" for an in-memory database, used by tests).
	Database string
	// Driver selects the database/sql driver: "sqlserver" or "sqlite".
	Driver string
	// Server is the host address. Empty means a local server with
	// integrated authentication.
	Server string
	// TrustedConnection enables integrated authentication ("yes"/"no").
	TrustedConnection string
}

// DSN builds the driver-specific connection string. Arguments are never
// interpolated into query text; this is the only place configuration values
// are joined into a string, and it never receives model-supplied input.
func (o Options) DSN() (string, error) {
	switch o.Driver {
	case DriverSQLServer:
		server := o.Server
		if server == "" {
			server = "localhost"
		}
		return fmt.Sprintf("server=%s;database=%s;trusted_connection=%s", server, o.Database, o.TrustedConnection), nil
	case DriverSQLite:
		return o.Database, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", o.Driver)
	}
}

// Store wraps the warehouse database handle.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the warehouse described by opts and verifies the
// connection with a ping. Individual queries acquire and release pooled
// connections independently.
func Open(opts Options) (*Store, error) {
	dsn, err := opts.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if opts.Driver == DriverSQLite {
		// Single connection avoids "database is locked" on concurrent access.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting busy timeout: %w", err)
		}
	}

	return &Store{db: db, dialect: dialect{driver: opts.Driver}}, nil
}

// DB exposes the underlying handle for callers that need to manage
// fixtures, such as tests running against an in-memory database.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// likePattern wraps a service-name filter for case-insensitive substring
// matching. The pattern is always bound as a query parameter.
//
// Case folding beyond ASCII depends on the server: SQL Server collations
// fold accented letters, SQLite's LOWER() does not, so under the sqlite
// driver an accented letter only matches rows stored in the same case.
func likePattern(name string) string {
	return "%" + strings.ToLower(name) + "%"
}

// dialect abstracts the syntax differences between SQL Server and SQLite.
type dialect struct {
	driver string
}

// top returns the SQL Server row-limit prefix, empty for SQLite.
func (d dialect) top(n int) string {
	if d.driver == DriverSQLServer {
		return fmt.Sprintf("TOP %d ", n)
	}
	return ""
}

// limit returns the SQLite row-limit suffix, empty for SQL Server.
func (d dialect) limit(n int) string {
	if d.driver == DriverSQLServer {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", n)
}

// ph returns the positional placeholder for the i-th argument (1-based).
func (d dialect) ph(i int) string {
	if d.driver == DriverSQLServer {
		return fmt.Sprintf("@p%d", i)
	}
	return "?"
}

// dateText renders a DATE column as YYYY-MM-DD text.
func (d dialect) dateText(col string) string {
	if d.driver == DriverSQLServer {
		return fmt.Sprintf("CONVERT(varchar(10), %s, 23)", col)
	}
	return col
}

// timestampText renders a DATETIME column as YYYY-MM-DD hh:mm:ss text.
func (d dialect) timestampText(col string) string {
	if d.driver == DriverSQLServer {
		return fmt.Sprintf("CONVERT(varchar(19), %s, 120)", col)
	}
	return col
}

// versionQuery returns the query used to identify the server.
func (d dialect) versionQuery() string {
	if d.driver == DriverSQLServer {
		return "SELECT @@VERSION"
	}
	return "SELECT 'SQLite ' || sqlite_version()"
}
