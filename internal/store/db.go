package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver "pgx"
	_ "github.com/mattn/go-sqlite3"    // SQLite driver "sqlite3"
)

// ErrConnection marks failures to reach or authenticate against the store.
var ErrConnection = errors.New("store connection failed")

// Dialects understood by Open.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

const (
	defaultConnectTimeout = 5 * time.Second
	sqliteBusyTimeoutMS   = 5000
	dirPermissions        = 0o750
)

// Config addresses the store.
type Config struct {
	Dialect        string
	DSN            string // postgres connection string or sqlite file path
	ConnectTimeout time.Duration
}

// DB is the single, long-lived store handle shared by every operation.
type DB struct {
	Client  *sql.DB
	dialect string
}

// Open connects to the store with exactly one underlying connection and
// verifies it with a ping.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	driver, dsn, err := driverFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrConnection, cfg.Dialect, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return &DB{Client: db, dialect: cfg.Dialect}, nil
}

func driverFor(cfg Config) (driver, dsn string, err error) {
	switch cfg.Dialect {
	case Postgres:
		return "pgx", cfg.DSN, nil
	case SQLite:
		dsn, err := sqliteDSN(cfg.DSN)
		return "sqlite3", dsn, err
	default:
		return "", "", fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}
}

// sqliteDSN accepts a plain file path or a file: URI. Paths get their parent
// directory created; URIs are passed through with a busy timeout added when
// they do not set one.
func sqliteDSN(dsn string) (string, error) {
	busy := "_busy_timeout=" + strconv.Itoa(sqliteBusyTimeoutMS)

	if strings.HasPrefix(dsn, "file:") {
		if strings.Contains(dsn, "_busy_timeout=") {
			return dsn, nil
		}
		if strings.Contains(dsn, "?") {
			return dsn + "&" + busy, nil
		}
		return dsn + "?" + busy, nil
	}
	if strings.Contains(dsn, "://") {
		return "", fmt.Errorf("sqlite DSN %q is neither a file path nor a file: URI", dsn)
	}

	if dir := filepath.Dir(dsn); dir != "." && dsn != ":memory:" {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
	}
	return "file:" + dsn + "?" + busy, nil
}

// Dialect reports which engine the handle talks to.
func (d *DB) Dialect() string { return d.dialect }

// Rebind rewrites ? placeholders into the $n form Postgres expects.
// Queries must not contain literal question marks.
func (d *DB) Rebind(query string) string {
	if d.dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HealthCheck runs a trivial query over the shared connection.
func (d *DB) HealthCheck(ctx context.Context) error {
	var one int
	if err := d.Client.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
