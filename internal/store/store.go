package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database connection pool and hands out repositories
// that share it. Create one with Open at process start, pass it to the
// services that need it, and Close it on shutdown.
type Store struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// Option tunes the connection pool.
type Option func(*options)

type options struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

// WithPool sets the maximum open and idle connections. It has no effect
// on SQLite, which always uses a single connection.
func WithPool(maxOpen, maxIdle int) Option {
	return func(o *options) {
		if maxOpen > 0 {
			o.maxOpen = maxOpen
		}
		if maxIdle >= 0 {
			o.maxIdle = maxIdle
		}
	}
}

// WithConnMaxLifetime bounds how long a pooled connection is reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *options) { o.maxLifetime = d }
}

// Open connects to dsn and runs auto-migration. A dsn starting with
// postgres:// or postgresql:// selects Postgres; anything else is treated
// as a SQLite path or URI.
func Open(dsn string, opts ...Option) (*Store, error) {
	o := options{maxOpen: 10, maxIdle: 5, maxLifetime: 30 * time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	driverName, dialectName := driverFor(dsn)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ctx := context.Background()
	switch dialectName {
	case dialect.SQLite:
		// SQLite allows one writer and its pragmas are per connection, so
		// the pool is pinned to a single long-lived connection.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	default:
		db.SetMaxOpenConns(o.maxOpen)
		db.SetMaxIdleConns(o.maxIdle)
		db.SetConnMaxLifetime(o.maxLifetime)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
	}

	s := &Store{db: db, dialect: dialectName, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name of the connected database.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// QuizResultRepo returns a QuizResultRepo backed by this store.
func (s *Store) QuizResultRepo() QuizResultRepo {
	return &quizResultRepo{db: s.db, dialect: s.dialect, now: s.now}
}

// ProgressRepo returns a ProgressRepo backed by this store.
func (s *Store) ProgressRepo() ProgressRepo {
	return &progressRepo{db: s.db, dialect: s.dialect, now: s.now}
}

// ActivityRepo returns an ActivityRepo backed by this store.
func (s *Store) ActivityRepo() ActivityRepo {
	return &activityRepo{db: s.db, dialect: s.dialect, now: s.now}
}

// EventRepo returns an EventRepo backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, dialect: s.dialect, now: s.now}
}

func driverFor(dsn string) (driverName, dialectName string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dialect.Postgres
	}
	return "sqlite", dialect.SQLite
}

// applyPragmas configures SQLite for a small multi-reader service.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. LEARNHUB_DB environment variable
// 2. $XDG_DATA_HOME/learnhub/learnhub.db
// 3. ~/.local/share/learnhub/learnhub.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("LEARNHUB_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "learnhub", "learnhub.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of a SQLite path if it doesn't
// exist. DSNs that are not plain file paths are left alone.
func EnsureDir(path string) error {
	if d, _ := driverFor(path); d != "sqlite" || strings.HasPrefix(path, "file:") || path == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
