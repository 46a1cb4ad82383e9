// Package db opens the store configured for the server: a SQLite file
// guarded by a lock file, a PostgreSQL database, or an in-memory gateway.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fieldlog/internal/repositories/repomanager"
	"github.com/dmitrijs2005/fieldlog/internal/server/config"
	"github.com/dmitrijs2005/fieldlog/internal/store"
	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the SQLite lock file.
var ErrLocked = errors.New("database is locked by another process")

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

// Store is an opened backing store.
type Store struct {
	// DB is nil for the memory driver.
	DB      *sql.DB
	Manager repomanager.RepositoryManager
	Gateway store.Gateway

	lock *flock.Flock
}

// Repositories binds the typed repositories to the store gateway.
func (s *Store) Repositories() repomanager.Repositories {
	return repomanager.Bind(s.Gateway)
}

// Migrate applies the embedded migrations. It is a no-op for the memory
// driver.
func (s *Store) Migrate(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	if err := s.Manager.RunMigrations(ctx, s.DB); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

// Close releases the connection and the lock file.
func (s *Store) Close() error {
	var errs []error
	if s.DB != nil {
		errs = append(errs, s.DB.Close())
	}
	if s.lock != nil {
		errs = append(errs, s.lock.Unlock())
	}
	return errors.Join(errs...)
}

// Open connects to the store named by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		return &Store{Gateway: store.NewMemoryGateway()}, nil
	case config.DriverPostgres:
		return openPostgres(ctx, cfg.DatabaseDSN)
	case config.DriverSQLite, "":
		return openSQLite(ctx, cfg.DatabaseDSN)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	m, err := repomanager.NewSQLRepositoryManager(store.DialectPostgres)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	return &Store{DB: db, Manager: m, Gateway: m.Gateway(db)}, nil
}

func openSQLite(ctx context.Context, path string) (*Store, error) {
	m, err := repomanager.NewSQLRepositoryManager(store.DialectSQLite)
	if err != nil {
		return nil, err
	}

	var lock *flock.Flock
	if path != ":memory:" {
		lock = flock.New(path + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
	}

	s, err := connectSQLite(ctx, path)
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, err
	}

	return &Store{DB: s, Manager: m, Gateway: m.Gateway(s), lock: lock}, nil
}

func connectSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force.
	db.SetMaxOpenConns(1)

	for _, pragma := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	return db, nil
}
