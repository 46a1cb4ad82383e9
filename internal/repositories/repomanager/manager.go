// Package repomanager vends the typed repositories bound to a store gateway
// and runs the embedded goose migrations for the configured SQL dialect.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fieldlog/internal/dbx"
	"github.com/dmitrijs2005/fieldlog/internal/migrations"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/deployments"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/inspections"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/movements"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/tapeevents"
	"github.com/dmitrijs2005/fieldlog/internal/repositories/tapes"
	"github.com/dmitrijs2005/fieldlog/internal/store"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Gateway(db dbx.DBTX) store.Gateway
	Bind(g store.Gateway) Repositories
}

// Repositories is the set of typed repositories over one gateway.
type Repositories struct {
	Deployments deployments.Repository
	Movements   movements.Repository
	Tapes       tapes.Repository
	TapeEvents  tapeevents.Repository
	Inspections inspections.Repository
}

// SQLRepositoryManager builds gateway-backed repositories for SQLite or
// PostgreSQL.
type SQLRepositoryManager struct {
	dialect store.Dialect
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// NewSQLRepositoryManager validates the dialect and returns a manager.
func NewSQLRepositoryManager(dialect store.Dialect) (*SQLRepositoryManager, error) {
	if _, err := gooseDialect(dialect); err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{dialect: dialect}, nil
}

func gooseDialect(d store.Dialect) (string, error) {
	switch d {
	case store.DialectSQLite:
		return "sqlite3", nil
	case store.DialectPostgres:
		return "pgx", nil
	}
	return "", fmt.Errorf("unsupported dialect %q", d)
}

// RunMigrations applies the embedded migrations to db.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	dialect, err := gooseDialect(m.dialect)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Gateway returns a SQL gateway over db (a *sql.DB or a *sql.Tx).
func (m *SQLRepositoryManager) Gateway(db dbx.DBTX) store.Gateway {
	return store.NewSQLGateway(db, m.dialect)
}

// Bind returns the typed repositories over g.
func (m *SQLRepositoryManager) Bind(g store.Gateway) Repositories {
	return Bind(g)
}

// Bind returns the typed repositories over any gateway, including
// store.MemoryGateway.
func Bind(g store.Gateway) Repositories {
	return Repositories{
		Deployments: deployments.NewGatewayRepository(g),
		Movements:   movements.NewGatewayRepository(g),
		Tapes:       tapes.NewGatewayRepository(g),
		TapeEvents:  tapeevents.NewGatewayRepository(g),
		Inspections: inspections.NewGatewayRepository(g),
	}
}
