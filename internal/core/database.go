// AngelaMos | 2026
// database.go

package core

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand/v2"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/mazzlabs/ripcity-dispatch/internal/config"
)

const dbPingTimeout = 5 * time.Second

// DBTX is the repository-facing slice of sqlx, satisfied by both
// *sqlx.DB and *sqlx.Tx.
type DBTX interface {
	sqlx.ExtContext
	sqlx.ExecerContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type Database struct {
	DB *sqlx.DB
}

// NewDatabase opens a pgx-backed sqlx pool and verifies it is
// reachable before handing it out.
func NewDatabase(ctx context.Context, cfg config.DatabaseConfig) (*Database, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	tunePool(db, cfg)

	if err := pingWithTimeout(ctx, db); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on connection failure
		return nil, err
	}

	return &Database{DB: db}, nil
}

func tunePool(db *sqlx.DB, cfg config.DatabaseConfig) {
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Jitter keeps pooled connections from all expiring in the same
	// instant after a deploy.
	//nolint:gosec // G404: jitter is not security sensitive
	jitter := time.Duration(rand.Int64N(int64(cfg.ConnMaxLifetime / 7)))
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime + jitter)
}

func pingWithTimeout(ctx context.Context, db *sqlx.DB) error {
	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}

// Ping reports connection health for the readiness endpoint.
func (d *Database) Ping(ctx context.Context) error {
	return pingWithTimeout(ctx, d.DB)
}

func (d *Database) Stats() sql.DBStats {
	return d.DB.Stats()
}
