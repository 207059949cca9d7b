package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/MrJamesThe3rd/cardcycle/internal/config"
)

// Options controls how Open connects. Zero values fall back to defaults.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	PingTimeout     time.Duration
	Migrate         bool
}

func FromConfig(cfg *config.Config) Options {
	return Options{
		DSN:             cfg.ConnectionString(),
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		PingTimeout:     cfg.DB.PingTimeout,
		Migrate:         cfg.DB.Migrate,
	}
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 25
	}

	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 5
	}

	// Idle connections above the open limit would just be closed.
	o.MaxIdleConns = min(o.MaxIdleConns, o.MaxOpenConns)

	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = 5 * time.Minute
	}

	if o.PingTimeout <= 0 {
		o.PingTimeout = 5 * time.Second
	}

	return o
}

// Open connects to Postgres through pgx, sizes the pool and applies pending
// migrations when opts.Migrate is set.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	opts = opts.withDefaults()

	db, err := sql.Open("pgx", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, opts.PingTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if opts.Migrate {
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}
