// Package postgres reads source rows from the plant database and persists
// consolidation output to reporting tables.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/vsinha/lotrecon/pkg/infrastructure/config"
)

type Client struct {
	DB *sql.DB
}

// New opens a connection pool and verifies it with a ping
func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// InTx runs fn in a transaction, rolling back when fn fails
func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// EnsureSchema creates the reporting tables when missing
func (c *Client) EnsureSchema(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, reportSchema); err != nil {
		return fmt.Errorf("creating report schema: %w", err)
	}
	return nil
}

const reportSchema = `
CREATE TABLE IF NOT EXISTS report_consolidated (
	id              SERIAL PRIMARY KEY,
	lot_id          VARCHAR(100) NOT NULL UNIQUE,
	line_no         VARCHAR(50),
	production_date DATE,
	shift_leader    VARCHAR(200),
	payload         JSONB NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS report_flags (
	id       SERIAL PRIMARY KEY,
	position INTEGER NOT NULL,
	lot_id   VARCHAR(100) NOT NULL,
	issue    VARCHAR(64) NOT NULL,
	details  TEXT[] NOT NULL DEFAULT '{}'
);
`
