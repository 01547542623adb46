package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS records (
			hash       TEXT PRIMARY KEY,
			author     TEXT NOT NULL,
			action     TEXT NOT NULL,
			prev       TEXT NOT NULL DEFAULT '',
			payload    BYTEA NOT NULL,
			signature  TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS links (
			hash       TEXT PRIMARY KEY,
			base       TEXT NOT NULL,
			target     TEXT NOT NULL,
			link_type  TEXT NOT NULL,
			tag        TEXT NOT NULL,
			author     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_prev ON records (prev)`,
		`CREATE INDEX IF NOT EXISTS idx_records_author ON records (author)`,
		`CREATE INDEX IF NOT EXISTS idx_links_base_type ON links (base, link_type)`,
		`CREATE INDEX IF NOT EXISTS idx_links_base_type_tag ON links (base, link_type, tag)`,
		`CREATE INDEX IF NOT EXISTS idx_links_author ON links (author)`,
	}

	for _, stmt := range ddl {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	return nil
}
