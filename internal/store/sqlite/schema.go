package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS records (
		hash       TEXT PRIMARY KEY,
		author     TEXT NOT NULL,
		action     TEXT NOT NULL,
		prev       TEXT NOT NULL DEFAULT '',
		payload    BLOB NOT NULL,
		signature  TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS links (
		hash       TEXT PRIMARY KEY,
		base       TEXT NOT NULL,
		target     TEXT NOT NULL,
		link_type  TEXT NOT NULL,
		tag        TEXT NOT NULL,
		author     TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_prev ON records (prev);
	CREATE INDEX IF NOT EXISTS idx_records_author ON records (author);
	CREATE INDEX IF NOT EXISTS idx_links_base_type ON links (base, link_type);
	CREATE INDEX IF NOT EXISTS idx_links_base_type_tag ON links (base, link_type, tag);
	CREATE INDEX IF NOT EXISTS idx_links_author ON links (author);
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(stripped, ";") {
			statements = append(statements, current.String())
			current.Reset()
		}
	}

	if current.Len() > 0 {
		statements = append(statements, current.String())
	}

	return statements
}
