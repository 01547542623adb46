package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"convene/internal/store"
)

func (c *Client) CreateEntry(ctx context.Context, in store.EntryInput) (*store.Record, error) {
	return c.appendRecord(ctx, store.ActionCreate, "", in)
}

func (c *Client) UpdateEntry(ctx context.Context, prev string, in store.EntryInput) (*store.Record, error) {
	return c.appendRecord(ctx, store.ActionUpdate, prev, in)
}

func (c *Client) appendRecord(ctx context.Context, action, prev string, in store.EntryInput) (*store.Record, error) {
	now := time.Now().UTC()
	rec := store.Record{
		Hash:      store.HashRecord(in.Author, action, prev, in.Payload, now),
		Author:    in.Author,
		Action:    action,
		Prev:      prev,
		Payload:   in.Payload,
		Signature: in.Signature,
		CreatedAt: now,
	}

	_, err := c.db.ExecContext(ctx, `
	INSERT INTO records (hash, author, action, prev, payload, signature, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Hash, rec.Author, rec.Action, rec.Prev, rec.Payload, rec.Signature,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}
	return &rec, nil
}

func (c *Client) GetRecord(ctx context.Context, hash string) (*store.Record, error) {
	row := c.db.QueryRowContext(ctx, `
	SELECT hash, author, action, prev, payload, signature, created_at
	FROM records WHERE hash = ?`, hash)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return rec, nil
}

func (c *Client) GetDetails(ctx context.Context, hash string) (*store.Details, error) {
	rec, err := c.GetRecord(ctx, hash)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	rows, err := c.db.QueryContext(ctx, `
	SELECT hash FROM records
	WHERE prev = ? AND action = ?
	ORDER BY created_at, hash`, hash, store.ActionUpdate)
	if err != nil {
		return nil, fmt.Errorf("getting update pointers: %w", err)
	}
	defer rows.Close()

	details := store.Details{Record: *rec}
	for rows.Next() {
		var updatedBy string
		if err := rows.Scan(&updatedBy); err != nil {
			return nil, fmt.Errorf("scanning update pointer: %w", err)
		}
		details.UpdatedBy = append(details.UpdatedBy, updatedBy)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating update pointers: %w", err)
	}

	return &details, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*store.Record, error) {
	var rec store.Record
	var createdAt string
	if err := row.Scan(&rec.Hash, &rec.Author, &rec.Action, &rec.Prev, &rec.Payload, &rec.Signature, &createdAt); err != nil {
		return nil, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing record timestamp: %w", err)
	}
	rec.CreatedAt = ts
	return &rec, nil
}
