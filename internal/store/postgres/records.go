package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

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

	_, err := c.pool.Exec(ctx, `
	INSERT INTO records (hash, author, action, prev, payload, signature, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.Hash, rec.Author, rec.Action, rec.Prev, rec.Payload, rec.Signature, rec.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting record: %w", err)
	}
	return &rec, nil
}

func (c *Client) GetRecord(ctx context.Context, hash string) (*store.Record, error) {
	var rec store.Record
	err := c.pool.QueryRow(ctx, `
	SELECT hash, author, action, prev, payload, signature, created_at
	FROM records WHERE hash = $1`, hash).Scan(
		&rec.Hash, &rec.Author, &rec.Action, &rec.Prev, &rec.Payload, &rec.Signature, &rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

func (c *Client) GetDetails(ctx context.Context, hash string) (*store.Details, error) {
	rec, err := c.GetRecord(ctx, hash)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	rows, err := c.pool.Query(ctx, `
	SELECT hash FROM records
	WHERE prev = $1 AND action = $2
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
