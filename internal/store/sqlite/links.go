package sqlite

import (
	"context"
	"fmt"
	"time"

	"convene/internal/store"
)

func (c *Client) CreateLink(ctx context.Context, in store.LinkInput) (*store.Link, error) {
	now := time.Now().UTC()
	link := store.Link{
		Hash:      store.HashLink(in.Base, in.Target, in.Type, in.Tag, in.Author, now),
		Base:      in.Base,
		Target:    in.Target,
		Type:      in.Type,
		Tag:       in.Tag,
		Author:    in.Author,
		CreatedAt: now,
	}

	_, err := c.db.ExecContext(ctx, `
	INSERT INTO links (hash, base, target, link_type, tag, author, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		link.Hash, link.Base, link.Target, link.Type, link.Tag, link.Author,
		link.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting link: %w", err)
	}
	return &link, nil
}

func (c *Client) GetLinks(ctx context.Context, base, linkType, tag string) ([]store.Link, error) {
	rows, err := c.db.QueryContext(ctx, `
	SELECT hash, base, target, link_type, tag, author, created_at
	FROM links
	WHERE base = ? AND link_type = ? AND (? = '' OR tag = ?)
	ORDER BY created_at, hash`, base, linkType, tag, tag)
	if err != nil {
		return nil, fmt.Errorf("getting links: %w", err)
	}
	defer rows.Close()

	var links []store.Link
	for rows.Next() {
		var link store.Link
		var createdAt string
		if err := rows.Scan(&link.Hash, &link.Base, &link.Target, &link.Type, &link.Tag, &link.Author, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing link timestamp: %w", err)
		}
		link.CreatedAt = ts
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating links: %w", err)
	}

	if links == nil {
		links = []store.Link{}
	}
	return links, nil
}

func (c *Client) DeleteLink(ctx context.Context, hash string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM links WHERE hash = ?`, hash); err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	return nil
}
