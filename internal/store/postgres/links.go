package postgres

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

	_, err := c.pool.Exec(ctx, `
	INSERT INTO links (hash, base, target, link_type, tag, author, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		link.Hash, link.Base, link.Target, link.Type, link.Tag, link.Author, link.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting link: %w", err)
	}
	return &link, nil
}

func (c *Client) GetLinks(ctx context.Context, base, linkType, tag string) ([]store.Link, error) {
	rows, err := c.pool.Query(ctx, `
	SELECT hash, base, target, link_type, tag, author, created_at
	FROM links
	WHERE base = $1 AND link_type = $2 AND ($3 = '' OR tag = $3)
	ORDER BY created_at, hash`, base, linkType, tag)
	if err != nil {
		return nil, fmt.Errorf("getting links: %w", err)
	}
	defer rows.Close()

	var links []store.Link
	for rows.Next() {
		var link store.Link
		if err := rows.Scan(&link.Hash, &link.Base, &link.Target, &link.Type, &link.Tag, &link.Author, &link.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning link: %w", err)
		}
		link.CreatedAt = link.CreatedAt.UTC()
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
	if _, err := c.pool.Exec(ctx, `DELETE FROM links WHERE hash = $1`, hash); err != nil {
		return fmt.Errorf("deleting link: %w", err)
	}
	return nil
}
