// Package store defines the append-only, content-addressed substrate
// the invitation engine runs on: immutable records linked into update
// chains, plus typed, tagged edges between records and agents.
//
// The store offers no notion of "current version" and enforces no
// per-agent edge exclusivity; both are reconstructed by the engine on
// every read.
package store

import "context"

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// CreateEntry appends a new creation record and returns it with
	// its content address filled in.
	CreateEntry(ctx context.Context, in EntryInput) (*Record, error)

	// UpdateEntry appends an update record whose back-pointer is prev.
	// The predecessor is not required to exist locally; eventual
	// consistency means it may arrive later.
	UpdateEntry(ctx context.Context, prev string, in EntryInput) (*Record, error)

	// GetRecord returns the record at hash, or nil when absent.
	GetRecord(ctx context.Context, hash string) (*Record, error)

	// GetDetails returns the record at hash together with its forward
	// update pointers, or nil when absent.
	GetDetails(ctx context.Context, hash string) (*Details, error)

	CreateLink(ctx context.Context, in LinkInput) (*Link, error)

	// GetLinks returns links anchored at base with the given type,
	// optionally filtered by tag (empty tag matches any), ordered by
	// creation time then hash.
	GetLinks(ctx context.Context, base, linkType, tag string) ([]Link, error)

	// DeleteLink removes a link by hash. Deleting an absent link is
	// not an error.
	DeleteLink(ctx context.Context, hash string) error
}
