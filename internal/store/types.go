package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Record is one immutable, content-addressed write. Records are never
// mutated or deleted; an edit is a new record whose Prev points at the
// revision it supersedes.
type Record struct {
	Hash      string
	Author    string
	Action    string
	Prev      string
	Payload   []byte
	Signature string
	CreatedAt time.Time
}

// Details pairs a record with the hashes of records that updated it,
// in creation order.
type Details struct {
	Record    Record
	UpdatedBy []string
}

// Link is a typed, tagged edge between two anchors. An anchor is
// either a record hash or an agent id; the store does not distinguish.
// Links are created and deleted, never updated in place.
type Link struct {
	Hash      string
	Base      string
	Target    string
	Type      string
	Tag       string
	Author    string
	CreatedAt time.Time
}

type EntryInput struct {
	Author    string
	Payload   []byte
	Signature string
}

type LinkInput struct {
	Base   string
	Target string
	Type   string
	Tag    string
	Author string
}

// HashRecord computes the content address of a record from its
// canonical encoding. Both backends must use it so the same write
// yields the same hash everywhere.
func HashRecord(author, action, prev string, payload []byte, createdAt time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%s\x00%s\x00%s",
		author, action, prev, createdAt.UTC().Format(time.RFC3339Nano), payload))
	return hex.EncodeToString(sum[:])
}

// HashLink computes the content address of a link.
func HashLink(base, target, linkType, tag, author string, createdAt time.Time) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s\x00%s\x00%s\x00%s\x00%s\x00%s",
		base, target, linkType, tag, author, createdAt.UTC().Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])
}
