// Package invite implements the invitation lifecycle over the
// append-only substrate: versioned invitation entries, update-chain
// resolution, response edges, and the derived read-model.
//
// All state is reconstructed from records and links on every read;
// nothing here is cached authoritatively.
package invite

import (
	"encoding/json"
	"fmt"
	"time"

	"convene/internal/agent"
	"convene/internal/store"
)

// Link schema. Agent-side links drive per-agent listing; invitation-
// side links carry response status. Response links always anchor on
// the creation hash, never on an update revision.
const (
	LinkAgentToInvitation = "agent_to_invitation"
	LinkInvitationToAgent = "invitation_to_agent"

	TagPending   = "pending"
	TagInviter   = "inviter"
	TagAccepted  = "accepted"
	TagRejected  = "rejected"
	TagCommitted = "committed"
)

// Detail is one key/value pair of invitation details. A slice keeps
// the author's ordering, which a map would lose.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Invitation is the versioned entry body. Every revision carries the
// full body; the substrate links revisions into an update chain.
type Invitation struct {
	Inviter   agent.ID   `json:"inviter"`
	Invitees  []agent.ID `json:"invitees"`
	Location  string     `json:"location,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Details   []Detail   `json:"details,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// Draft carries the caller-supplied fields of a create or update.
type Draft struct {
	Invitees  []agent.ID
	Location  string
	StartTime *time.Time
	EndTime   *time.Time
	Details   []Detail
}

// InviteInfo is the derived read-model: the invitation body resolved
// at its creation handle plus the response partitions reconstructed
// from edges. Committed agents also appear in Accepted, so that
// Accepted, Rejected and Pending always partition the invitee set.
type InviteInfo struct {
	Invitation   Invitation `json:"invitation"`
	CreationHash string     `json:"creation_hash"`
	LatestHash   string     `json:"latest_hash"`
	Accepted     []agent.ID `json:"accepted"`
	Rejected     []agent.ID `json:"rejected"`
	Committed    []agent.ID `json:"committed"`
	Pending      []agent.ID `json:"pending"`
}

// DecodeInvitation parses a record payload into an invitation body.
func DecodeInvitation(payload []byte) (*Invitation, error) {
	var inv Invitation
	if err := json.Unmarshal(payload, &inv); err != nil {
		return nil, fmt.Errorf("%w: decoding payload: %v", ErrMalformed, err)
	}
	return &inv, nil
}

// EventKind classifies a committed substrate write.
type EventKind string

const (
	EventEntryCreated EventKind = "entry_created"
	EventEntryUpdated EventKind = "entry_updated"
	EventLinkCreated  EventKind = "link_created"
	EventLinkDeleted  EventKind = "link_deleted"
)

// WriteEvent describes one committed write. It is handed to the
// post-commit hook after the write is durable; hook failures can
// never affect the write itself.
type WriteEvent struct {
	Kind   EventKind     `json:"kind"`
	Record *store.Record `json:"record,omitempty"`
	Link   *store.Link   `json:"link,omitempty"`
}

// Hook observes committed writes. It must not block and must not
// return errors; anything it does is best-effort.
type Hook func(WriteEvent)
