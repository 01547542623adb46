package invite

import (
	"context"
	"fmt"

	"convene/internal/agent"
)

// Info builds the read-model for the invitation at the given creation
// handle. The body is resolved at the creation revision; callers
// needing the newest body resolve the chain explicitly. Partitions are
// recomputed from edges on every call.
func (e *Engine) Info(ctx context.Context, creation string) (*InviteInfo, error) {
	inv, rec, err := e.readInvitation(ctx, creation)
	if err != nil {
		return nil, fmt.Errorf("aggregating invitation info: %w", err)
	}

	latest, err := e.ResolveLatest(ctx, creation)
	if err != nil {
		return nil, fmt.Errorf("aggregating invitation info: %w", err)
	}

	acceptedSet, err := e.responseSet(ctx, creation, TagAccepted)
	if err != nil {
		return nil, fmt.Errorf("aggregating invitation info: %w", err)
	}
	rejectedSet, err := e.responseSet(ctx, creation, TagRejected)
	if err != nil {
		return nil, fmt.Errorf("aggregating invitation info: %w", err)
	}
	committedSet, err := e.responseSet(ctx, creation, TagCommitted)
	if err != nil {
		return nil, fmt.Errorf("aggregating invitation info: %w", err)
	}

	info := InviteInfo{
		Invitation:   *inv,
		CreationHash: rec.Hash,
		LatestHash:   latest,
		Accepted:     []agent.ID{},
		Rejected:     []agent.ID{},
		Committed:    []agent.ID{},
		Pending:      []agent.ID{},
	}

	// Partitions keep invitee order. Edges from agents outside the
	// invitee list, and duplicate edges from a double submit, are
	// noise: presence is what counts.
	seen := make(map[agent.ID]struct{})
	for _, invitee := range inv.Invitees {
		if _, dup := seen[invitee]; dup {
			continue
		}
		seen[invitee] = struct{}{}

		switch {
		case committedSet[invitee]:
			info.Committed = append(info.Committed, invitee)
			info.Accepted = append(info.Accepted, invitee)
		case acceptedSet[invitee]:
			info.Accepted = append(info.Accepted, invitee)
		case rejectedSet[invitee]:
			info.Rejected = append(info.Rejected, invitee)
		default:
			info.Pending = append(info.Pending, invitee)
		}
	}

	return &info, nil
}

// InfoForUpdate builds the read-model when only an update-chain
// revision is known, e.g. from a post-commit event.
func (e *Engine) InfoForUpdate(ctx context.Context, handle string) (*InviteInfo, error) {
	creation, err := e.ResolveCreation(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("aggregating invitation info: %w", err)
	}
	return e.Info(ctx, creation)
}

// ListForAgent resolves every invitation the agent has an agent-side
// edge for, optionally filtered by tag. No matching edges yields an
// empty slice, not an error.
func (e *Engine) ListForAgent(ctx context.Context, id agent.ID, tag string) ([]InviteInfo, error) {
	links, err := e.store.GetLinks(ctx, id.String(), LinkAgentToInvitation, tag)
	if err != nil {
		return nil, fmt.Errorf("listing invitations: %w", storeErr(err))
	}

	infos := []InviteInfo{}
	resolved := make(map[string]struct{})
	for _, link := range links {
		if _, done := resolved[link.Target]; done {
			continue
		}
		resolved[link.Target] = struct{}{}

		info, err := e.Info(ctx, link.Target)
		if err != nil {
			return nil, fmt.Errorf("listing invitations: %w", err)
		}
		infos = append(infos, *info)
	}
	return infos, nil
}

// Pending lists the caller's pending invitations.
func (e *Engine) Pending(ctx context.Context) ([]InviteInfo, error) {
	return e.ListForAgent(ctx, e.Self(), TagPending)
}

func (e *Engine) responseSet(ctx context.Context, creation, tag string) (map[agent.ID]bool, error) {
	links, err := e.store.GetLinks(ctx, creation, LinkInvitationToAgent, tag)
	if err != nil {
		return nil, fmt.Errorf("getting %s edges: %w", tag, storeErr(err))
	}
	set := make(map[agent.ID]bool, len(links))
	for _, link := range links {
		set[agent.ID(link.Target)] = true
	}
	return set, nil
}
