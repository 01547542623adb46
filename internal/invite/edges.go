package invite

import (
	"context"
	"fmt"

	"convene/internal/agent"
	"convene/internal/store"
)

// seedEdges creates the inviter edge for the author and one pending
// edge per invitee, all anchored on the creation hash. A duplicate
// invitee gets a single edge.
func (e *Engine) seedEdges(ctx context.Context, creation string, invitees []agent.ID) error {
	if err := e.createAgentEdge(ctx, e.Self(), creation, TagInviter); err != nil {
		return err
	}
	seeded := make(map[agent.ID]struct{}, len(invitees))
	for _, invitee := range invitees {
		if _, done := seeded[invitee]; done {
			continue
		}
		seeded[invitee] = struct{}{}
		if err := e.createAgentEdge(ctx, invitee, creation, TagPending); err != nil {
			return err
		}
	}
	return nil
}

// seedMissingPending creates pending edges for invitees an update
// added to the list. Existing invitees keep whatever edges they have.
func (e *Engine) seedMissingPending(ctx context.Context, rec *store.Record, before, after []agent.ID) error {
	creation, err := e.ResolveCreation(ctx, rec.Hash)
	if err != nil {
		return err
	}
	seeded := make(map[agent.ID]struct{}, len(after))
	for _, invitee := range after {
		if _, done := seeded[invitee]; done {
			continue
		}
		seeded[invitee] = struct{}{}
		if agent.Contains(before, invitee) {
			continue
		}
		if err := e.createAgentEdge(ctx, invitee, creation, TagPending); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) createAgentEdge(ctx context.Context, id agent.ID, creation, tag string) error {
	link, err := e.store.CreateLink(ctx, store.LinkInput{
		Base:   id.String(),
		Target: creation,
		Type:   LinkAgentToInvitation,
		Tag:    tag,
		Author: e.Self().String(),
	})
	if err != nil {
		return fmt.Errorf("creating %s edge: %w", tag, storeErr(err))
	}
	e.emit(WriteEvent{Kind: EventLinkCreated, Link: link})
	return nil
}

// Accept records the caller's acceptance of the invitation at the
// given creation handle.
func (e *Engine) Accept(ctx context.Context, creation string) (*store.Link, error) {
	return e.recordResponse(ctx, creation, TagAccepted, TagRejected)
}

// Reject records the caller's rejection.
func (e *Engine) Reject(ctx context.Context, creation string) (*store.Link, error) {
	return e.recordResponse(ctx, creation, TagRejected, TagAccepted)
}

// recordResponse applies the status migration policy: every edge of
// the caller carrying a superseded tag is deleted, then the new status
// edge is created. The two steps are separate substrate calls with no
// cross-call atomicity; the aggregator tolerates the noise a race can
// leave behind.
func (e *Engine) recordResponse(ctx context.Context, creation, tag, superseded string) (*store.Link, error) {
	// The invitee check runs against the latest revision so agents
	// added by an update can respond.
	inv, _, err := e.Latest(ctx, creation)
	if err != nil {
		return nil, fmt.Errorf("recording response: %w", err)
	}
	if !agent.Contains(inv.Invitees, e.Self()) {
		return nil, ErrNotInvited
	}

	if err := e.deletePendingEdges(ctx, creation); err != nil {
		return nil, fmt.Errorf("recording response: %w", err)
	}
	if err := e.deleteResponseEdges(ctx, creation, superseded); err != nil {
		return nil, fmt.Errorf("recording response: %w", err)
	}

	link, err := e.createResponseEdge(ctx, creation, tag)
	if err != nil {
		return nil, fmt.Errorf("recording response: %w", err)
	}
	return link, nil
}

// Commit confirms a prior acceptance, migrating the accepted edge to
// committed. No notification is derived from commits.
func (e *Engine) Commit(ctx context.Context, creation string) (*store.Link, error) {
	accepted, err := e.responseEdges(ctx, creation, TagAccepted)
	if err != nil {
		return nil, fmt.Errorf("committing response: %w", err)
	}
	if len(accepted) == 0 {
		return nil, ErrNotAccepted
	}

	if err := e.deleteResponseEdges(ctx, creation, TagAccepted); err != nil {
		return nil, fmt.Errorf("committing response: %w", err)
	}

	link, err := e.createResponseEdge(ctx, creation, TagCommitted)
	if err != nil {
		return nil, fmt.Errorf("committing response: %w", err)
	}
	return link, nil
}

// Clear deletes every agent-side edge of the caller for this
// invitation, whatever the tag. Other agents' edges and the
// invitation itself are untouched.
func (e *Engine) Clear(ctx context.Context, creation string) error {
	links, err := e.store.GetLinks(ctx, e.Self().String(), LinkAgentToInvitation, "")
	if err != nil {
		return fmt.Errorf("clearing invitation: %w", storeErr(err))
	}
	for _, link := range links {
		if link.Target != creation {
			continue
		}
		if err := e.deleteEdge(ctx, link); err != nil {
			return fmt.Errorf("clearing invitation: %w", err)
		}
	}
	return nil
}

func (e *Engine) createResponseEdge(ctx context.Context, creation, tag string) (*store.Link, error) {
	link, err := e.store.CreateLink(ctx, store.LinkInput{
		Base:   creation,
		Target: e.Self().String(),
		Type:   LinkInvitationToAgent,
		Tag:    tag,
		Author: e.Self().String(),
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s edge: %w", tag, storeErr(err))
	}
	e.emit(WriteEvent{Kind: EventLinkCreated, Link: link})
	return link, nil
}

// responseEdges returns the caller's invitation-side edges with tag.
func (e *Engine) responseEdges(ctx context.Context, creation, tag string) ([]store.Link, error) {
	links, err := e.store.GetLinks(ctx, creation, LinkInvitationToAgent, tag)
	if err != nil {
		return nil, fmt.Errorf("getting %s edges: %w", tag, storeErr(err))
	}
	mine := links[:0:0]
	for _, link := range links {
		if link.Target == e.Self().String() {
			mine = append(mine, link)
		}
	}
	return mine, nil
}

func (e *Engine) deletePendingEdges(ctx context.Context, creation string) error {
	links, err := e.store.GetLinks(ctx, e.Self().String(), LinkAgentToInvitation, TagPending)
	if err != nil {
		return fmt.Errorf("getting pending edges: %w", storeErr(err))
	}
	for _, link := range links {
		if link.Target != creation {
			continue
		}
		if err := e.deleteEdge(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) deleteResponseEdges(ctx context.Context, creation, tag string) error {
	mine, err := e.responseEdges(ctx, creation, tag)
	if err != nil {
		return err
	}
	for _, link := range mine {
		if err := e.deleteEdge(ctx, link); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) deleteEdge(ctx context.Context, link store.Link) error {
	if err := e.store.DeleteLink(ctx, link.Hash); err != nil {
		return fmt.Errorf("deleting %s edge: %w", link.Tag, storeErr(err))
	}
	deleted := link
	e.emit(WriteEvent{Kind: EventLinkDeleted, Link: &deleted})
	return nil
}
