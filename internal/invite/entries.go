package invite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"convene/internal/store"
)

// Create writes the creation revision, seeds the inviter and pending
// edges, and returns the fresh read-model.
func (e *Engine) Create(ctx context.Context, draft Draft) (*InviteInfo, error) {
	inv := Invitation{
		Inviter:   e.Self(),
		Invitees:  draft.Invitees,
		Location:  draft.Location,
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		Details:   draft.Details,
		Timestamp: time.Now().UTC(),
	}

	rec, err := e.appendEntry(ctx, "", inv)
	if err != nil {
		return nil, fmt.Errorf("creating invitation: %w", err)
	}
	e.emit(WriteEvent{Kind: EventEntryCreated, Record: rec})

	if err := e.seedEdges(ctx, rec.Hash, inv.Invitees); err != nil {
		return nil, fmt.Errorf("creating invitation: %w", err)
	}

	return e.Info(ctx, rec.Hash)
}

// Update appends a new revision to the chain that handle belongs to.
// Only the original author may update; the body is replaced wholesale,
// inviter excepted.
func (e *Engine) Update(ctx context.Context, handle string, draft Draft) (*store.Record, error) {
	latest, err := e.ResolveLatest(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("updating invitation: %w", err)
	}

	prev, _, err := e.readInvitation(ctx, latest)
	if err != nil {
		return nil, fmt.Errorf("updating invitation: %w", err)
	}
	if prev.Inviter != e.Self() {
		return nil, ErrUnauthorized
	}

	inv := Invitation{
		Inviter:   prev.Inviter,
		Invitees:  draft.Invitees,
		Location:  draft.Location,
		StartTime: draft.StartTime,
		EndTime:   draft.EndTime,
		Details:   draft.Details,
		Timestamp: time.Now().UTC(),
	}

	rec, err := e.appendEntry(ctx, latest, inv)
	if err != nil {
		return nil, fmt.Errorf("updating invitation: %w", err)
	}
	e.emit(WriteEvent{Kind: EventEntryUpdated, Record: rec})

	// Invitees added by this revision have no pending edge yet; seed
	// them so the invitation shows up in their lists.
	if err := e.seedMissingPending(ctx, rec, prev.Invitees, inv.Invitees); err != nil {
		return nil, fmt.Errorf("updating invitation: %w", err)
	}

	return rec, nil
}

func (e *Engine) appendEntry(ctx context.Context, prev string, inv Invitation) (*store.Record, error) {
	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	in := store.EntryInput{
		Author:    e.Self().String(),
		Payload:   payload,
		Signature: e.keys.Sign(payload),
	}
	var rec *store.Record
	if prev == "" {
		rec, err = e.store.CreateEntry(ctx, in)
	} else {
		rec, err = e.store.UpdateEntry(ctx, prev, in)
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return rec, nil
}

// readInvitation loads and decodes the revision at hash.
func (e *Engine) readInvitation(ctx context.Context, hash string) (*Invitation, *store.Record, error) {
	rec, err := e.store.GetRecord(ctx, hash)
	if err != nil {
		return nil, nil, fmt.Errorf("reading record: %w", storeErr(err))
	}
	if rec == nil {
		return nil, nil, ErrNotFound
	}
	inv, err := DecodeInvitation(rec.Payload)
	if err != nil {
		return nil, nil, err
	}
	return inv, rec, nil
}
