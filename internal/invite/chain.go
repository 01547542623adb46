package invite

import (
	"context"
	"fmt"

	"convene/internal/store"
)

// ResolveLatest follows forward update pointers from any revision in a
// chain to its tip. "Latest" is defined purely by chain-following;
// when a revision has several registered updates the last one wins,
// which keeps the pick deterministic per replica. The walk is
// iterative with a visited set so a pathological chain cannot exhaust
// the stack or loop forever.
func (e *Engine) ResolveLatest(ctx context.Context, handle string) (string, error) {
	visited := make(map[string]struct{})
	current := handle

	for {
		if _, seen := visited[current]; seen {
			return "", fmt.Errorf("%w: update chain cycle at %s", ErrMalformed, current)
		}
		visited[current] = struct{}{}

		details, err := e.store.GetDetails(ctx, current)
		if err != nil {
			return "", fmt.Errorf("resolving latest revision: %w", storeErr(err))
		}
		if details == nil {
			if current == handle {
				return "", ErrNotFound
			}
			return "", fmt.Errorf("%w: update pointer to missing record %s", ErrMalformed, current)
		}
		if len(details.UpdatedBy) == 0 {
			return current, nil
		}
		current = details.UpdatedBy[len(details.UpdatedBy)-1]
	}
}

// ResolveCreation follows back-pointers from any revision to the
// creation record, whose hash is the invitation's stable identity.
func (e *Engine) ResolveCreation(ctx context.Context, handle string) (string, error) {
	visited := make(map[string]struct{})
	current := handle

	for {
		if _, seen := visited[current]; seen {
			return "", fmt.Errorf("%w: update chain cycle at %s", ErrMalformed, current)
		}
		visited[current] = struct{}{}

		rec, err := e.store.GetRecord(ctx, current)
		if err != nil {
			return "", fmt.Errorf("resolving creation revision: %w", storeErr(err))
		}
		if rec == nil {
			if current == handle {
				return "", ErrNotFound
			}
			return "", fmt.Errorf("%w: back-pointer to missing record %s", ErrMalformed, current)
		}

		switch rec.Action {
		case store.ActionCreate:
			return current, nil
		case store.ActionUpdate:
			current = rec.Prev
		default:
			return "", fmt.Errorf("%w: record %s has action %q", ErrInconsistent, current, rec.Action)
		}
	}
}

// Latest resolves and decodes the newest revision of a chain.
func (e *Engine) Latest(ctx context.Context, handle string) (*Invitation, *store.Record, error) {
	tip, err := e.ResolveLatest(ctx, handle)
	if err != nil {
		return nil, nil, err
	}
	return e.readInvitation(ctx, tip)
}
