package invite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"convene/internal/agent"
	"convene/internal/store"
	"convene/internal/store/sqlite"
)

// newTestStore opens a fresh sqlite substrate shared by every agent
// in a test, standing in for the converged view of the network.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()

	client, err := sqlite.New(ctx, "sqlite://"+filepath.Join(t.TempDir(), "convene.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { client.Close(ctx) })

	if err := client.EnsureSchema(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func newTestEngine(t *testing.T, st store.Store) *Engine {
	t.Helper()
	keys, err := agent.Generate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewEngine(st, keys)
}

func mustCreate(t *testing.T, e *Engine, invitees ...agent.ID) *InviteInfo {
	t.Helper()
	info, err := e.Create(context.Background(), Draft{Invitees: invitees, Location: "harbor"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return info
}

func idsEqual(a []agent.ID, b ...agent.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCreateSeedsPendingForInvitees(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)
	carol := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self(), carol.Self())

	if info.Invitation.Inviter != alice.Self() {
		t.Fatalf("inviter = %q, want %q", info.Invitation.Inviter, alice.Self())
	}
	if !idsEqual(info.Pending, bob.Self(), carol.Self()) {
		t.Fatalf("pending = %v, want both invitees", info.Pending)
	}
	if len(info.Accepted) != 0 || len(info.Rejected) != 0 {
		t.Fatalf("fresh invitation has responses: %+v", info)
	}

	for _, invitee := range []*Engine{bob, carol} {
		pending, err := invitee.Pending(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("expected exactly one pending invitation, got %d", len(pending))
		}
		if pending[0].CreationHash != info.CreationHash {
			t.Fatalf("pending invitation hash = %q, want %q", pending[0].CreationHash, info.CreationHash)
		}
	}

	// the author is listed under the inviter tag, not pending
	mine, err := alice.ListForAgent(ctx, alice.Self(), TagInviter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("expected one invitation under inviter tag, got %d", len(mine))
	}
	if pending, _ := alice.Pending(ctx); len(pending) != 0 {
		t.Fatalf("author should have no pending invitations, got %d", len(pending))
	}
}

func TestAcceptMigratesPending(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)
	carol := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self(), carol.Self())

	if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := alice.Info(ctx, info.CreationHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idsEqual(after.Accepted, bob.Self()) {
		t.Fatalf("accepted = %v, want [bob]", after.Accepted)
	}
	if !idsEqual(after.Pending, carol.Self()) {
		t.Fatalf("pending = %v, want [carol]", after.Pending)
	}

	// the pending edge was migrated away, not accumulated
	if pending, _ := bob.Pending(ctx); len(pending) != 0 {
		t.Fatalf("bob still has pending invitations after accepting")
	}
	links, err := st.GetLinks(ctx, bob.Self().String(), LinkAgentToInvitation, TagPending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 0 {
		t.Fatalf("pending edge survived migration: %+v", links)
	}
}

func TestResponseMigrationReplacesOpposite(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self())

	if _, err := bob.Reject(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := alice.Info(ctx, info.CreationHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idsEqual(after.Accepted, bob.Self()) || len(after.Rejected) != 0 {
		t.Fatalf("expected accept to supersede reject, got %+v", after)
	}

	rejected, err := st.GetLinks(ctx, info.CreationHash, LinkInvitationToAgent, TagRejected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rejected) != 0 {
		t.Fatalf("rejected edge survived migration: %+v", rejected)
	}
}

func TestNonInviteeCannotRespond(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)
	mallory := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self())

	if _, err := mallory.Accept(ctx, info.CreationHash); !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited, got %v", err)
	}
	if _, err := mallory.Reject(ctx, info.CreationHash); !errors.Is(err, ErrNotInvited) {
		t.Fatalf("expected ErrNotInvited, got %v", err)
	}
}

func TestCommit(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self())

	t.Run("commit before accept fails", func(t *testing.T) {
		if _, err := bob.Commit(ctx, info.CreationHash); !errors.Is(err, ErrNotAccepted) {
			t.Fatalf("expected ErrNotAccepted, got %v", err)
		}
	})

	t.Run("commit migrates accepted", func(t *testing.T) {
		if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := bob.Commit(ctx, info.CreationHash); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		after, err := alice.Info(ctx, info.CreationHash)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !idsEqual(after.Committed, bob.Self()) {
			t.Fatalf("committed = %v, want [bob]", after.Committed)
		}
		// a committed invitee still counts as accepted
		if !idsEqual(after.Accepted, bob.Self()) || len(after.Pending) != 0 {
			t.Fatalf("unexpected partitions after commit: %+v", after)
		}

		accepted, err := st.GetLinks(ctx, info.CreationHash, LinkInvitationToAgent, TagAccepted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accepted) != 0 {
			t.Fatalf("accepted edge survived commit migration: %+v", accepted)
		}
	})
}

func TestUpdateAuthorization(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)
	carol := newTestEngine(t, st)
	dave := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self(), carol.Self())
	newInvitees := Draft{Invitees: []agent.ID{bob.Self(), carol.Self(), dave.Self()}}

	t.Run("non-author is rejected", func(t *testing.T) {
		if _, err := dave.Update(ctx, info.CreationHash, newInvitees); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("author advances the chain", func(t *testing.T) {
		rec, err := alice.Update(ctx, info.CreationHash, newInvitees)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		latest, err := alice.ResolveLatest(ctx, info.CreationHash)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if latest != rec.Hash {
			t.Fatalf("latest = %q, want %q", latest, rec.Hash)
		}

		creation, err := alice.ResolveCreation(ctx, rec.Hash)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creation != info.CreationHash {
			t.Fatalf("creation = %q, want %q", creation, info.CreationHash)
		}
	})

	t.Run("added invitee is seeded and can respond", func(t *testing.T) {
		pending, err := dave.Pending(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("expected the update to seed dave, got %d pending", len(pending))
		}
		if _, err := dave.Accept(ctx, info.CreationHash); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("update through a non-creation handle", func(t *testing.T) {
		latest, err := alice.ResolveLatest(ctx, info.CreationHash)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rec, err := alice.Update(ctx, latest, newInvitees)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creation, _ := alice.ResolveCreation(ctx, rec.Hash); creation != info.CreationHash {
			t.Fatalf("chain identity drifted after update via tip")
		}
	})
}

func TestClearRemovesOnlyCallersEdges(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)
	carol := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self(), carol.Self())

	if err := carol.Clear(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pending, _ := carol.Pending(ctx); len(pending) != 0 {
		t.Fatalf("carol still sees the cleared invitation")
	}

	// the invitation itself, and bob's view, are untouched
	after, err := alice.Info(ctx, info.CreationHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idsEqual(after.Invitation.Invitees, bob.Self(), carol.Self()) {
		t.Fatalf("invitee list changed by clear: %v", after.Invitation.Invitees)
	}
	if pending, _ := bob.Pending(ctx); len(pending) != 1 {
		t.Fatalf("bob's pending list was affected by carol's clear")
	}
}

func TestInfoIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self())
	if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := alice.Info(ctx, info.CreationHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := alice.Info(ctx, info.CreationHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("get_info is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestPartitionsCoverInvitees(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)
	carol := newTestEngine(t, st)
	dave := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self(), carol.Self(), dave.Self())
	if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := carol.Reject(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := alice.Info(ctx, info.CreationHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := len(after.Accepted) + len(after.Rejected) + len(after.Pending)
	if total != len(after.Invitation.Invitees) {
		t.Fatalf("partitions do not cover invitees: %+v", after)
	}
	seen := make(map[agent.ID]int)
	for _, id := range after.Accepted {
		seen[id]++
	}
	for _, id := range after.Rejected {
		seen[id]++
	}
	for _, id := range after.Pending {
		seen[id]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("agent %s appears in %d partitions", id, n)
		}
	}
}

func TestDuplicateInviteesCollapse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)

	info, err := alice.Create(ctx, Draft{Invitees: []agent.ID{bob.Self(), bob.Self()}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idsEqual(info.Pending, bob.Self()) {
		t.Fatalf("duplicate invitee leaked into partitions: %v", info.Pending)
	}
}

func TestDoubleAcceptIsHarmless(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self())
	if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	after, err := alice.Info(ctx, info.CreationHash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !idsEqual(after.Accepted, bob.Self()) {
		t.Fatalf("duplicate edges corrupted the read-model: %+v", after)
	}
}

func TestInfoErrors(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)

	t.Run("absent handle", func(t *testing.T) {
		if _, err := alice.Info(ctx, "deadbeef"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("undecodable payload", func(t *testing.T) {
		rec, err := st.CreateEntry(ctx, store.EntryInput{Author: alice.Self().String(), Payload: []byte("not json")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := alice.Info(ctx, rec.Hash); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed, got %v", err)
		}
	})
}

func TestPostCommitEvents(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)

	var aliceEvents, bobEvents []WriteEvent
	alice.SetHook(func(ev WriteEvent) { aliceEvents = append(aliceEvents, ev) })
	bob.SetHook(func(ev WriteEvent) { bobEvents = append(bobEvents, ev) })

	info := mustCreate(t, alice, bob.Self())

	// create emits the entry plus the inviter edge and one pending edge
	if len(aliceEvents) != 3 {
		t.Fatalf("expected 3 events for create, got %d", len(aliceEvents))
	}
	if aliceEvents[0].Kind != EventEntryCreated {
		t.Fatalf("first event = %q, want entry_created", aliceEvents[0].Kind)
	}

	if _, err := bob.Accept(ctx, info.CreationHash); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// accept deletes the pending edge then creates the response edge
	if len(bobEvents) != 2 {
		t.Fatalf("expected 2 events for accept, got %d", len(bobEvents))
	}
	if bobEvents[0].Kind != EventLinkDeleted || bobEvents[1].Kind != EventLinkCreated {
		t.Fatalf("unexpected event order: %+v", bobEvents)
	}
	if bobEvents[1].Link.Tag != TagAccepted {
		t.Fatalf("response event tag = %q, want accepted", bobEvents[1].Link.Tag)
	}
}

func TestResolutionMonotonicity(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	alice := newTestEngine(t, st)
	bob := newTestEngine(t, st)

	info := mustCreate(t, alice, bob.Self())
	draft := Draft{Invitees: []agent.ID{bob.Self()}}

	var handles = []string{info.CreationHash}
	for range 3 {
		rec, err := alice.Update(ctx, info.CreationHash, draft)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		handles = append(handles, rec.Hash)
	}

	tip := handles[len(handles)-1]
	for _, handle := range handles {
		creation, err := alice.ResolveCreation(ctx, handle)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if creation != info.CreationHash {
			t.Fatalf("creation from %q = %q, want %q", handle, creation, info.CreationHash)
		}
		latest, err := alice.ResolveLatest(ctx, handle)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if latest != tip {
			t.Fatalf("latest from %q = %q, want %q", handle, latest, tip)
		}
	}
}
