package signal

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"convene/internal/invite"
)

// Resolver is the slice of the engine the dispatcher needs to rebuild
// a read-model from a committed write.
type Resolver interface {
	Info(ctx context.Context, creation string) (*invite.InviteInfo, error)
	InfoForUpdate(ctx context.Context, handle string) (*invite.InviteInfo, error)
}

// Dispatcher observes committed writes and fans notifications out
// through a transport. It runs post-commit: every failure here is
// logged and swallowed so the originating write is never affected.
type Dispatcher struct {
	resolver  Resolver
	transport Transport
	log       zerolog.Logger
	timeout   time.Duration
}

func NewDispatcher(resolver Resolver, transport Transport, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		resolver:  resolver,
		transport: transport,
		log:       log,
		timeout:   10 * time.Second,
	}
}

// AfterCommit implements invite.Hook.
func (d *Dispatcher) AfterCommit(ev invite.WriteEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	info, err := d.resolve(ctx, ev)
	if err != nil {
		d.log.Warn().Err(err).Str("event", string(ev.Kind)).Msg("notification dropped: resolving invitation failed")
		return
	}
	if info == nil {
		return
	}

	kind, recipients, ok := Plan(ev, info)
	if !ok || len(recipients) == 0 {
		return
	}

	notification := Notification{
		ID:     ulid.Make().String(),
		Type:   kind,
		Action: ev,
		Data:   *info,
	}
	if err := d.transport.Send(ctx, recipients, notification); err != nil {
		d.log.Warn().Err(err).Str("type", string(kind)).Msg("notification dropped: delivery failed")
	}
}

// resolve rebuilds the read-model for the invitation the event
// touches. Events that can never produce a notification return nil
// without hitting the store.
func (d *Dispatcher) resolve(ctx context.Context, ev invite.WriteEvent) (*invite.InviteInfo, error) {
	switch ev.Kind {
	case invite.EventEntryCreated:
		return d.resolver.Info(ctx, ev.Record.Hash)
	case invite.EventEntryUpdated:
		return d.resolver.InfoForUpdate(ctx, ev.Record.Hash)
	case invite.EventLinkCreated:
		if ev.Link == nil || ev.Link.Type != invite.LinkInvitationToAgent {
			return nil, nil
		}
		if ev.Link.Tag != invite.TagAccepted && ev.Link.Tag != invite.TagRejected {
			return nil, nil
		}
		return d.resolver.Info(ctx, ev.Link.Base)
	default:
		return nil, nil
	}
}
