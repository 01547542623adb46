package signal

import (
	"context"

	"github.com/rs/zerolog"

	"convene/internal/agent"
)

// Transport delivers a notification to a set of recipients. Delivery
// is best-effort; the dispatcher logs and discards any error.
type Transport interface {
	Send(ctx context.Context, recipients []agent.ID, n Notification) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, recipients []agent.ID, n Notification) error

func (f TransportFunc) Send(ctx context.Context, recipients []agent.ID, n Notification) error {
	return f(ctx, recipients, n)
}

// LogTransport writes notifications to the log instead of delivering
// them. Used when no webhook targets are configured.
type LogTransport struct {
	Log zerolog.Logger
}

func (t LogTransport) Send(ctx context.Context, recipients []agent.ID, n Notification) error {
	for _, recipient := range recipients {
		t.Log.Info().
			Str("id", n.ID).
			Str("type", string(n.Type)).
			Str("recipient", recipient.String()).
			Str("invitation", n.Data.CreationHash).
			Msg("notification")
	}
	return nil
}
