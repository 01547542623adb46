// Package signal derives notifications from committed writes and fans
// them out to the agents a transition concerns. Planning is a pure
// function so the fan-out rules are testable without any transport.
package signal

import (
	"convene/internal/agent"
	"convene/internal/invite"
)

type Kind string

const (
	InvitationReceived Kind = "InvitationReceived"
	InvitationUpdated  Kind = "InvitationUpdated"
	InvitationAccepted Kind = "InvitationAccepted"
	InvitationRejected Kind = "InvitationRejected"
)

// Notification is the wire envelope: a tag-discriminated union over
// Type, carrying the committed write and the resolved read-model.
type Notification struct {
	ID     string            `json:"id"`
	Type   Kind              `json:"type"`
	Action invite.WriteEvent `json:"action"`
	Data   invite.InviteInfo `json:"data"`
}

// Plan maps one committed write to a notification kind and recipient
// set. The third return is false when the write warrants no
// notification: link deletions are an explicit non-event, and
// pending, inviter and committed links stay silent.
func Plan(ev invite.WriteEvent, info *invite.InviteInfo) (Kind, []agent.ID, bool) {
	switch ev.Kind {
	case invite.EventEntryCreated:
		if ev.Record == nil {
			return "", nil, false
		}
		return InvitationReceived, inviteesExcept(info.Invitation.Invitees, agent.ID(ev.Record.Author)), true

	case invite.EventEntryUpdated:
		if ev.Record == nil {
			return "", nil, false
		}
		// Recipients come from the updated revision itself, so
		// invitees added by this very update are notified too.
		invitees := info.Invitation.Invitees
		if body, err := invite.DecodeInvitation(ev.Record.Payload); err == nil {
			invitees = body.Invitees
		}
		return InvitationUpdated, inviteesExcept(invitees, agent.ID(ev.Record.Author)), true

	case invite.EventLinkCreated:
		if ev.Link == nil || ev.Link.Type != invite.LinkInvitationToAgent {
			return "", nil, false
		}
		switch ev.Link.Tag {
		case invite.TagAccepted:
			return InvitationAccepted, []agent.ID{info.Invitation.Inviter}, true
		case invite.TagRejected:
			return InvitationRejected, []agent.ID{info.Invitation.Inviter}, true
		}
		return "", nil, false

	default:
		return "", nil, false
	}
}

func inviteesExcept(invitees []agent.ID, author agent.ID) []agent.ID {
	recipients := make([]agent.ID, 0, len(invitees))
	seen := make(map[agent.ID]struct{}, len(invitees))
	for _, invitee := range invitees {
		if invitee == author {
			continue
		}
		if _, dup := seen[invitee]; dup {
			continue
		}
		seen[invitee] = struct{}{}
		recipients = append(recipients, invitee)
	}
	return recipients
}
