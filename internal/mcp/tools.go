package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"convene/internal/agent"
	"convene/internal/invite"
	"convene/internal/store"
)

type DetailInput struct {
	Key   string `json:"key" jsonschema:"detail name"`
	Value string `json:"value" jsonschema:"detail value"`
}

type CreateInvitationInput struct {
	Invitees  []string      `json:"invitees" jsonschema:"agent ids to invite"`
	Location  string        `json:"location,omitempty" jsonschema:"where the event takes place"`
	StartTime string        `json:"start_time,omitempty" jsonschema:"RFC3339 start time"`
	EndTime   string        `json:"end_time,omitempty" jsonschema:"RFC3339 end time"`
	Details   []DetailInput `json:"details,omitempty" jsonschema:"ordered key/value details"`
}

type UpdateInvitationInput struct {
	Handle    string        `json:"handle" jsonschema:"any revision hash in the invitation's chain"`
	Invitees  []string      `json:"invitees" jsonschema:"replacement invitee list"`
	Location  string        `json:"location,omitempty" jsonschema:"where the event takes place"`
	StartTime string        `json:"start_time,omitempty" jsonschema:"RFC3339 start time"`
	EndTime   string        `json:"end_time,omitempty" jsonschema:"RFC3339 end time"`
	Details   []DetailInput `json:"details,omitempty" jsonschema:"ordered key/value details"`
}

type GetInvitationInput struct {
	Handle string `json:"handle" jsonschema:"any revision hash in the invitation's chain"`
}

type PendingInvitationsInput struct{}

type RespondInput struct {
	Handle string `json:"handle" jsonschema:"the invitation's creation hash"`
}

type InviteInfoOutput struct {
	Inviter      string        `json:"inviter"`
	Invitees     []string      `json:"invitees"`
	Location     string        `json:"location,omitempty"`
	StartTime    string        `json:"start_time,omitempty"`
	EndTime      string        `json:"end_time,omitempty"`
	Details      []DetailInput `json:"details,omitempty"`
	CreationHash string        `json:"creation_hash"`
	LatestHash   string        `json:"latest_hash"`
	Accepted     []string      `json:"accepted"`
	Rejected     []string      `json:"rejected"`
	Committed    []string      `json:"committed"`
	Pending      []string      `json:"pending"`
}

type UpdateInvitationOutput struct {
	RevisionHash string `json:"revision_hash"`
}

type PendingInvitationsOutput struct {
	Invitations []InviteInfoOutput `json:"invitations"`
}

type RespondOutput struct {
	EdgeHash string `json:"edge_hash"`
}

type ClearOutput struct {
	Cleared bool `json:"cleared"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "create_invitation",
		Description: "Create an invitation and notify the invitees",
	}, s.handleCreateInvitation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "update_invitation",
		Description: "Replace an invitation's body with a new revision (author only)",
	}, s.handleUpdateInvitation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_invitation",
		Description: "Resolve an invitation and its current response state",
	}, s.handleGetInvitation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_my_pending_invitations",
		Description: "List invitations awaiting a response from this agent",
	}, s.handlePendingInvitations)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "accept_invitation",
		Description: "Accept an invitation",
	}, s.handleAcceptInvitation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "reject_invitation",
		Description: "Reject an invitation",
	}, s.handleRejectInvitation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "commit_invitation",
		Description: "Confirm a previously accepted invitation",
	}, s.handleCommitInvitation)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "clear_invitation",
		Description: "Remove an invitation from this agent's lists",
	}, s.handleClearInvitation)
}

func (s *Server) handleCreateInvitation(ctx context.Context, req *sdk.CallToolRequest, input CreateInvitationInput) (*sdk.CallToolResult, InviteInfoOutput, error) {
	if len(input.Invitees) == 0 {
		return nil, InviteInfoOutput{}, fmt.Errorf("invitees are required")
	}
	draft, err := parseDraft(input.Invitees, input.Location, input.StartTime, input.EndTime, input.Details)
	if err != nil {
		return nil, InviteInfoOutput{}, err
	}

	info, err := s.engine.Create(ctx, draft)
	if err != nil {
		return nil, InviteInfoOutput{}, err
	}
	return nil, infoOutput(info), nil
}

func (s *Server) handleUpdateInvitation(ctx context.Context, req *sdk.CallToolRequest, input UpdateInvitationInput) (*sdk.CallToolResult, UpdateInvitationOutput, error) {
	if input.Handle == "" {
		return nil, UpdateInvitationOutput{}, fmt.Errorf("handle is required")
	}
	if len(input.Invitees) == 0 {
		return nil, UpdateInvitationOutput{}, fmt.Errorf("invitees are required")
	}
	draft, err := parseDraft(input.Invitees, input.Location, input.StartTime, input.EndTime, input.Details)
	if err != nil {
		return nil, UpdateInvitationOutput{}, err
	}

	rec, err := s.engine.Update(ctx, input.Handle, draft)
	if err != nil {
		return nil, UpdateInvitationOutput{}, err
	}
	return nil, UpdateInvitationOutput{RevisionHash: rec.Hash}, nil
}

func (s *Server) handleGetInvitation(ctx context.Context, req *sdk.CallToolRequest, input GetInvitationInput) (*sdk.CallToolResult, InviteInfoOutput, error) {
	if input.Handle == "" {
		return nil, InviteInfoOutput{}, fmt.Errorf("handle is required")
	}
	info, err := s.engine.InfoForUpdate(ctx, input.Handle)
	if err != nil {
		return nil, InviteInfoOutput{}, err
	}
	return nil, infoOutput(info), nil
}

func (s *Server) handlePendingInvitations(ctx context.Context, req *sdk.CallToolRequest, input PendingInvitationsInput) (*sdk.CallToolResult, PendingInvitationsOutput, error) {
	infos, err := s.engine.Pending(ctx)
	if err != nil {
		return nil, PendingInvitationsOutput{}, err
	}
	out := PendingInvitationsOutput{Invitations: []InviteInfoOutput{}}
	for i := range infos {
		out.Invitations = append(out.Invitations, infoOutput(&infos[i]))
	}
	return nil, out, nil
}

func (s *Server) handleAcceptInvitation(ctx context.Context, req *sdk.CallToolRequest, input RespondInput) (*sdk.CallToolResult, RespondOutput, error) {
	return s.respond(ctx, input, s.engine.Accept)
}

func (s *Server) handleRejectInvitation(ctx context.Context, req *sdk.CallToolRequest, input RespondInput) (*sdk.CallToolResult, RespondOutput, error) {
	return s.respond(ctx, input, s.engine.Reject)
}

func (s *Server) handleCommitInvitation(ctx context.Context, req *sdk.CallToolRequest, input RespondInput) (*sdk.CallToolResult, RespondOutput, error) {
	return s.respond(ctx, input, s.engine.Commit)
}

func (s *Server) respond(ctx context.Context, input RespondInput, op func(context.Context, string) (*store.Link, error)) (*sdk.CallToolResult, RespondOutput, error) {
	if input.Handle == "" {
		return nil, RespondOutput{}, fmt.Errorf("handle is required")
	}
	link, err := op(ctx, input.Handle)
	if err != nil {
		return nil, RespondOutput{}, err
	}
	return nil, RespondOutput{EdgeHash: link.Hash}, nil
}

func (s *Server) handleClearInvitation(ctx context.Context, req *sdk.CallToolRequest, input RespondInput) (*sdk.CallToolResult, ClearOutput, error) {
	if input.Handle == "" {
		return nil, ClearOutput{}, fmt.Errorf("handle is required")
	}
	if err := s.engine.Clear(ctx, input.Handle); err != nil {
		return nil, ClearOutput{}, err
	}
	return nil, ClearOutput{Cleared: true}, nil
}

func parseDraft(invitees []string, location, start, end string, details []DetailInput) (invite.Draft, error) {
	draft := invite.Draft{Location: location}

	for _, id := range invitees {
		if !agent.ID(id).Valid() {
			return invite.Draft{}, fmt.Errorf("invalid invitee id: %s", id)
		}
		draft.Invitees = append(draft.Invitees, agent.ID(id))
	}

	startTime, err := parseTime(start)
	if err != nil {
		return invite.Draft{}, fmt.Errorf("invalid start_time: %w", err)
	}
	draft.StartTime = startTime

	endTime, err := parseTime(end)
	if err != nil {
		return invite.Draft{}, fmt.Errorf("invalid end_time: %w", err)
	}
	draft.EndTime = endTime

	for _, d := range details {
		draft.Details = append(draft.Details, invite.Detail{Key: d.Key, Value: d.Value})
	}

	return draft, nil
}

func parseTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func infoOutput(info *invite.InviteInfo) InviteInfoOutput {
	out := InviteInfoOutput{
		Inviter:      info.Invitation.Inviter.String(),
		Invitees:     idStrings(info.Invitation.Invitees),
		Location:     info.Invitation.Location,
		CreationHash: info.CreationHash,
		LatestHash:   info.LatestHash,
		Accepted:     idStrings(info.Accepted),
		Rejected:     idStrings(info.Rejected),
		Committed:    idStrings(info.Committed),
		Pending:      idStrings(info.Pending),
	}
	if info.Invitation.StartTime != nil {
		out.StartTime = info.Invitation.StartTime.Format(time.RFC3339)
	}
	if info.Invitation.EndTime != nil {
		out.EndTime = info.Invitation.EndTime.Format(time.RFC3339)
	}
	for _, d := range info.Invitation.Details {
		out.Details = append(out.Details, DetailInput{Key: d.Key, Value: d.Value})
	}
	return out
}

func idStrings(ids []agent.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
