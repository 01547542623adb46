// Package mcp exposes the invitation engine as MCP tools. The
// handlers are a thin façade: argument parsing and output shaping
// only, every rule lives in the engine.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"convene/internal/invite"
	"convene/internal/store"
)

// Inviter is the slice of the engine the tools need.
type Inviter interface {
	Create(ctx context.Context, draft invite.Draft) (*invite.InviteInfo, error)
	Update(ctx context.Context, handle string, draft invite.Draft) (*store.Record, error)
	InfoForUpdate(ctx context.Context, handle string) (*invite.InviteInfo, error)
	Pending(ctx context.Context) ([]invite.InviteInfo, error)
	Accept(ctx context.Context, creation string) (*store.Link, error)
	Reject(ctx context.Context, creation string) (*store.Link, error)
	Commit(ctx context.Context, creation string) (*store.Link, error)
	Clear(ctx context.Context, creation string) error
}

type Server struct {
	engine Inviter
	mcp    *sdk.Server
}

func NewServer(engine Inviter, version string) *Server {
	s := &Server{
		engine: engine,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "convene",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
