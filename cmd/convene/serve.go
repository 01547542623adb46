package main

import (
	"context"

	"github.com/spf13/cobra"

	"convene/internal/mcp"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	engine, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	server := mcp.NewServer(engine, version)
	return server.Run(ctx, &sdk.StdioTransport{})
}
