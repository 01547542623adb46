package main

import (
	"context"

	"github.com/spf13/cobra"
)

func pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List invitations awaiting a response from this agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			engine, st, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			infos, err := engine.Pending(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, infos)
		},
	}
}
