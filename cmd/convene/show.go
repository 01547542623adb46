package main

import (
	"context"

	"github.com/spf13/cobra"
)

func showCmd() *cobra.Command {
	var latest bool
	cmd := &cobra.Command{
		Use:   "show <handle>",
		Short: "Show an invitation and its response state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			engine, st, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			info, err := engine.InfoForUpdate(ctx, args[0])
			if err != nil {
				return err
			}

			if latest {
				// The read-model body is the creation revision; swap
				// in the chain tip when asked for the current text.
				body, _, err := engine.Latest(ctx, info.LatestHash)
				if err != nil {
					return err
				}
				info.Invitation = *body
			}

			return printJSON(cmd, info)
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "show the newest revision's body")
	return cmd
}
