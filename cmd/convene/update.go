package main

import (
	"context"

	"github.com/spf13/cobra"
)

func updateCmd() *cobra.Command {
	var (
		invitees []string
		location string
		start    string
		end      string
		details  []string
	)
	cmd := &cobra.Command{
		Use:   "update <handle>",
		Short: "Publish a new revision of an invitation (author only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := buildDraft(invitees, location, start, end, details)
			if err != nil {
				return err
			}

			ctx := context.Background()
			engine, st, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			rec, err := engine.Update(ctx, args[0], draft)
			if err != nil {
				return err
			}
			cmd.Println(rec.Hash)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&invitees, "invitee", nil, "agent id to invite (repeatable)")
	cmd.Flags().StringVar(&location, "location", "", "where the event takes place")
	cmd.Flags().StringVar(&start, "start", "", "RFC3339 start time")
	cmd.Flags().StringVar(&end, "end", "", "RFC3339 end time")
	cmd.Flags().StringArrayVar(&details, "detail", nil, "key=value detail (repeatable, order kept)")
	cmd.MarkFlagRequired("invitee")
	return cmd
}
