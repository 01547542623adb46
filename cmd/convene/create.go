package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"convene/internal/agent"
	"convene/internal/invite"
)

func createCmd() *cobra.Command {
	var (
		invitees []string
		location string
		start    string
		end      string
		details  []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an invitation",
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

			info, err := engine.Create(ctx, draft)
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
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

func buildDraft(invitees []string, location, start, end string, details []string) (invite.Draft, error) {
	draft := invite.Draft{Location: location}

	for _, id := range invitees {
		if !agent.ID(id).Valid() {
			return invite.Draft{}, fmt.Errorf("invalid invitee id: %s", id)
		}
		draft.Invitees = append(draft.Invitees, agent.ID(id))
	}

	if start != "" {
		ts, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return invite.Draft{}, fmt.Errorf("parsing --start: %w", err)
		}
		draft.StartTime = &ts
	}
	if end != "" {
		ts, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return invite.Draft{}, fmt.Errorf("parsing --end: %w", err)
		}
		draft.EndTime = &ts
	}

	for _, d := range details {
		key, value, found := strings.Cut(d, "=")
		if !found || key == "" {
			return invite.Draft{}, fmt.Errorf("invalid --detail %q, expected key=value", d)
		}
		draft.Details = append(draft.Details, invite.Detail{Key: key, Value: value})
	}

	return draft, nil
}
