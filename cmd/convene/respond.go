package main

import (
	"context"

	"github.com/spf13/cobra"

	"convene/internal/store"
)

func acceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <creation-handle>",
		Short: "Accept an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respond(cmd, args[0], func(ctx context.Context, e responder, h string) (*store.Link, error) {
				return e.Accept(ctx, h)
			})
		},
	}
}

func rejectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reject <creation-handle>",
		Short: "Reject an invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respond(cmd, args[0], func(ctx context.Context, e responder, h string) (*store.Link, error) {
				return e.Reject(ctx, h)
			})
		},
	}
}

func commitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commit <creation-handle>",
		Short: "Confirm a previously accepted invitation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return respond(cmd, args[0], func(ctx context.Context, e responder, h string) (*store.Link, error) {
				return e.Commit(ctx, h)
			})
		},
	}
}

func clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <creation-handle>",
		Short: "Remove an invitation from this agent's lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			engine, st, err := openEngine(ctx)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			return engine.Clear(ctx, args[0])
		},
	}
}

type responder interface {
	Accept(ctx context.Context, creation string) (*store.Link, error)
	Reject(ctx context.Context, creation string) (*store.Link, error)
	Commit(ctx context.Context, creation string) (*store.Link, error)
}

func respond(cmd *cobra.Command, handle string, op func(context.Context, responder, string) (*store.Link, error)) error {
	ctx := context.Background()
	engine, st, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	link, err := op(ctx, engine, handle)
	if err != nil {
		return err
	}
	cmd.Println(link.Hash)
	return nil
}
