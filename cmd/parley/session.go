package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/parley/pkg/ports"
	"github.com/spf13/cobra"
)

// pruner is implemented by stores that can drop stale sessions in one query.
type pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage persistent sessions",
		Long:  `List, inspect, remove and prune sessions in the configured store.`,
	}

	withStore := func(fn func(cmd *cobra.Command, args []string, store ports.SessionStore) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, _, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			return errors.Join(fn(cmd, args, store), closeStore())
		}
	}

	ls := &cobra.Command{
		Use:   "ls",
		Short: "List all sessions",
		RunE: withStore(func(cmd *cobra.Command, args []string, store ports.SessionStore) error {
			ids, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(ids) == 0 {
				fmt.Fprintln(out, "No sessions found.")
				return nil
			}
			fmt.Fprintln(out, "Sessions:")
			for _, id := range ids {
				fmt.Fprintln(out, "- "+id)
			}
			return nil
		}),
	}

	inspect := &cobra.Command{
		Use:   "inspect <session-id>",
		Short: "Print the state of a session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(cmd *cobra.Command, args []string, store ports.SessionStore) error {
			sess, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load session %q: %w", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(sess)
		}),
	}

	rm := &cobra.Command{
		Use:   "rm [session-id]...",
		Short: "Remove one or more sessions",
		RunE: withStore(func(cmd *cobra.Command, args []string, store ports.SessionStore) error {
			all, _ := cmd.Flags().GetBool("all")
			ids := args
			if all {
				var err error
				if ids, err = store.List(cmd.Context()); err != nil {
					return fmt.Errorf("failed to list sessions: %w", err)
				}
			} else if len(ids) == 0 {
				return errors.New("requires at least one session id or --all")
			}

			var errs []error
			for _, id := range ids {
				if err := store.Delete(cmd.Context(), id); err != nil {
					errs = append(errs, fmt.Errorf("failed to remove %q: %w", id, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session '%s'\n", id)
			}
			return errors.Join(errs...)
		}),
	}
	rm.Flags().Bool("all", false, "Remove every session in the store")

	prune := &cobra.Command{
		Use:   "prune",
		Short: "Remove sessions idle for longer than --older-than",
		RunE: withStore(func(cmd *cobra.Command, args []string, store ports.SessionStore) error {
			age, _ := cmd.Flags().GetDuration("older-than")
			n, err := pruneSessions(cmd.Context(), store, time.Now().Add(-age))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d session(s)\n", n)
			return nil
		}),
	}
	prune.Flags().Duration("older-than", 7*24*time.Hour, "Idle time after which a session is removed")

	cmd.AddCommand(ls, inspect, rm, prune)
	return cmd
}

func pruneSessions(ctx context.Context, store ports.SessionStore, before time.Time) (int64, error) {
	if p, ok := store.(pruner); ok {
		return p.Prune(ctx, before)
	}

	ids, err := store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	var n int64
	for _, id := range ids {
		sess, err := store.Load(ctx, id)
		if err != nil {
			return n, fmt.Errorf("failed to load session %q: %w", id, err)
		}
		if sess.UpdatedAt.IsZero() || !sess.UpdatedAt.Before(before) {
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			return n, fmt.Errorf("failed to remove %q: %w", id, err)
		}
		n++
	}
	return n, nil
}
