package main

import (
	"context"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation",
		Long: `Starts a conversation on the terminal. New sessions open with the script greeting;
passing --session with an existing id resumes it from the configured store.
With --watch, edits to the script apply from the next reply on; the session keeps
its memory and counters.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID, _ := cmd.Flags().GetString("session")
			jsonMode, _ := cmd.Flags().GetBool("json")
			trace, _ := cmd.Flags().GetBool("trace")
			noBanner, _ := cmd.Flags().GetBool("no-banner")
			watch, _ := cmd.Flags().GetBool("watch")

			eng, err := a.engine(observability.LogHooks(a.logger))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// The engine logs every reload outcome itself.
			if watch {
				if err := eng.AutoReload(ctx, nil); err != nil {
					return err
				}
			}

			store, locker, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					a.logger.Warn("failed to close session store", "err", err)
				}
			}()

			in, out := cmd.InOrStdin(), cmd.OutOrStdout()
			var handler runner.IOHandler
			if jsonMode {
				handler = runner.NewJSONHandler(in, out)
			} else {
				opts := []runner.TextHandlerOption{runner.WithTextHandlerTrace(trace)}
				if runner.IsTerminal(out) {
					if render, err := tui.NewRenderer(); err == nil {
						opts = append(opts, runner.WithTextHandlerRenderer(render))
					}
					if !noBanner {
						tui.PrintBanner(out, parley.Version)
					}
				}
				handler = runner.NewTextHandler(in, out, opts...)
			}

			r := runner.NewRunner(
				runner.WithInputHandler(handler),
				runner.WithSessions(a.sessions(store, locker)),
				runner.WithSessionID(sessionID),
				runner.WithLogger(a.logger),
			)
			return r.Run(ctx, eng)
		},
	}

	cmd.Flags().StringP("session", "s", "", "Session id to create or resume (default: random)")
	cmd.Flags().Bool("json", false, "Use JSON-Lines input and output")
	cmd.Flags().Bool("trace", false, "Annotate replies with the rule that produced them")
	cmd.Flags().Bool("no-banner", false, "Do not print the banner")
	cmd.Flags().BoolP("watch", "w", false, "Reload the script when its source changes")
	return cmd
}
