package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/parley/internal/presentation/graph"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the loaded script",
		Long: `Prints the rule table as markdown (rendered on a terminal), JSON, or a Mermaid
flowchart of redirects and synonym groups. With --session, the flowchart highlights
the rules that session has used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			sessionID, _ := cmd.Flags().GetString("session")

			eng, err := a.engine(domain.LifecycleHooks{})
			if err != nil {
				return err
			}
			s := eng.Inspect()
			out := cmd.OutOrStdout()

			switch format {
			case "markdown":
				md := tui.ScriptMarkdown(s)
				if runner.IsTerminal(out) {
					render, err := tui.NewRenderer()
					if err != nil {
						return err
					}
					if md, err = render(md); err != nil {
						return err
					}
				}
				fmt.Fprint(out, md)
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			case "mermaid":
				var overlay *graph.Overlay
				if sessionID != "" {
					store, _, closeStore, err := a.openStore(cmd.Context())
					if err != nil {
						return err
					}
					defer closeStore()
					sess, err := store.Load(cmd.Context(), sessionID)
					if err != nil {
						return fmt.Errorf("failed to load session %q: %w", sessionID, err)
					}
					overlay = graph.OverlayFromSession(sess, "")
				}
				fmt.Fprint(out, graph.GenerateMermaid(s, overlay))
			default:
				return fmt.Errorf("unknown format %q (use markdown, json or mermaid)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "markdown", "Output format: markdown, json or mermaid")
	cmd.Flags().String("session", "", "Highlight the rules used by this session (mermaid only)")
	return cmd
}
