package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of parley",
		// Skip config loading; version must work anywhere.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			if banner, _ := cmd.Flags().GetBool("banner"); banner {
				tui.PrintBanner(cmd.OutOrStdout(), parley.Version)
				return
			}
			fmt.Fprintf(cmd.OutOrStdout(), "parley version %s\n", strings.TrimSpace(parley.Version))
		},
	}
	cmd.Flags().Bool("banner", false, "Print the ASCII banner")
	return cmd
}
