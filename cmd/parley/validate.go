package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [script]",
		Short: "Check a script for consistency",
		Long: `Loads and compiles a script and reports every problem found: duplicate keywords,
placeholders beyond the wildcard count, unknown redirect targets or synonym groups,
and missing fallbacks.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Script
			if len(args) > 0 {
				path = args[0]
			}

			eng, err := parley.New(path, parley.WithLogger(a.logger))
			if err != nil {
				var se *domain.ScriptErrors
				if errors.As(err, &se) {
					return fmt.Errorf("validation failed with %d problem(s):\n%w", len(se.Errors), err)
				}
				return fmt.Errorf("validation failed: %w", err)
			}

			s := eng.Inspect()
			fmt.Fprintf(cmd.OutOrStdout(), "Script %q is valid! ✅ (%d rules, %d synonym groups, %d fallbacks)\n",
				eng.Name, len(s.Rules), len(s.Synonyms), len(s.Fallbacks))
			return nil
		},
	}
}
