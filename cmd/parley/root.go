package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/runner"
	"github.com/spf13/cobra"
)

// app carries what every command resolves before running.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Parley is a keyword-driven conversational responder",
		Long: `Parley answers free-form text with the DOCTOR technique: it finds the most
important keyword, decomposes the sentence with the keyword's patterns and
reassembles a reply, rotating templates and recalling earlier statements.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default: parley.yaml|yml|json|toml in the working directory)")
	rootCmd.PersistentFlags().String("script", "", "Script file or Loam directory (default: built-in DOCTOR script)")
	rootCmd.PersistentFlags().String("store", "", "Session store: memory, file, redis or sqlite")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newChatCmd(a),
		newValidateCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newSessionCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("script") {
		cfg.Script, _ = cmd.Flags().GetString("script")
	}
	if cmd.Flags().Changed("store") {
		cfg.Store.Kind, _ = cmd.Flags().GetString("store")
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	// The input sanitizer reads its limit from the environment.
	if cfg.MaxInputSize > 0 {
		if err := os.Setenv(runner.EnvMaxInputSize, strconv.Itoa(cfg.MaxInputSize)); err != nil {
			return err
		}
	}

	a.cfg = cfg
	a.logger = logging.New(level)
	if cfg.Source != "" {
		a.logger.Debug("config loaded", "path", cfg.Source)
	}
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
