package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	parleyhttp "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Serves conversations over a JSON API. Sessions live in the configured store, so
several instances can share a Redis or SQLite backend. Prometheus metrics are
exposed on /metrics and the API description on /openapi.yaml. With --watch, edits
to the script are picked up without a restart and announced on /events.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := a.cfg.HTTP.Addr
			if cmd.Flags().Changed("addr") {
				addr, _ = cmd.Flags().GetString("addr")
			}

			metrics, err := observability.NewMetrics(nil)
			if err != nil {
				return err
			}
			eng, err := a.engine(observability.Combine(metrics.Hooks(), observability.LogHooks(a.logger)))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, locker, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					a.logger.Warn("failed to close session store", "err", err)
				}
			}()

			opts := []parleyhttp.Option{
				parleyhttp.WithMetricsHandler(metrics.Handler()),
				parleyhttp.WithLogger(a.logger),
			}
			if watch, _ := cmd.Flags().GetBool("watch"); watch {
				opts = append(opts, parleyhttp.WithHotReload(ctx))
			}
			handler, err := parleyhttp.NewHandler(eng, a.sessions(store, locker), opts...)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)
			go func() {
				a.logger.Info("starting parley server", "addr", srv.Addr, "script", eng.Name, "store", a.cfg.Store.Kind)
				serverErrors <- srv.ListenAndServe()
			}()

			select {
			case err := <-serverErrors:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
				a.logger.Info("shutting down", "timeout", shutdownTimeout)

				// Give outstanding requests a deadline for completion.
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()

				if err := srv.Shutdown(shutdownCtx); err != nil {
					a.logger.Warn("graceful shutdown did not complete", "err", err)
					if err := srv.Close(); err != nil {
						return fmt.Errorf("failed to close server: %w", err)
					}
				}
				a.logger.Info("parley server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().String("addr", "", "Address to listen on (default from config, :8080)")
	cmd.Flags().BoolP("watch", "w", false, "Reload the script when its source changes")
	return cmd
}
