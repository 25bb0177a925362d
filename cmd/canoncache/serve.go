package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"canoncache/internal/api"
	"canoncache/internal/ttl"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve canonical path lookups over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.HTTPAddr = addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// TTL cleaner
			if a.cfg.Cache.SweepInterval > 0 {
				cleaner := ttl.NewCleaner(a.cache, a.cfg.Cache.SweepInterval, a.logger, a.metrics)
				go cleaner.Start(ctx)
			}

			// API
			handler := api.NewHandler(a.canon, a.metrics, a.logger)
			mux := http.NewServeMux()

			server := &http.Server{
				Addr:    a.cfg.Server.HTTPAddr,
				Handler: api.RegisterRoutes(mux, handler),
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.ListenAndServe()
			}()
			a.logger.Info(fmt.Sprintf("server started on %s (ttl=%s max_entries=%d)",
				a.cfg.Server.HTTPAddr, a.cache.TTL(), a.cfg.Cache.MaxEntries))

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	return cmd
}
