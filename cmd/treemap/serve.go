package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/street-tree-map/internal/adapter/geojsonfile"
	httpadapter "github.com/couchcryptid/street-tree-map/internal/adapter/http"
	"github.com/couchcryptid/street-tree-map/internal/config"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated artifacts with health, readiness and metrics endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.HTTPAddr = addr
			}
			geoPath := a.cfg.Path(config.GeoJSONFile)
			artifacts := []httpadapter.Artifact{
				{Route: "/" + config.GeoJSONFile, Path: geoPath, ContentType: geojsonfile.ContentType},
				{Route: "/" + config.LookupFile, Path: a.cfg.Path(config.LookupFile), ContentType: "application/json"},
				{Route: "/" + config.NeighborhoodsFile, Path: a.cfg.Path(config.NeighborhoodsFile), ContentType: "application/json"},
				{Route: "/" + config.GenusListFile, Path: a.cfg.Path(config.GenusListFile), ContentType: "application/json"},
			}
			srv := httpadapter.NewServer(a.cfg.HTTPAddr, artifacts, geojsonfile.NewReadiness(geoPath), a.registry, a.logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return err
				}
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http server shutdown error", "error", err)
				return err
			}

			a.logger.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}
