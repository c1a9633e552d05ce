package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/meur/gameshelf/internal/api"
	"github.com/meur/gameshelf/internal/catalog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var staticDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&staticDir, "static", "", "Serve a built frontend from this directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	sh, err := openShelf()
	if err != nil {
		return err
	}
	defer sh.Close()

	rawg := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Timeout)
	defer rawg.Close()
	if cfg.Catalog.APIKey == "" {
		logger.Warn("catalog api key not set, catalog lookups will fail")
	}

	server := api.New(sh, rawg, logger, cfg.Server.AllowedOrigins)
	if staticDir != "" {
		server.ServeStatic(http.Dir(filepath.Clean(staticDir)))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gameshelf API starting", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
