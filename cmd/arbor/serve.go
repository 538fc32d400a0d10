package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/presentation/tui"
	httpadapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/muesli/termenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editor server",
	Long: `Opens the configured document (or the default scene) and exposes the editor as a
JSON API over HTTP, with a server-sent stream of committed render states at /events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd, false)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		ctx := cli.NewShutdownContext(cmd.Context())
		defer ctx.Stop()

		s, err := cli.NewSession(ctx, cfg, logger, cli.BuildOptions{})
		if err != nil {
			return err
		}
		defer s.Close()

		opts := []httpadapter.Option{
			httpadapter.WithVersion(arbor.Version),
			httpadapter.WithStreams(s.Streams),
			httpadapter.WithLogger(logger),
		}
		if cfg.HTTP.Metrics {
			opts = append(opts, httpadapter.WithMetrics(promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})))
		}
		srv := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           httpadapter.NewHandler(s.Editor, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if isTTY(stdout) {
			tui.PrintBanner(cmd.OutOrStdout(), termenv.ColorProfile())
		}
		logger.Info("starting arbor server", "addr", srv.Addr, "store", cfg.Store.Backend)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.GetShutdownTimeout())
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			return nil
		})

		err = g.Wait()
		logger.Info("arbor server stopped", "signal", ctx.Signal())
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides http.addr)")
}
