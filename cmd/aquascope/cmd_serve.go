package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"aquascope/internal/auth"
	"aquascope/internal/config"
	"aquascope/internal/metrics"
	"aquascope/internal/scheduler"
	"aquascope/internal/server"
	"aquascope/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if cfg.Auth.Secret == "" {
		return fmt.Errorf("auth.secret is required (set it in the config file or AQUASCOPE_SECRET)")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database.Path, logger.Named("store"))
	if err != nil {
		return err
	}
	defer st.Close()

	tokens, err := auth.NewTokenIssuer(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	srv := server.New(cfg, st, tokens, m, logger.Logger)
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening",
			zap.String("addr", cfg.Server.Addr),
			zap.String("db", cfg.Database.Path))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if cfg.Scheduler.Enabled {
		sweep, err := scheduler.New(st, m, logger.Named("sweep"), cfg.Scheduler.SweepSpec)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return sweep.Start(ctx)
		})
	}

	// Hot-reload the log level when the config file changes. Everything
	// else requires a restart.
	g.Go(func() error {
		err := config.Watch(ctx, cfgPath, logger.Named("config"), func(next *config.Config) {
			logger.SetLevel(next.Logging.Level)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("stopped")
	return nil
}
