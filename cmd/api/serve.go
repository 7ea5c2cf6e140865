package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/geocoder89/cohorthub/internal/auth"
	"github.com/geocoder89/cohorthub/internal/config"
	httpx "github.com/geocoder89/cohorthub/internal/http"
	"github.com/geocoder89/cohorthub/internal/http/middlewares"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/spf13/cobra"
)

type serveConfig struct {
	cohortsFile  string
	studentsFile string
}

func NewServeCmd() *cobra.Command {
	sc := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), sc)
		},
	}

	cmd.Flags().StringVar(&sc.cohortsFile, "seed-cohorts", "", "cohorts JSON file to load before serving")
	cmd.Flags().StringVar(&sc.studentsFile, "seed-students", "", "students JSON file to load before serving")

	return cmd
}

func runServe(ctx context.Context, sc *serveConfig) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	if sc.cohortsFile != "" || sc.studentsFile != "" {
		if _, err := runSeedFiles(ctx, d, sc.cohortsFile, sc.studentsFile); err != nil {
			return err
		}
	}

	var limiter middlewares.WindowCounter
	if d.redis != nil {
		limiter = d.redis
	}

	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Config:   cfg,
		Users:    d.users,
		Students: d.students,
		Linker:   d.cohortLinker(),
		Tokens:   auth.NewManager(cfg.TokenSecret, auth.TokenTTL),
		Limiter:  limiter,
		Checks:   d.readinessChecks(),
		Prom:     d.prom,
		Gatherer: d.reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver, "redis", cfg.Redis.Enabled())

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Error("server failed", "err", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
