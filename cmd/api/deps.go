package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/cohorthub/internal/cache"
	"github.com/geocoder89/cohorthub/internal/config"
	"github.com/geocoder89/cohorthub/internal/db"
	"github.com/geocoder89/cohorthub/internal/http/handlers"
	"github.com/geocoder89/cohorthub/internal/linker"
	"github.com/geocoder89/cohorthub/internal/observability"
	"github.com/geocoder89/cohorthub/internal/redisclient"
	"github.com/geocoder89/cohorthub/internal/repo/memory"
	"github.com/geocoder89/cohorthub/internal/repo/postgres"
	"github.com/geocoder89/cohorthub/internal/seed"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type cohortStore interface {
	linker.CohortFinder
	seed.CohortWriter
}

type studentStore interface {
	handlers.StudentStore
}

type userStore interface {
	handlers.UserReader
	handlers.UserWriter
	handlers.UserLister
}

// deps is everything the subcommands share. Fields for disabled backends stay nil.
type deps struct {
	cfg config.Config
	log *slog.Logger

	pool  *pgxpool.Pool
	redis *redisclient.Client
	cache *cache.Cohorts

	users    userStore
	cohorts  cohortStore
	students studentStore

	reg  *prometheus.Registry
	prom *observability.Prom
}

func buildDeps(ctx context.Context, cfg config.Config, log *slog.Logger) (*deps, error) {
	d := &deps{cfg: cfg, log: log}

	d.reg = prometheus.NewRegistry()
	d.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	d.prom = observability.NewProm(d.reg)

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		d.users = memory.NewUsersRepo()
		d.cohorts = memory.NewCohortsRepo()
		d.students = memory.NewStudentsRepo()
		log.Warn("using in-memory store; data is lost on exit")

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.pool = pool
		d.users = postgres.NewUsersRepo(pool, d.prom)
		d.cohorts = postgres.NewCohortsRepo(pool, d.prom)
		d.students = postgres.NewStudentsRepo(pool, d.prom)
	}

	if cfg.Redis.Enabled() {
		d.redis = redisclient.New(redisclient.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		if err := d.redis.Ping(ctx); err != nil {
			d.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}

		d.cache = cache.NewCohorts(d.redis.Raw(), cache.DefaultTTL)
	}

	return d, nil
}

func (d *deps) cohortLinker() *linker.Linker {
	opts := []linker.Option{linker.WithLogger(d.log), linker.WithMetrics(d.prom)}
	if d.cache != nil {
		opts = append(opts, linker.WithCache(d.cache))
	}

	return linker.New(d.cohorts, opts...)
}

func (d *deps) seeder() *seed.Seeder {
	var clearer seed.CacheClearer
	if d.cache != nil {
		clearer = d.cache
	}

	return seed.New(d.cohorts, d.students, clearer, d.log)
}

func (d *deps) readinessChecks() map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{}
	if d.pool != nil {
		checks["postgres"] = d.pool
	}
	if d.redis != nil {
		checks["redis"] = d.redis
	}

	return checks
}

func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.pool != nil {
		d.pool.Close()
	}
}

var (
	_ cohortStore = (*memory.CohortsRepo)(nil)
	_ cohortStore = (*postgres.CohortsRepo)(nil)
	_ userStore   = (*memory.UsersRepo)(nil)
	_ userStore   = (*postgres.UsersRepo)(nil)
)
