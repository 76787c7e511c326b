// Package app assembles the bot from its parts and runs it.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"sentarb/internal/config"
	"sentarb/internal/engine"
	"sentarb/internal/executor"
	"sentarb/internal/gateway/bankr"
	"sentarb/internal/logger"
	"sentarb/internal/notifier"
	"sentarb/internal/pkg/lock"
	"sentarb/internal/scheduler"
	"sentarb/internal/store"
	"sentarb/internal/store/cyclelog"
	"sentarb/internal/store/joblog"
	statushttp "sentarb/internal/transport/http"
)

type App struct {
	cfg    *config.Config
	engine *engine.Engine
	server *statushttp.Server
	cycles *cyclelog.Store
	jobs   *joblog.Store
}

// NewApp wires config, storage, the gateway client and the trading engine.
func NewApp(cfg *config.Config) (*App, error) {
	apiKey := os.Getenv(cfg.API.KeyEnv)
	if apiKey == "" && !cfg.Trading.DryRun {
		return nil, fmt.Errorf("environment variable %s is empty; set it or enable dry_run", cfg.API.KeyEnv)
	}

	dataDir := cfg.Storage.DataDir
	st, err := store.New(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	cycles, err := cyclelog.Open(storagePath(dataDir, cfg.Storage.CycleDBPath))
	if err != nil {
		return nil, fmt.Errorf("open cycle log: %w", err)
	}
	jobs, err := joblog.Open(storagePath(dataDir, cfg.Storage.JobDBPath))
	if err != nil {
		return nil, fmt.Errorf("open job log: %w", err)
	}

	client := bankr.NewClient(cfg.API, apiKey)
	client.SetRecorder(jobs)

	notify := notifier.FromConfig(cfg.Notify)
	exec := executor.New(client, st, notify, cfg.Trading.DryRun)
	cl := lock.New(filepath.Join(dataDir, "sentarb.lock"))
	eng := engine.New(cfg, client, st, exec, notify, cycles, cl)

	var server *statushttp.Server
	if cfg.App.HTTPAddr != "" {
		server, err = statushttp.NewServer(statushttp.ServerConfig{
			Addr:   cfg.App.HTTPAddr,
			Store:  st,
			Cycles: cycles,
			Jobs:   jobs,
		})
		if err != nil {
			return nil, fmt.Errorf("build status server: %w", err)
		}
	}

	return &App{cfg: cfg, engine: eng, server: server, cycles: cycles, jobs: jobs}, nil
}

// Run drives the cycle scheduler and the status API until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.jobs.Close()

	interval := a.cfg.CycleIntervalDuration()
	if interval <= 0 {
		logger.Infof("no cycle_interval configured, running a single cycle")
		a.engine.RunCycle(ctx)
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)

	sched := scheduler.NewIntervalScheduler(ctx, interval)
	sched.Name = "cycle"
	sched.RunImmediately = a.cfg.Trading.RunImmediately
	g.Go(func() error {
		sched.Start(func() {
			a.engine.RunCycle(ctx)
		})
		return nil
	})

	if a.server != nil {
		g.Go(func() error {
			logger.Infof("status API listening on %s", a.server.Addr())
			return a.server.Start(ctx)
		})
	}

	return g.Wait()
}

func storagePath(dataDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataDir, p)
}
