package commands

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogsync/internal/config"
	"git.home.luguber.info/inful/blogsync/internal/server/httpserver"
	"git.home.luguber.info/inful/blogsync/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Targets  []string      `short:"t" help:"Targets to watch (default: all configured)"`
	Debounce time.Duration `help:"Quiet period before deploying (overrides watch.debounce)"`
	Schedule time.Duration `help:"Also deploy every interval (overrides watch.schedule)"`
	Serve    bool          `help:"Also serve the HTTP deploy trigger"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if w.Debounce > 0 {
		cfg.Watch.Debounce = w.Debounce
	}
	if w.Schedule > 0 {
		cfg.Watch.Schedule = w.Schedule
	}
	targets := w.Targets
	if len(targets) == 0 {
		targets = cfg.TargetNames()
	}

	svc, err := openServices(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	recorder := newPrometheusRecorder()
	orchestrator := newOrchestrator(cfg, svc, recorder)

	watcher, err := watch.NewWatcher(cfg, targets, orchestrator, cfg.Watch.Debounce)
	if err != nil {
		return err
	}

	if cfg.Watch.Schedule > 0 {
		scheduler, err := watch.NewScheduler(orchestrator)
		if err != nil {
			return err
		}
		for _, t := range targets {
			if _, err := scheduler.ScheduleDeploy(g.Ctx, cfg.Watch.Schedule, t); err != nil {
				return err
			}
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				slog.Warn("Scheduler shutdown failed", slog.Any("error", err))
			}
		}()
	}

	if w.Serve {
		srv := httpserver.New(httpserver.Options{
			Addr:     cfg.Server.Addr,
			Deployer: orchestrator,
			History:  svc.history,
			Metrics:  recorder.Handler(),
		})
		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe(g.Ctx) }()
		defer func() {
			if err := <-errCh; err != nil {
				slog.Error("HTTP server stopped", slog.Any("error", err))
			}
		}()
	}

	slog.Info("Watching targets", slog.Any("targets", targets), slog.Duration("debounce", cfg.Watch.Debounce))
	return watcher.Run(g.Ctx)
}
