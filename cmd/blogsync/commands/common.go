// Package commands implements the blogsync command line.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogsync/internal/command"
	"git.home.luguber.info/inful/blogsync/internal/config"
	"git.home.luguber.info/inful/blogsync/internal/deploy"
	"git.home.luguber.info/inful/blogsync/internal/history"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
	"git.home.luguber.info/inful/blogsync/internal/metrics"
	"git.home.luguber.info/inful/blogsync/internal/notify"
)

// LogLevelEnv overrides the log level when -v is not given.
const LogLevelEnv = "BLOGSYNC_LOG_LEVEL"

// Global carries process-wide state into every command.
type Global struct {
	Ctx    context.Context
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"blogsync.yaml" env:"BLOGSYNC_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Deploy  DeployCmd  `cmd:"" help:"Sync, build and publish one target"`
	URL     URLCmd     `cmd:"" name:"url" help:"Print the URL of the newest post of a target"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	History HistoryCmd `cmd:"" help:"List recent deployments"`
	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP deploy trigger"`
	Watch   WatchCmd   `cmd:"" help:"Deploy when vault content changes and on a schedule"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel picks debug for -v, otherwise the level named by
// BLOGSYNC_LOG_LEVEL, defaulting to info.
func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// services are the long-lived dependencies a command wires into the orchestrator.
type services struct {
	history  history.Store
	notifier notify.Notifier
}

// openServices opens the optional history store and notifier named by cfg.
// A notifier that cannot connect is logged and replaced by a no-op so a
// broker outage never blocks publishing.
func openServices(cfg *config.Config) (*services, error) {
	s := &services{notifier: notify.Noop{}}
	if cfg.History.Path != "" {
		store, err := history.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		s.history = store
	}
	if cfg.Notify.NATSURL != "" {
		n, err := notify.NewNATSNotifier(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			slog.Warn("Deployment notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			s.notifier = n
		}
	}
	return s, nil
}

func (s *services) Close() {
	s.notifier.Close()
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			slog.Warn("Failed to close history store", logfields.Error(err))
		}
	}
}

// newOrchestrator builds the orchestrator shared by deploy, serve and watch.
func newOrchestrator(cfg *config.Config, svc *services, recorder metrics.Recorder, extra ...deploy.Option) *deploy.Orchestrator {
	opts := []deploy.Option{deploy.WithNotifier(svc.notifier)}
	if svc.history != nil {
		opts = append(opts, deploy.WithHistory(svc.history))
	}
	if recorder != nil {
		opts = append(opts, deploy.WithRecorder(recorder))
	}
	opts = append(opts, extra...)
	return deploy.New(cfg, command.NewExecRunner(cfg.CommandTimeout), opts...)
}
