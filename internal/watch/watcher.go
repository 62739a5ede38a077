// Package watch triggers deployments from vault changes and on a schedule.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/blogsync/internal/config"
	"git.home.luguber.info/inful/blogsync/internal/deploy"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// Deployer runs one deployment. *deploy.Orchestrator implements it.
type Deployer interface {
	Deploy(ctx context.Context, target string) deploy.Result
}

// maxDelayFactor scales the quiet window into the longest postponement.
const maxDelayFactor = 10

// Watcher deploys a target after its vault posts or images change.
type Watcher struct {
	deployer   Deployer
	watcher    *fsnotify.Watcher
	dirs       map[string]string // watched directory -> target
	debouncers map[string]*Debouncer
}

// NewWatcher watches the source directories of every named target. Writes
// within debounce of each other produce a single deployment.
func NewWatcher(cfg *config.Config, targets []string, deployer Deployer, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		deployer:   deployer,
		watcher:    fw,
		dirs:       make(map[string]string),
		debouncers: make(map[string]*Debouncer),
	}

	for _, name := range targets {
		t, err := cfg.Target(name)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		dirs := []string{t.Paths.PostsSource, t.Paths.ImagesSource}
		if t.AIImages {
			dirs = append(dirs, t.Paths.AIImagesSource)
		}
		for _, dir := range dirs {
			abs, err := filepath.Abs(dir)
			if err != nil {
				abs = dir
			}
			if err := fw.Add(abs); err != nil {
				_ = fw.Close()
				return nil, ferrors.FileSystemError("failed to watch directory").
					WithCause(err).
					WithContext("path", abs).
					WithContext("target", name).
					Build()
			}
			w.dirs[abs] = name
		}

		d, err := NewDebouncer(DebouncerConfig{QuietWindow: debounce, MaxDelay: maxDelayFactor * debounce}, w.fireFor(name))
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		w.debouncers[name] = d
	}
	return w, nil
}

func (w *Watcher) fireFor(target string) func(context.Context, Batch) {
	return func(ctx context.Context, b Batch) {
		slog.Info("Vault changed, deploying",
			logfields.Target(target),
			slog.Int("events", b.Count),
			slog.String("last", b.LastReason),
			slog.String("cause", b.Cause))
		res := w.deployer.Deploy(ctx, target)
		logResult(res)
	}
}

// Run blocks until ctx is done, then closes the file watcher.
func (w *Watcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	for _, d := range w.debouncers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.Run(ctx)
		}()
	}
	defer func() {
		if err := w.watcher.Close(); err != nil {
			slog.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	slog.Info("Watching vaults", slog.Int("directories", len(w.dirs)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Vault watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !relevant(event) {
		return
	}
	target, ok := w.dirs[filepath.Dir(event.Name)]
	if !ok {
		return
	}
	slog.Debug("Vault change detected", logfields.Target(target), logfields.Path(event.Name), slog.String("op", event.Op.String()))
	w.debouncers[target].Request(event.Op.String() + " " + filepath.Base(event.Name))
}

// relevant drops permission-only changes and editor scratch files.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case strings.HasPrefix(base, "."):
		return false
	case strings.HasSuffix(base, "~"), strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".tmp"):
		return false
	}
	return true
}

func logResult(res deploy.Result) {
	attrs := []any{logfields.Target(res.Target), logfields.RunID(res.RunID), slog.String("kind", string(res.Kind))}
	if res.BlogURL != "" {
		attrs = append(attrs, logfields.URL(res.BlogURL))
	}
	if res.Success {
		slog.Info(res.Message, attrs...)
		return
	}
	slog.Error(res.Message, attrs...)
}
