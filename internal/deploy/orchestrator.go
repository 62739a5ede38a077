// Package deploy runs the content sync, image sync, Hugo build and git
// publish stages for one target and reports a single Result.
package deploy

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/blogsync/internal/command"
	"git.home.luguber.info/inful/blogsync/internal/config"
	"git.home.luguber.info/inful/blogsync/internal/content"
	"git.home.luguber.info/inful/blogsync/internal/history"
	"git.home.luguber.info/inful/blogsync/internal/hugo"
	"git.home.luguber.info/inful/blogsync/internal/images"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
	"git.home.luguber.info/inful/blogsync/internal/metrics"
	"git.home.luguber.info/inful/blogsync/internal/notify"
	"git.home.luguber.info/inful/blogsync/internal/observability"
	"git.home.luguber.info/inful/blogsync/internal/publish"
)

// Stage names used for logs and metrics.
const (
	StageContentSync = "content_sync"
	StageImageSync   = "image_sync"
	StageHugoBuild   = "hugo_build"
	StageGitPublish  = "git_publish"
)

// Orchestrator deploys configured targets. It is safe for concurrent use;
// runs on the same target are serialized.
type Orchestrator struct {
	cfg      *config.Config
	runner   command.Runner
	builder  hugo.Builder
	recorder metrics.Recorder
	history  history.Store
	notifier notify.Notifier
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBuilder replaces the Hugo builder. The default runs the hugo binary
// through the orchestrator's runner.
func WithBuilder(b hugo.Builder) Option {
	return func(o *Orchestrator) { o.builder = b }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithHistory records every run in store.
func WithHistory(store history.Store) Option {
	return func(o *Orchestrator) { o.history = store }
}

// WithNotifier announces every finished run.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// New returns an orchestrator for cfg. Every external command goes through runner.
func New(cfg *config.Config, runner command.Runner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		runner:   runner,
		recorder: metrics.NoopRecorder{},
		notifier: notify.Noop{},
		now:      time.Now,
		newID:    uuid.NewString,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.builder == nil {
		o.builder = hugo.NewBinaryBuilder(runner)
	}
	return o
}

// Targets lists the configured target names.
func (o *Orchestrator) Targets() []string {
	return o.cfg.TargetNames()
}

// Deploy runs the full pipeline for the named target. It never returns an
// error: every failure is reported in the Result.
func (o *Orchestrator) Deploy(ctx context.Context, targetName string) Result {
	start := o.now()
	run := NewSyncRun(o.newID(), targetName, start)
	ctx = observability.WithTarget(observability.WithRunID(ctx, run.ID), targetName)

	res := o.deploy(ctx, run)
	res.RunID = run.ID
	res.Target = targetName
	res.Changes = run.Changed()
	res.Counts = run.Counts()
	res.Duration = o.now().Sub(start)

	o.finish(ctx, run, res)
	return res
}

func (o *Orchestrator) deploy(ctx context.Context, run *SyncRun) Result {
	target, err := o.cfg.Target(run.Target)
	if err != nil {
		return Result{Kind: KindInvalidTarget, Message: MsgInvalidTarget + ": " + run.Target}
	}

	unlock := o.lock(target.Name)
	defer unlock()

	observability.InfoContext(ctx, "Starting deployment",
		slog.String("notes", target.NotesRoot),
		slog.String("site", target.SiteRoot))

	posts := content.NewSyncer(target)
	if err := o.stage(ctx, run, StageContentSync, func(ctx context.Context) error {
		return posts.Sync(ctx, run)
	}); err != nil {
		return Result{Kind: KindContentSyncFailed, Message: failure(MsgContentSyncFailed, err)}
	}

	if err := o.stage(ctx, run, StageImageSync, func(ctx context.Context) error {
		return images.NewSyncer(target).Sync(ctx, run)
	}); err != nil {
		return Result{Kind: KindImageSyncFailed, Message: failure(MsgImageSyncFailed, err)}
	}

	if !run.Changed() {
		o.skip(ctx, run, StageHugoBuild, StageGitPublish)
		observability.InfoContext(ctx, "No changes detected")
		res := Result{Success: true, Kind: KindNoChanges, Message: MsgNoChanges}
		o.describeLatest(ctx, posts, target, &res)
		return res
	}
	observability.InfoContext(ctx, "Changes detected", slog.Any("reasons", run.Reasons()))

	if err := o.stage(ctx, run, StageHugoBuild, func(ctx context.Context) error {
		return o.builder.Build(ctx, target.SiteRoot)
	}); err != nil {
		o.skip(ctx, run, StageGitPublish)
		return Result{Kind: KindBuildFailed, Message: failure(MsgBuildFailed, err)}
	}

	opts := publish.OptionsFor(o.cfg.Git, target)
	opts.OnRetry = func(int) { o.recorder.IncPushRetry(target.Name) }
	var outcome publish.Outcome
	if err := o.stage(ctx, run, StageGitPublish, func(ctx context.Context) error {
		var err error
		outcome, err = publish.NewPublisher(o.runner, opts).WithClock(o.now).Publish(ctx, target.SiteRoot)
		return err
	}); err != nil {
		return Result{Kind: KindGitFailed, Message: failure(MsgGitFailed, err)}
	}
	if outcome.Status == publish.StatusNothingToCommit {
		observability.InfoContext(ctx, "Rendered site matched the last commit")
	}

	res := Result{Success: true, Kind: KindDeployed, Message: MsgDeployed, Commit: outcome.Commit}
	o.describeLatest(ctx, posts, target, &res)
	return res
}

// stage times fn and records its result.
func (o *Orchestrator) stage(ctx context.Context, run *SyncRun, name string, fn func(context.Context) error) error {
	ctx = observability.WithStage(ctx, name)
	started := time.Now()
	err := fn(ctx)
	if err == nil {
		err = ctx.Err()
	}
	elapsed := time.Since(started)

	o.recorder.ObserveStageDuration(run.Target, name, elapsed)
	ms := logfields.DurationMS(float64(elapsed.Microseconds()) / 1000)
	switch {
	case err == nil:
		o.recorder.IncStageResult(run.Target, name, metrics.ResultSuccess)
		observability.DebugContext(ctx, "Stage completed", ms)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		o.recorder.IncStageResult(run.Target, name, metrics.ResultCanceled)
		observability.WarnContext(ctx, "Stage canceled", ms, logfields.Error(err))
	default:
		o.recorder.IncStageResult(run.Target, name, metrics.ResultFailed)
		observability.ErrorContext(ctx, "Stage failed", ms, logfields.Error(err))
	}
	return err
}

func (o *Orchestrator) skip(ctx context.Context, run *SyncRun, stages ...string) {
	for _, name := range stages {
		o.recorder.IncStageResult(run.Target, name, metrics.ResultSkipped)
		observability.DebugContext(observability.WithStage(ctx, name), "Stage skipped")
	}
}

// describeLatest fills the URL of the newest post. When the site has been
// rendered, the page title Hugo produced is compared with the source title.
func (o *Orchestrator) describeLatest(ctx context.Context, posts *content.Syncer, target config.Target, res *Result) {
	post, err := posts.LatestPost()
	if err != nil {
		observability.WarnContext(ctx, "Could not determine latest post URL", logfields.Error(err))
		return
	}
	res.BlogURL = post.URL
	res.Title = post.Title

	rendered, err := hugo.RenderedTitle(target.SiteRoot, post.Slug)
	if err != nil {
		observability.DebugContext(ctx, "Rendered page not inspected", logfields.Error(err))
		return
	}
	if post.Title != "" && rendered != post.Title {
		observability.WarnContext(ctx, "Rendered title differs from post title",
			logfields.File(post.Name),
			slog.String("source_title", post.Title),
			slog.String("rendered_title", rendered))
	}
	if res.Title == "" {
		res.Title = rendered
	}
}

// finish records the result in metrics, history and the notifier. Failures
// there are logged and never change the result.
func (o *Orchestrator) finish(ctx context.Context, run *SyncRun, res Result) {
	o.recorder.ObserveDeployDuration(run.Target, res.Duration)
	o.recorder.IncDeployOutcome(run.Target, string(res.Kind))
	o.recorder.AddSyncCounts(run.Target, res.Counts.Map())

	attrs := []slog.Attr{
		slog.String("kind", string(res.Kind)),
		slog.Bool("changes", res.Changes),
		logfields.DurationMS(float64(res.Duration.Microseconds()) / 1000),
	}
	if res.Success {
		observability.InfoContext(ctx, res.Message, attrs...)
	} else {
		observability.ErrorContext(ctx, res.Message, attrs...)
	}

	// Recording happens even when the caller has gone away.
	ctx = context.WithoutCancel(ctx)

	if o.history != nil {
		rec := history.Record{
			RunID:      res.RunID,
			Target:     res.Target,
			Kind:       string(res.Kind),
			Success:    res.Success,
			Message:    res.Message,
			Changes:    res.Changes,
			Commit:     res.Commit,
			BlogURL:    res.BlogURL,
			Counts:     res.Counts.Map(),
			StartedAt:  run.StartedAt,
			DurationMS: res.Duration.Milliseconds(),
		}
		if err := o.history.Append(ctx, rec); err != nil {
			observability.WarnContext(ctx, "Failed to record deployment history", logfields.Error(err))
		}
	}

	ev := notify.Event{
		RunID:     res.RunID,
		Target:    res.Target,
		Kind:      string(res.Kind),
		Success:   res.Success,
		Message:   res.Message,
		Commit:    res.Commit,
		BlogURL:   res.BlogURL,
		Timestamp: o.now(),
	}
	if err := o.notifier.Notify(ctx, ev); err != nil {
		observability.WarnContext(ctx, "Failed to publish deployment event", logfields.Error(err))
	}
}

// lock serializes runs on the same target and returns the unlock function.
func (o *Orchestrator) lock(target string) func() {
	o.mu.Lock()
	l, ok := o.locks[target]
	if !ok {
		l = &sync.Mutex{}
		o.locks[target] = l
	}
	o.mu.Unlock()

	l.Lock()
	return l.Unlock
}
