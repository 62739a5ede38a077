// Package publish commits a rendered site and pushes it, then force-pushes
// the build output as a subtree split to the hosting deploy branch.
package publish

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/blogsync/internal/command"
	"git.home.luguber.info/inful/blogsync/internal/config"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/git"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
	"git.home.luguber.info/inful/blogsync/internal/retry"
)

// CommitTimeFormat renders the timestamp in commit messages.
const CommitTimeFormat = "2006-01-02 15:04:05"

// Status is the kind of result a publish produced.
type Status string

const (
	// StatusNothingToCommit means the index had no staged differences.
	StatusNothingToCommit Status = "nothing_to_commit"
	// StatusPublished means a commit was pushed and the deploy branch updated.
	StatusPublished Status = "published"
)

// Outcome describes a successful publish.
type Outcome struct {
	Status  Status
	Branch  string // checked-out branch of the site work tree
	Commit  string
	Message string
}

// Options name the remote and branches a publish touches.
type Options struct {
	Remote             string
	MainBranch         string
	SubtreePrefix      string
	DeployBranch       string // local throw-away branch
	DeployRemoteBranch string // branch on the remote the host serves
	Retry              retry.Policy

	// OnRetry, when set, is called before each repeated push attempt.
	OnRetry func(attempt int)
}

// OptionsFor combines the git settings with a target's deploy branches.
func OptionsFor(g config.GitConfig, t config.Target) Options {
	return Options{
		Remote:             g.Remote,
		MainBranch:         g.MainBranch,
		SubtreePrefix:      g.SubtreePrefix,
		DeployBranch:       t.DeployBranch,
		DeployRemoteBranch: t.DeployRemoteBranch,
		Retry:              retry.FromConfig(g.Retry),
	}
}

// Publisher runs the git sequence for one site.
type Publisher struct {
	runner command.Runner
	opts   Options
	now    func() time.Time
}

// NewPublisher returns a publisher using runner for every git invocation.
func NewPublisher(runner command.Runner, opts Options) *Publisher {
	return &Publisher{runner: runner, opts: opts, now: time.Now}
}

// WithClock replaces the clock used for commit messages.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

// Publish stages everything under sitePath and, when the index differs from
// HEAD, commits, pushes the main branch and updates the deploy branch.
//
// Every step is checked: the first failing step aborts with an error. Removing
// a stale local deploy branch before the split may fail. The local deploy
// branch is always removed afterwards, and a failure to do so only logs.
func (p *Publisher) Publish(ctx context.Context, sitePath string) (Outcome, error) {
	repo, err := git.OpenWorkTree(sitePath)
	if err != nil {
		return Outcome{}, err
	}

	branch := repo.Branch()
	slog.Debug("Publishing site", logfields.Path(repo.Root()), slog.String("branch", branch))
	if branch != "" && branch != p.opts.MainBranch {
		slog.Warn("Checked-out branch differs from the pushed branch",
			slog.String("branch", branch), slog.String("push_branch", p.opts.MainBranch))
	}

	if err := p.git(ctx, sitePath, "add", "add", "."); err != nil {
		return Outcome{}, err
	}

	changed, err := p.hasStagedChanges(ctx, sitePath)
	if err != nil {
		return Outcome{}, err
	}
	if !changed {
		slog.Info("No staged changes, nothing to publish", logfields.Path(sitePath))
		return Outcome{Status: StatusNothingToCommit, Branch: branch}, nil
	}

	msg := "New Blog Post on " + p.now().Format(CommitTimeFormat)
	if err := p.git(ctx, sitePath, "commit", "commit", "-m", msg); err != nil {
		return Outcome{}, err
	}
	commit, err := repo.Head()
	if err != nil {
		slog.Warn("Could not read commit hash", logfields.Error(err))
	}

	if err := p.pushMain(ctx, sitePath); err != nil {
		return Outcome{}, err
	}
	if err := p.deployBranch(ctx, sitePath); err != nil {
		return Outcome{}, err
	}

	slog.Info("Published site", logfields.Path(sitePath), slog.String("commit", commit))
	return Outcome{Status: StatusPublished, Branch: branch, Commit: commit, Message: msg}, nil
}

// hasStagedChanges interprets `git diff --cached --quiet`: exit 1 means the
// index differs, exit 0 means it does not, anything else is a failure.
func (p *Publisher) hasStagedChanges(ctx context.Context, dir string) (bool, error) {
	res, err := p.runner.Run(ctx, dir, "git", "diff", "--cached", "--quiet")
	if err != nil {
		return false, git.ClassifyCommand("diff", res, err)
	}
	switch res.ExitCode {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, git.ClassifyCommand("diff", res, nil)
	}
}

func (p *Publisher) pushMain(ctx context.Context, dir string) error {
	return p.opts.Retry.Do(ctx, func(attempt int) error {
		if attempt > 0 {
			slog.Warn("Retrying push", slog.Int("attempt", attempt), slog.String("branch", p.opts.MainBranch))
			if p.opts.OnRetry != nil {
				p.opts.OnRetry(attempt)
			}
		}
		return p.git(ctx, dir, "push", "push", p.opts.Remote, p.opts.MainBranch)
	}, ferrors.IsRetryable)
}

func (p *Publisher) deployBranch(ctx context.Context, dir string) error {
	local := p.opts.DeployBranch

	if err := p.git(ctx, dir, "branch-delete", "branch", "-D", local); err != nil {
		slog.Debug("No stale deploy branch to remove", slog.String("branch", local))
	}

	defer func() {
		// The deploy context may already be canceled; cleanup gets its own.
		cleanupCtx := context.WithoutCancel(ctx)
		if err := p.git(cleanupCtx, dir, "branch-delete", "branch", "-D", local); err != nil {
			slog.Warn("Failed to remove local deploy branch", slog.String("branch", local), logfields.Error(err))
		}
	}()

	if err := p.git(ctx, dir, "subtree-split", "subtree", "split", "--prefix", p.opts.SubtreePrefix, "-b", local); err != nil {
		return err
	}
	refspec := local + ":" + p.opts.DeployRemoteBranch
	if err := p.git(ctx, dir, "deploy-push", "push", p.opts.Remote, refspec, "--force"); err != nil {
		return err
	}
	slog.Info("Deploy branch pushed", slog.String("refspec", refspec))
	return nil
}

func (p *Publisher) git(ctx context.Context, dir, op string, args ...string) error {
	res, err := p.runner.Run(ctx, dir, "git", args...)
	return git.ClassifyCommand(op, res, err)
}
