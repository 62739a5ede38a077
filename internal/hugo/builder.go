// Package hugo runs the Hugo static site generator over a site tree and
// inspects its output.
package hugo

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/blogsync/internal/command"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

// Builder renders a Hugo site in place.
type Builder interface {
	Build(ctx context.Context, sitePath string) error
}

// BinaryBuilder invokes the `hugo` binary through a command runner. The
// runner bounds the call with its timeout; failures are not retried.
type BinaryBuilder struct {
	runner command.Runner
	args   []string
}

// NewBinaryBuilder returns a builder that runs `hugo` with optional extra args.
func NewBinaryBuilder(runner command.Runner, args ...string) *BinaryBuilder {
	return &BinaryBuilder{runner: runner, args: args}
}

func (b *BinaryBuilder) Build(ctx context.Context, sitePath string) error {
	if stat, err := os.Stat(sitePath); err != nil || !stat.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", sitePath)
		}
		return ferrors.HugoError("site directory missing").
			WithCause(fmt.Errorf("%w: %w", ErrSiteNotFound, err)).
			WithContext("path", sitePath).
			Build()
	}

	slog.Info("Building site", logfields.Path(sitePath))
	res, err := b.runner.Run(ctx, sitePath, "hugo", b.args...)
	if res.Stdout != "" {
		slog.Debug("hugo stdout", slog.String("output", res.Stdout))
	}
	if res.Stderr != "" {
		slog.Warn("hugo stderr", slog.String("error_output", res.Stderr))
	}
	if err != nil {
		return ferrors.HugoError("hugo could not run").
			WithCause(err).
			WithContext("path", sitePath).
			Build()
	}
	if !res.Success() {
		cause := fmt.Errorf("%w: exit status %d", ErrHugoExecutionFailed, res.ExitCode)
		if out := strings.TrimSpace(res.Output()); out != "" {
			cause = fmt.Errorf("%w: exit status %d: %s", ErrHugoExecutionFailed, res.ExitCode, out)
		}
		return ferrors.HugoError("hugo build failed").
			WithCause(cause).
			WithContext("path", sitePath).
			WithContext("exit_code", res.ExitCode).
			Build()
	}
	slog.Info("Site built", logfields.Path(sitePath))
	return nil
}

// NoopBuilder skips rendering, for sites rendered out of band.
type NoopBuilder struct{}

func (NoopBuilder) Build(_ context.Context, sitePath string) error {
	slog.Debug("NoopBuilder skipping render", logfields.Path(sitePath))
	return nil
}
