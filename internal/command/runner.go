// Package command runs external programs (hugo, git) with a bounded timeout
// and captured output.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"git.home.luguber.info/inful/blogsync/internal/logfields"
)

var (
	// ErrTimeout indicates the command did not finish within the runner timeout.
	ErrTimeout = errors.New("command timed out")
	// ErrNotFound indicates the executable could not be located on PATH.
	ErrNotFound = errors.New("executable not found")
)

// Result is the captured outcome of a finished process. ExitCode is -1 when
// the process never produced an exit status.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports a zero exit status.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Output returns stderr, falling back to stdout when stderr is empty.
func (r Result) Output() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Runner executes a program in a working directory and reports its result.
//
// A non-zero exit status is NOT an error: callers inspect Result.ExitCode
// (git diff --quiet relies on exit 1). An error is returned only when the
// process could not be started, timed out or was canceled.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// ExecRunner runs programs through os/exec.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner returns a runner bounding every command by timeout (0 disables the bound).
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	if _, err := exec.LookPath(name); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	parent := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	slog.Debug("Running command", logfields.Command(name, args...), logfields.Path(dir))
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: -1}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	slog.Debug("Command finished",
		logfields.Command(name, args...),
		logfields.ExitCode(res.ExitCode),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	if ctxErr := ctx.Err(); ctxErr != nil {
		// A caller deadline or cancellation is not a runner timeout.
		if parentErr := parent.Err(); parentErr != nil {
			return res, parentErr
		}
		return res, fmt.Errorf("%w after %s: %s", ErrTimeout, r.Timeout, name)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return res, fmt.Errorf("run %s: %w", name, err)
	}
	return res, nil
}
