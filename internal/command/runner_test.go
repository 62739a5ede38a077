package command

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_CapturesOutput(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(5 * time.Second)

	res, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, "err\n", res.Output())
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(5 * time.Second)

	res, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo only-stdout; exit 1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.False(t, res.Success())
	assert.Equal(t, "only-stdout\n", res.Output())
}

func TestExecRunner_UsesWorkingDirectory(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	r := NewExecRunner(5 * time.Second)

	res, err := r.Run(context.Background(), dir, "sh", "-c", "ls marker || true; touch marker")
	require.NoError(t, err)
	require.True(t, res.Success())
	assert.FileExists(t, dir+"/marker")
}

func TestExecRunner_Timeout(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(50 * time.Millisecond)

	_, err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExecRunner_CallerDeadlineIsNotRunnerTimeout(t *testing.T) {
	requireShell(t)
	r := NewExecRunner(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.Run(ctx, t.TempDir(), "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestExecRunner_MissingBinary(t *testing.T) {
	r := NewExecRunner(time.Second)

	res, err := r.Run(context.Background(), t.TempDir(), "definitely-not-a-real-binary-blogsync")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, -1, res.ExitCode)
}
