package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsync/internal/command"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

func TestClassifyCommand_Success(t *testing.T) {
	assert.NoError(t, ClassifyCommand("add", command.Result{ExitCode: 0}, nil))
}

func TestClassifyCommand(t *testing.T) {
	cases := []struct {
		name     string
		stderr   string
		retry    ferrors.RetryStrategy
		diverged bool
	}{
		{"network", "fatal: unable to access 'https://x/': Could not resolve host: x", ferrors.RetryBackoff, false},
		{"hangup", "fatal: the remote end hung up unexpectedly", ferrors.RetryBackoff, false},
		{"rejected", " ! [rejected]        main -> main (non-fast-forward)", ferrors.RetryUserAction, true},
		{"auth", "fatal: Authentication failed for 'https://x/'", ferrors.RetryUserAction, false},
		{"other", "fatal: pathspec 'x' did not match any files", ferrors.RetryNever, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ClassifyCommand("push", command.Result{ExitCode: 128, Stderr: tc.stderr}, nil)
			c, ok := ferrors.AsClassified(err)
			require.True(t, ok)
			assert.Equal(t, ferrors.CategoryGit, c.Category())
			assert.Equal(t, tc.retry, c.RetryStrategy())
			_, diverged := c.Context().Get("diverged")
			assert.Equal(t, tc.diverged, diverged)
			assert.Contains(t, err.Error(), "git push failed")
		})
	}
}

func TestClassifyCommand_RunError(t *testing.T) {
	err := ClassifyCommand("commit", command.Result{ExitCode: -1}, command.ErrTimeout)
	require.ErrorIs(t, err, command.ErrTimeout)
}

func TestClassifyCommand_SilentFailure(t *testing.T) {
	err := ClassifyCommand("split", command.Result{ExitCode: 2}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 2")
}
