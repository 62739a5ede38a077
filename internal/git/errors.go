package git

import (
	"errors"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/blogsync/internal/command"
)

// ClassifyCommand turns a failed git invocation into a ClassifiedError.
// It returns nil when the command ran and exited zero. Network failures are
// marked retryable; rejected pushes and authentication problems need the
// user to act.
func ClassifyCommand(op string, res command.Result, runErr error) error {
	if runErr == nil && res.Success() {
		return nil
	}

	output := strings.TrimSpace(res.Output())
	builder := GitError("git " + op + " failed").
		WithContext("op", op).
		WithContext("exit_code", res.ExitCode)
	switch {
	case runErr != nil:
		builder.WithCause(runErr)
	case output != "":
		builder.WithCause(errors.New(output))
	default:
		builder.WithCause(errors.New("exit status " + strconv.Itoa(res.ExitCode)))
	}

	l := strings.ToLower(output)
	switch {
	case strings.Contains(l, "authentication failed") || strings.Contains(l, "could not read username") ||
		strings.Contains(l, "permission denied") || strings.Contains(l, "invalid credentials"):
		builder.UserAction()
	case strings.Contains(l, "non-fast-forward") || strings.Contains(l, "[rejected]") || strings.Contains(l, "diverged"):
		builder.WithContext("diverged", true).UserAction()
	case strings.Contains(l, "could not resolve host") || strings.Contains(l, "connection reset") ||
		strings.Contains(l, "connection timed out") || strings.Contains(l, "remote end hung up") ||
		strings.Contains(l, "early eof") || strings.Contains(l, "no route to host") ||
		strings.Contains(l, "the requested url returned error: 5"):
		builder.Retryable()
	}
	return builder.Build()
}
