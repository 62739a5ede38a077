// Package testutil holds shared fixtures for package tests: a scripted
// command runner, vault/site layouts and git repository helpers.
package testutil

import (
	"context"
	"strings"
	"sync"

	"git.home.luguber.info/inful/blogsync/internal/command"
)

// Call records one invocation seen by FakeRunner.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as a shell-like command line ("git add .").
func (c Call) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Response is a scripted reply for a command line.
type Response struct {
	Result command.Result
	Err    error
}

// Exit builds a response carrying only an exit code and stderr.
func Exit(code int, stderr string) Response {
	return Response{Result: command.Result{ExitCode: code, Stderr: stderr}}
}

// FakeRunner implements command.Runner without spawning processes. Replies
// are matched on the longest scripted prefix of the command line; queued
// replies are consumed in order and the last one sticks. Unscripted commands
// succeed with exit code 0.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string][]Response
	// OnRun, when set, is invoked for every call before the reply is chosen.
	OnRun func(Call)
}

// NewFakeRunner returns an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{responses: map[string][]Response{}}
}

// On scripts the replies for commands starting with prefix.
func (f *FakeRunner) On(prefix string, replies ...Response) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = append(f.responses[prefix], replies...)
	return f
}

func (f *FakeRunner) Run(_ context.Context, dir, name string, args ...string) (command.Result, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	if f.OnRun != nil {
		f.OnRun(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	line := call.String()
	best := ""
	found := false
	for prefix := range f.responses {
		if (line == prefix || strings.HasPrefix(line, prefix+" ")) && len(prefix) >= len(best) {
			best, found = prefix, true
		}
	}
	if !found {
		return command.Result{}, nil
	}
	queue := f.responses[best]
	reply := queue[0]
	if len(queue) > 1 {
		f.responses[best] = queue[1:]
	}
	return reply.Result, reply.Err
}

// Calls returns a copy of the recorded calls.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Commands returns the recorded command lines in order.
func (f *FakeRunner) Commands() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.String())
	}
	return out
}

// Ran reports whether any recorded command line starts with prefix.
func (f *FakeRunner) Ran(prefix string) bool {
	for _, line := range f.Commands() {
		if line == prefix || strings.HasPrefix(line, prefix+" ") {
			return true
		}
	}
	return false
}
