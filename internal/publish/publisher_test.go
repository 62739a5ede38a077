package publish

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogsync/internal/config"
	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
	"git.home.luguber.info/inful/blogsync/internal/retry"
	"git.home.luguber.info/inful/blogsync/internal/testutil"
)

var fixedNow = time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC)

func testOptions(local, remote string) Options {
	return Options{
		Remote:             "origin",
		MainBranch:         "main",
		SubtreePrefix:      "public",
		DeployBranch:       local,
		DeployRemoteBranch: remote,
		Retry:              retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2),
	}
}

func newSite(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	hash := testutil.SetupTestGitRepo(t, dir)
	return dir, hash.String()
}

func newPublisher(runner *testutil.FakeRunner, opts Options) *Publisher {
	return NewPublisher(runner, opts).WithClock(func() time.Time { return fixedNow })
}

func TestPublish_NothingToCommit(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().On("git diff --cached --quiet", testutil.Exit(0, ""))

	out, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.NoError(t, err)

	assert.Equal(t, StatusNothingToCommit, out.Status)
	assert.Equal(t, "master", out.Branch)
	assert.Equal(t, []string{"git add .", "git diff --cached --quiet"}, runner.Commands())
}

func TestPublish_FullSequence(t *testing.T) {
	site, head := newSite(t)
	runner := testutil.NewFakeRunner().On("git diff --cached --quiet", testutil.Exit(1, ""))

	out, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.NoError(t, err)

	assert.Equal(t, StatusPublished, out.Status)
	assert.Equal(t, "New Blog Post on 2024-05-01 10:20:30", out.Message)
	assert.Equal(t, head, out.Commit)
	assert.Equal(t, "master", out.Branch)
	assert.Equal(t, []string{
		"git add .",
		"git diff --cached --quiet",
		"git commit -m New Blog Post on 2024-05-01 10:20:30",
		"git push origin main",
		"git branch -D deploy",
		"git subtree split --prefix public -b deploy",
		"git push origin deploy:deploy --force",
		"git branch -D deploy",
	}, runner.Commands())
	for _, c := range runner.Calls() {
		assert.Equal(t, site, c.Dir)
	}
}

func TestPublish_TargetSpecificDeployBranches(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().On("git diff --cached --quiet", testutil.Exit(1, ""))

	_, err := newPublisher(runner, testOptions("hostinger-deploy", "hostinger-protoblog")).Publish(context.Background(), site)
	require.NoError(t, err)

	assert.True(t, runner.Ran("git subtree split --prefix public -b hostinger-deploy"))
	assert.True(t, runner.Ran("git push origin hostinger-deploy:hostinger-protoblog --force"))
}

func TestPublish_DiffFailure(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().On("git diff --cached --quiet", testutil.Exit(128, "fatal: bad index"))

	_, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
	assert.False(t, runner.Ran("git commit"))
}

func TestPublish_AddFailureAborts(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().On("git add", testutil.Exit(128, "fatal: index.lock exists"))

	_, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.lock")
	assert.Equal(t, []string{"git add ."}, runner.Commands())
}

func TestPublish_CommitFailureStopsBeforePush(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().
		On("git diff --cached --quiet", testutil.Exit(1, "")).
		On("git commit", testutil.Exit(1, "Author identity unknown"))

	_, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.Error(t, err)
	assert.False(t, runner.Ran("git push"))
	assert.False(t, runner.Ran("git subtree"))
}

func TestPublish_TransientPushIsRetried(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().
		On("git diff --cached --quiet", testutil.Exit(1, "")).
		On("git push origin main",
			testutil.Exit(128, "fatal: unable to access: Could not resolve host: git.example.com"),
			testutil.Exit(0, ""))

	opts := testOptions("deploy", "deploy")
	var retries []int
	opts.OnRetry = func(attempt int) { retries = append(retries, attempt) }

	out, err := newPublisher(runner, opts).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, out.Status)
	assert.Equal(t, []int{1}, retries)

	pushes := 0
	for _, line := range runner.Commands() {
		if line == "git push origin main" {
			pushes++
		}
	}
	assert.Equal(t, 2, pushes)
}

func TestPublish_RejectedPushIsNotRetried(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().
		On("git diff --cached --quiet", testutil.Exit(1, "")).
		On("git push origin main", testutil.Exit(1, " ! [rejected]        main -> main (non-fast-forward)"))

	_, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.Error(t, err)

	pushes := 0
	for _, line := range runner.Commands() {
		if line == "git push origin main" {
			pushes++
		}
	}
	assert.Equal(t, 1, pushes)
	assert.False(t, runner.Ran("git subtree"))
}

func TestPublish_StaleBranchDeleteFailureIsTolerated(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().
		On("git diff --cached --quiet", testutil.Exit(1, "")).
		On("git branch -D deploy", testutil.Exit(1, "error: branch 'deploy' not found."), testutil.Exit(0, ""))

	out, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, out.Status)
}

func TestPublish_DeployPushFailureStillCleansUp(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().
		On("git diff --cached --quiet", testutil.Exit(1, "")).
		On("git push origin deploy:deploy", testutil.Exit(1, "remote: Permission denied"))

	_, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.Error(t, err)

	cmds := runner.Commands()
	assert.Equal(t, "git branch -D deploy", cmds[len(cmds)-1])
}

func TestPublish_SplitFailureAborts(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().
		On("git diff --cached --quiet", testutil.Exit(1, "")).
		On("git subtree split", testutil.Exit(1, "fatal: 'public' does not exist"))

	_, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.Error(t, err)
	assert.False(t, runner.Ran("git push origin deploy:deploy"))
}

func TestPublish_CleanupFailureDoesNotFail(t *testing.T) {
	site, _ := newSite(t)
	runner := testutil.NewFakeRunner().
		On("git diff --cached --quiet", testutil.Exit(1, "")).
		On("git branch -D deploy", testutil.Exit(0, ""), testutil.Exit(1, "error: cannot delete"))

	out, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), site)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, out.Status)
}

func TestPublish_RequiresWorkTree(t *testing.T) {
	runner := testutil.NewFakeRunner()

	_, err := newPublisher(runner, testOptions("deploy", "deploy")).Publish(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryGit))
	assert.Empty(t, runner.Calls())
}

func TestOptionsFor(t *testing.T) {
	opts := OptionsFor(
		config.GitConfig{Remote: "origin", MainBranch: "main", SubtreePrefix: "public",
			Retry: config.RetryConfig{Mode: config.RetryBackoffLinear, Initial: time.Second, Max: 2 * time.Second, MaxRetries: 1}},
		config.Target{DeployBranch: "hostinger-deploy", DeployRemoteBranch: "hostinger-protoblog"},
	)
	assert.Equal(t, "hostinger-deploy", opts.DeployBranch)
	assert.Equal(t, "hostinger-protoblog", opts.DeployRemoteBranch)
	assert.Equal(t, config.RetryBackoffLinear, opts.Retry.Mode)
	assert.Equal(t, 1, opts.Retry.MaxRetries)
}
