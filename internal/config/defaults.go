package config

import "time"

const (
	DefaultCommandTimeout = 60 * time.Second
	DefaultRemote         = "origin"
	DefaultMainBranch     = "main"
	DefaultSubtreePrefix  = "public"
	DefaultDeployBranch   = "deploy"
	DefaultNotifySubject  = "blogsync.deployments"
	DefaultServerAddr     = ":8090"
	DefaultWatchDebounce  = 10 * time.Second
)

func applyDefaults(cfg *Config) {
	if cfg.CommandTimeout <= 0 {
		cfg.CommandTimeout = DefaultCommandTimeout
	}

	g := &cfg.Git
	setDefault(&g.Remote, DefaultRemote)
	setDefault(&g.MainBranch, DefaultMainBranch)
	setDefault(&g.SubtreePrefix, DefaultSubtreePrefix)
	if mode := NormalizeRetryBackoff(string(g.Retry.Mode)); mode != "" {
		g.Retry.Mode = mode
	} else {
		g.Retry.Mode = RetryBackoffExponential
	}
	if g.Retry.Initial <= 0 {
		g.Retry.Initial = 2 * time.Second
	}
	if g.Retry.Max <= 0 {
		g.Retry.Max = 30 * time.Second
	}
	if g.Retry.MaxRetries < 0 {
		g.Retry.MaxRetries = 0
	}

	for name, t := range cfg.Targets {
		if t == nil {
			continue
		}
		t.Name = name
		setDefault(&t.DeployBranch, DefaultDeployBranch)
		setDefault(&t.DeployRemoteBranch, t.DeployBranch)
		t.ResolvePaths()
	}

	setDefault(&cfg.Notify.Subject, DefaultNotifySubject)
	setDefault(&cfg.Server.Addr, DefaultServerAddr)
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = DefaultWatchDebounce
	}
}
