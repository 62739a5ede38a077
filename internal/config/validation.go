package config

import (
	"strings"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// Validate checks the loaded configuration. Directory existence is not checked
// here; the sync stages treat a missing directory as a per-run failure.
func Validate(cfg *Config) error {
	if len(cfg.Targets) == 0 {
		return ferrors.ConfigError("no deployment targets configured").Build()
	}
	for _, name := range cfg.TargetNames() {
		t := cfg.Targets[name]
		if t == nil {
			return ferrors.ConfigError("target has no settings").WithContext("target", name).Build()
		}
		if strings.TrimSpace(t.NotesRoot) == "" {
			return ferrors.ConfigError("target notes_root is required").WithContext("target", name).Build()
		}
		if strings.TrimSpace(t.SiteRoot) == "" {
			return ferrors.ConfigError("target site_root is required").WithContext("target", name).Build()
		}
		if strings.TrimSpace(t.BaseURL) == "" {
			return ferrors.ConfigError("target base_url is required").WithContext("target", name).Build()
		}
		if strings.ContainsAny(t.DeployBranch, " :~^") || strings.ContainsAny(t.DeployRemoteBranch, " :~^") {
			return ferrors.ConfigError("invalid deploy branch name").WithContext("target", name).Build()
		}
	}
	if cfg.Git.SubtreePrefix == "" || strings.HasPrefix(cfg.Git.SubtreePrefix, "/") {
		return ferrors.ConfigError("git.subtree_prefix must be a relative directory").Build()
	}
	return nil
}
