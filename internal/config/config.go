package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// Config is the root configuration loaded once at startup and passed by value
// (targets) or pointer (process-wide settings) to every component.
type Config struct {
	CommandTimeout time.Duration      `yaml:"command_timeout"`
	Git            GitConfig          `yaml:"git"`
	Targets        map[string]*Target `yaml:"targets"`
	History        HistoryConfig      `yaml:"history"`
	Notify         NotifyConfig       `yaml:"notify"`
	Server         ServerConfig       `yaml:"server"`
	Watch          WatchConfig        `yaml:"watch"`
}

// GitConfig controls the publish step.
type GitConfig struct {
	Remote        string      `yaml:"remote"`
	MainBranch    string      `yaml:"main_branch"`
	SubtreePrefix string      `yaml:"subtree_prefix"`
	Retry         RetryConfig `yaml:"retry"`
}

// RetryConfig configures the backoff used for transient push failures.
type RetryConfig struct {
	Mode       RetryBackoffMode `yaml:"mode"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// HistoryConfig points at the SQLite deployment history database. Empty disables history.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig configures the NATS deployment notifier. Empty URL disables it.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ServerConfig configures the HTTP trigger.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// WatchConfig configures vault watching and scheduled deployments.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Schedule time.Duration `yaml:"schedule"` // zero disables periodic deploys
}

// Load reads the YAML configuration, expands ${VAR} references, applies the
// legacy environment overrides and defaults, then validates the result.
//
// A missing file is tolerated when the environment alone defines a target.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").
				WithContext("file", configPath).
				Build()
		}
	case os.IsNotExist(err):
		slog.Debug("Configuration file not found, relying on environment", "path", configPath)
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration").
			WithContext("file", configPath).
			Build()
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Target returns a copy of the named target.
func (c *Config) Target(name string) (Target, error) {
	t, ok := c.Targets[name]
	if !ok || t == nil {
		return Target{}, ferrors.NotFoundError("unknown deployment target").
			WithContext("target", name).
			WithContext("available", c.TargetNames()).
			Build()
	}
	return *t, nil
}

// TargetNames returns configured target names in stable order.
func (c *Config) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("file", configPath).
			Build()
	}

	example := Config{
		CommandTimeout: DefaultCommandTimeout,
		Git: GitConfig{
			Remote:        "origin",
			MainBranch:    "main",
			SubtreePrefix: "public",
			Retry:         RetryConfig{Mode: RetryBackoffExponential, Initial: 2 * time.Second, Max: 30 * time.Second, MaxRetries: 2},
		},
		Targets: map[string]*Target{
			TargetHuman: {
				NotesRoot:          "${OBSIDIAN_NOTES_PATH}",
				SiteRoot:           "${HUMAN_BLOG_SITE_PATH}",
				BaseURL:            "${HUMAN_BLOG_URL}",
				DeployBranch:       "deploy",
				DeployRemoteBranch: "deploy",
			},
			TargetAI: {
				NotesRoot:          "${OBSIDIAN_AI_NOTES_PATH}",
				SiteRoot:           "${AI_BLOG_SITE_PATH}",
				BaseURL:            "${AI_BLOG_URL}",
				DeployBranch:       "hostinger-deploy",
				DeployRemoteBranch: "hostinger-protoblog",
				AIImages:           true,
			},
		},
		History: HistoryConfig{Path: "./blogsync.db"},
		Notify:  NotifyConfig{Subject: DefaultNotifySubject},
		Server:  ServerConfig{Addr: DefaultServerAddr},
		Watch:   WatchConfig{Debounce: DefaultWatchDebounce},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").
			WithContext("file", configPath).
			Build()
	}
	return nil
}
