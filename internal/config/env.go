package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// envFiles are tried in order; the first one present is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads KEY=VALUE pairs from the first .env file found.
// Existing process environment variables are never overwritten.
func loadEnvFile() error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		slog.Debug("Loaded environment variables", "path", path)
		return nil
	}
	return errors.New("no .env file found")
}

// targetEnv names the environment variables the deployment scripts have always
// read; they override (or create) the matching target.
type targetEnv struct {
	target, notesRoot, siteRoot, baseURL string
}

var legacyTargetEnv = []targetEnv{
	{target: TargetHuman, notesRoot: "OBSIDIAN_NOTES_PATH", siteRoot: "HUMAN_BLOG_SITE_PATH", baseURL: "HUMAN_BLOG_URL"},
	{target: TargetAI, notesRoot: "OBSIDIAN_AI_NOTES_PATH", siteRoot: "AI_BLOG_SITE_PATH", baseURL: "AI_BLOG_URL"},
}

func applyEnvOverrides(cfg *Config) {
	for _, e := range legacyTargetEnv {
		notes, site, url := os.Getenv(e.notesRoot), os.Getenv(e.siteRoot), os.Getenv(e.baseURL)
		if notes == "" && site == "" && url == "" {
			continue
		}
		if cfg.Targets == nil {
			cfg.Targets = make(map[string]*Target)
		}
		t := cfg.Targets[e.target]
		if t == nil {
			t = &Target{AIImages: e.target == TargetAI}
			cfg.Targets[e.target] = t
		}
		if notes != "" {
			t.NotesRoot = notes
		}
		if site != "" {
			t.SiteRoot = site
		}
		if url != "" {
			t.BaseURL = url
		}
	}
}
