// Package responses defines the JSON bodies returned by the HTTP trigger.
package responses

import (
	"time"

	"git.home.luguber.info/inful/blogsync/internal/history"
)

// DeployResponse is returned by POST /api/deploy/{target}.
type DeployResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	RunID      string `json:"run_id"`
	BlogURL    string `json:"blog_url,omitempty"`
	Target     string `json:"target"`
	Kind       string `json:"kind"`
	Changes    bool   `json:"changes"`
	Commit     string `json:"commit,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// DeploymentsResponse lists recorded runs, newest first.
type DeploymentsResponse struct {
	Deployments []history.Record `json:"deployments"`
	Count       int              `json:"count"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Targets   []string  `json:"targets"`
}
