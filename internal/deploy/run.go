package deploy

import (
	"sync"
	"time"
)

// Counts tallies what a run touched.
type Counts struct {
	Processed int `json:"processed"`
	Renamed   int `json:"renamed"`
	Copied    int `json:"copied"`
	Deleted   int `json:"deleted"`
	Missing   int `json:"missing"`
}

// Map returns the counts keyed by name, for metrics and history.
func (c Counts) Map() map[string]int {
	return map[string]int{
		"processed": c.Processed,
		"renamed":   c.Renamed,
		"copied":    c.Copied,
		"deleted":   c.Deleted,
		"missing":   c.Missing,
	}
}

// SyncRun is the state of one orchestrated deployment. The content and
// image stages mark it changed; once changed it stays changed.
type SyncRun struct {
	ID        string
	Target    string
	StartedAt time.Time

	mu      sync.Mutex
	changed bool
	reasons []string
	counts  Counts
}

// NewSyncRun starts a run record.
func NewSyncRun(id, target string, startedAt time.Time) *SyncRun {
	return &SyncRun{ID: id, Target: target, StartedAt: startedAt}
}

func (r *SyncRun) MarkChanged(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changed = true
	r.reasons = append(r.reasons, reason)
}

// Changed reports whether any stage marked the run.
func (r *SyncRun) Changed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.changed
}

// Reasons lists why the run was marked changed, in order.
func (r *SyncRun) Reasons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.reasons...)
}

// Counts returns a snapshot of the counters.
func (r *SyncRun) Counts() Counts {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts
}

func (r *SyncRun) AddProcessed(n int) { r.add(&r.counts.Processed, n) }
func (r *SyncRun) AddRenamed(n int)   { r.add(&r.counts.Renamed, n) }
func (r *SyncRun) AddCopied(n int)    { r.add(&r.counts.Copied, n) }
func (r *SyncRun) AddDeleted(n int)   { r.add(&r.counts.Deleted, n) }
func (r *SyncRun) AddMissing(n int)   { r.add(&r.counts.Missing, n) }

func (r *SyncRun) add(field *int, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*field += n
}
