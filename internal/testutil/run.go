package testutil

import "sync"

// Run is a recording implementation of the run interfaces consumed by the
// sync components.
type Run struct {
	mu        sync.Mutex
	Changed   bool
	Reasons   []string
	Renamed   int
	Processed int
	Copied    int
	Deleted   int
	Missing   int
}

func (r *Run) MarkChanged(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Changed = true
	r.Reasons = append(r.Reasons, reason)
}

func (r *Run) AddRenamed(n int)   { r.add(&r.Renamed, n) }
func (r *Run) AddProcessed(n int) { r.add(&r.Processed, n) }
func (r *Run) AddCopied(n int)    { r.add(&r.Copied, n) }
func (r *Run) AddDeleted(n int)   { r.add(&r.Deleted, n) }
func (r *Run) AddMissing(n int)   { r.add(&r.Missing, n) }

func (r *Run) add(field *int, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*field += n
}
