package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/blogsync/internal/foundation/errors"
)

// DebouncerConfig bounds how long bursts of requests are held back.
type DebouncerConfig struct {
	// QuietWindow is how long no new request must arrive before firing.
	QuietWindow time.Duration
	// MaxDelay caps how long a burst can postpone firing.
	MaxDelay time.Duration
}

// Batch summarizes the requests coalesced into one firing.
type Batch struct {
	Count      int
	First      time.Time
	Last       time.Time
	LastReason string
	Cause      string // "quiet" or "max_delay"
}

type request struct {
	reason string
	at     time.Time
}

// Debouncer coalesces bursts of requests into single calls of fire.
//
// fire runs on the Run goroutine, so requests arriving while it runs are
// collected into exactly one follow-up batch.
type Debouncer struct {
	cfg      DebouncerConfig
	fire     func(context.Context, Batch)
	requests chan request

	readyOnce sync.Once
	ready     chan struct{}
}

func NewDebouncer(cfg DebouncerConfig, fire func(context.Context, Batch)) (*Debouncer, error) {
	if fire == nil {
		return nil, ferrors.ValidationError("fire function is required").Build()
	}
	if cfg.QuietWindow <= 0 {
		return nil, ferrors.ValidationError("quiet window must be > 0").Build()
	}
	if cfg.MaxDelay <= 0 {
		return nil, ferrors.ValidationError("max delay must be > 0").Build()
	}
	return &Debouncer{
		cfg:      cfg,
		fire:     fire,
		requests: make(chan request, 64),
		ready:    make(chan struct{}),
	}, nil
}

// Ready is closed once Run is accepting requests.
func (d *Debouncer) Ready() <-chan struct{} {
	return d.ready
}

// Request asks for a firing. It never blocks; when the queue is full the
// request is already covered by a pending batch.
func (d *Debouncer) Request(reason string) {
	select {
	case d.requests <- request{reason: reason, at: time.Now()}:
	default:
		slog.Debug("Debouncer queue full, request coalesced", slog.String("reason", reason))
	}
}

// Run processes requests until ctx is done.
func (d *Debouncer) Run(ctx context.Context) error {
	if ctx == nil {
		return ferrors.ValidationError("context cannot be nil").Build()
	}

	quietTimer := time.NewTimer(time.Hour)
	quietTimer.Stop()
	maxTimer := time.NewTimer(time.Hour)
	maxTimer.Stop()
	defer quietTimer.Stop()
	defer maxTimer.Stop()

	var (
		quietC  <-chan time.Time
		maxC    <-chan time.Time
		pending bool
		batch   Batch
	)

	emit := func(cause string) {
		quietTimer.Stop()
		maxTimer.Stop()
		quietC, maxC = nil, nil
		pending = false
		batch.Cause = cause
		d.fire(ctx, batch)
	}

	d.readyOnce.Do(func() { close(d.ready) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-d.requests:
			if !pending {
				pending = true
				batch = Batch{First: req.at}
				maxTimer.Reset(d.cfg.MaxDelay)
				maxC = maxTimer.C
			}
			batch.Count++
			batch.Last = req.at
			batch.LastReason = req.reason
			quietTimer.Reset(d.cfg.QuietWindow)
			quietC = quietTimer.C
		case <-quietC:
			emit("quiet")
		case <-maxC:
			emit("max_delay")
		}
	}
}
