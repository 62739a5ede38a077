package watch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func startDebouncer(t *testing.T, cfg DebouncerConfig, fire func(context.Context, Batch)) *Debouncer {
	t.Helper()
	d, err := NewDebouncer(cfg, fire)
	require.NoError(t, err)
	go func() { _ = d.Run(t.Context()) }()
	select {
	case <-d.Ready():
	case <-time.After(250 * time.Millisecond):
		t.Fatal("timed out waiting for debouncer ready")
	}
	return d
}

func TestDebouncer_BurstCoalescesToSingleFire(t *testing.T) {
	fired := make(chan Batch, 10)
	d := startDebouncer(t, DebouncerConfig{QuietWindow: 25 * time.Millisecond, MaxDelay: 500 * time.Millisecond},
		func(_ context.Context, b Batch) { fired <- b })

	for range 5 {
		d.Request("write")
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case got := <-fired:
		require.Equal(t, 5, got.Count)
		require.Equal(t, "quiet", got.Cause)
		require.Equal(t, "write", got.LastReason)
		require.False(t, got.Last.Before(got.First))
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for fire")
	}

	select {
	case <-fired:
		t.Fatal("expected only one fire for burst")
	case <-time.After(75 * time.Millisecond):
	}
}

func TestDebouncer_MaxDelayForcesFire(t *testing.T) {
	fired := make(chan Batch, 10)
	d := startDebouncer(t, DebouncerConfig{QuietWindow: 200 * time.Millisecond, MaxDelay: 60 * time.Millisecond},
		func(_ context.Context, b Batch) { fired <- b })

	stop := time.After(150 * time.Millisecond)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				d.Request("write")
				time.Sleep(10 * time.Millisecond)
			}
		}
	}()

	select {
	case got := <-fired:
		require.Equal(t, "max_delay", got.Cause)
	case <-time.After(140 * time.Millisecond):
		t.Fatal("max delay did not force a fire")
	}
}

func TestDebouncer_RequestsDuringFireYieldOneFollowUp(t *testing.T) {
	release := make(chan struct{})
	fired := make(chan Batch, 10)
	first := true
	d := startDebouncer(t, DebouncerConfig{QuietWindow: 10 * time.Millisecond, MaxDelay: time.Second},
		func(_ context.Context, b Batch) {
			fired <- b
			if first {
				first = false
				<-release
			}
		})

	d.Request("first")
	select {
	case <-fired:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for first fire")
	}

	for range 3 {
		d.Request("during")
	}
	close(release)

	select {
	case got := <-fired:
		require.Equal(t, 3, got.Count)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for follow-up fire")
	}
	select {
	case <-fired:
		t.Fatal("expected exactly one follow-up")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNewDebouncer_Validates(t *testing.T) {
	noop := func(context.Context, Batch) {}
	_, err := NewDebouncer(DebouncerConfig{MaxDelay: time.Second}, noop)
	require.Error(t, err)
	_, err = NewDebouncer(DebouncerConfig{QuietWindow: time.Second}, noop)
	require.Error(t, err)
	_, err = NewDebouncer(DebouncerConfig{QuietWindow: time.Second, MaxDelay: time.Second}, nil)
	require.Error(t, err)
}
