package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenb/go-stream-lens/internal/core/config"
	"github.com/wrenb/go-stream-lens/internal/core/model"
)

// stubFetcher blocks each fetch until released, so tests control exactly when
// a response lands relative to configuration changes.
type stubFetcher struct {
	mu       sync.Mutex
	payload  *model.SummaryPayload
	err      error
	release  chan struct{}
	started  chan struct{}
	respects bool // honor ctx cancellation while blocked
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		payload: &model.SummaryPayload{Summary: "stubbed"},
		release: make(chan struct{}),
		started: make(chan struct{}, 16),
	}
}

func (f *stubFetcher) FetchSummary(ctx context.Context, cfg config.SessionConfig) (*model.SummaryPayload, error) {
	f.started <- struct{}{}
	select {
	case <-f.release:
	case <-ctx.Done():
		if f.respects {
			return nil, ctx.Err()
		}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payload, f.err
}

func (f *stubFetcher) setError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func commitStream(t *testing.T, stager *config.Stager, ref string) config.CommitResult {
	t.Helper()
	stager.Stage(func(draft *config.SessionConfig) {
		draft.Source = config.SourceYouTube
		draft.StreamRef = ref
	})
	result, err := stager.Commit(nil)
	require.NoError(t, err)
	return result
}

func waitEvent(t *testing.T, events <-chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %d", kind)
		}
	}
}

func TestEngineTickLifecycle(t *testing.T) {
	stager := config.NewStager()
	commitStream(t, stager, "dQw4w9WgXcQ")

	fetcher := newStubFetcher()
	engine := NewEngine(fetcher, stager, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	started := waitEvent(t, engine.Events(), TickStarted)
	assert.Equal(t, "youtube:dQw4w9WgXcQ", started.Config.IdentityKey())

	close(fetcher.release)
	succeeded := waitEvent(t, engine.Events(), TickSucceeded)
	require.NotNil(t, succeeded.Payload)
	assert.Equal(t, "stubbed", succeeded.Payload.Summary)
	assert.Equal(t, started.Generation, succeeded.Generation)
}

func TestEngineDiscardsStaleResponse(t *testing.T) {
	stager := config.NewStager()
	commitStream(t, stager, "dQw4w9WgXcQ")

	fetcher := newStubFetcher()
	engine := NewEngine(fetcher, stager, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	waitEvent(t, engine.Events(), TickStarted)

	// New stream committed while the first request is still in flight
	commitStream(t, stager, "aaaaaaaaaaa")
	engine.Kick()

	// Now the first response lands; its generation is superseded
	close(fetcher.release)

	started := waitEvent(t, engine.Events(), TickStarted)
	assert.Equal(t, "youtube:aaaaaaaaaaa", started.Config.IdentityKey(),
		"next tick targets the new configuration")

	succeeded := waitEvent(t, engine.Events(), TickSucceeded)
	assert.Equal(t, "youtube:aaaaaaaaaaa", succeeded.Config.IdentityKey(),
		"the stale response never surfaces as an event")
	assert.Equal(t, stager.Generation(), succeeded.Generation)
}

func TestEngineIdlesWithoutConfig(t *testing.T) {
	stager := config.NewStager()
	fetcher := newStubFetcher()
	close(fetcher.release)
	engine := NewEngine(fetcher, stager, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	select {
	case <-fetcher.started:
		t.Fatal("engine must not fetch while no configuration is active")
	case <-time.After(100 * time.Millisecond):
	}

	// Committing and kicking wakes the loop
	commitStream(t, stager, "dQw4w9WgXcQ")
	engine.Kick()

	waitEvent(t, engine.Events(), TickSucceeded)
}

func TestEngineKickCutsDelayShort(t *testing.T) {
	stager := config.NewStager()
	commitStream(t, stager, "dQw4w9WgXcQ")

	fetcher := newStubFetcher()
	close(fetcher.release)
	engine := NewEngine(fetcher, stager, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	waitEvent(t, engine.Events(), TickSucceeded)

	// The hour-long delay is pending; a kick forces the next tick now
	engine.Kick()
	waitEvent(t, engine.Events(), TickSucceeded)
}

func TestEngineEmitsFailure(t *testing.T) {
	stager := config.NewStager()
	commitStream(t, stager, "dQw4w9WgXcQ")

	fetcher := newStubFetcher()
	fetcher.setError(assert.AnError)
	close(fetcher.release)
	engine := NewEngine(fetcher, stager, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go engine.Run(ctx)

	failed := waitEvent(t, engine.Events(), TickFailed)
	assert.ErrorIs(t, failed.Err, assert.AnError)
}

func TestEngineStopsOnContextCancel(t *testing.T) {
	stager := config.NewStager()
	commitStream(t, stager, "dQw4w9WgXcQ")

	fetcher := newStubFetcher()
	fetcher.respects = true
	engine := NewEngine(fetcher, stager, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		engine.Run(ctx)
		close(done)
	}()

	waitEvent(t, engine.Events(), TickStarted)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after context cancellation")
	}
}
