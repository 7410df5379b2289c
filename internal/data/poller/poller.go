package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wrenb/go-stream-lens/internal/core/config"
	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/data/client"
	"github.com/wrenb/go-stream-lens/internal/util"
)

// DefaultInterval is the fixed delay between poll ticks
const DefaultInterval = 8 * time.Second

// EventKind distinguishes poll loop events
type EventKind int

const (
	// TickStarted fires when a request is about to be issued
	TickStarted EventKind = iota
	// TickSucceeded carries a reconcilable payload
	TickSucceeded
	// TickFailed carries the failure message for the offline status
	TickFailed
)

// Event is one poll loop occurrence, stamped with the configuration
// generation it was issued under. Consumers must discard events whose
// generation no longer matches the active configuration.
type Event struct {
	Kind       EventKind
	Generation int64
	Config     config.SessionConfig
	Payload    *model.SummaryPayload
	Err        error
	At         time.Time
}

// Engine owns the cancelable fetch loop keyed to the active configuration.
// Ticks are strictly sequential: a tick resolves fully, the fixed delay
// elapses, then the next tick fires. Kick cancels the pending delay (and any
// in-flight request) so a configuration change takes effect immediately.
type Engine struct {
	fetcher  client.SummaryFetcher
	stager   *config.Stager
	interval time.Duration
	events   chan Event

	mu         sync.Mutex
	kick       chan struct{}
	cancelTick context.CancelFunc
}

// NewEngine creates a poll engine. interval <= 0 selects DefaultInterval.
func NewEngine(fetcher client.SummaryFetcher, stager *config.Stager, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Engine{
		fetcher:  fetcher,
		stager:   stager,
		interval: interval,
		events:   make(chan Event, 16),
	}
}

// Events returns the poll event channel
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Run executes the poll loop until ctx is canceled. While no configuration
// is active the loop idles until the next Kick.
func (e *Engine) Run(ctx context.Context) {
	kicked := make(chan struct{}, 1)
	e.mu.Lock()
	e.kick = kicked
	e.mu.Unlock()

	for {
		if ctx.Err() != nil {
			return
		}

		cfg, generation, ok := e.stager.Active()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-kicked:
			}
			continue
		}

		e.tick(ctx, cfg, generation)

		// Fixed delay regardless of tick outcome, cut short by Kick
		select {
		case <-ctx.Done():
			return
		case <-kicked:
		case <-time.After(e.interval):
		}
	}
}

// tick issues one request and emits the outcome. Responses issued against a
// superseded configuration generation are discarded without touching state.
func (e *Engine) tick(ctx context.Context, cfg config.SessionConfig, generation int64) {
	tickCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.cancelTick = cancel
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.cancelTick = nil
		e.mu.Unlock()
		cancel()
	}()

	e.emit(Event{Kind: TickStarted, Generation: generation, Config: cfg, At: time.Now()})

	payload, err := e.fetcher.FetchSummary(tickCtx, cfg)

	if e.stager.Generation() != generation {
		util.LogDebugf("Discarding stale poll response for %s (generation %d)",
			cfg.IdentityKey(), generation)
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		e.emit(Event{Kind: TickFailed, Generation: generation, Config: cfg, Err: err, At: time.Now()})
		return
	}

	e.emit(Event{Kind: TickSucceeded, Generation: generation, Config: cfg, Payload: payload, At: time.Now()})
}

// Kick cancels the pending delay and any in-flight request, causing an
// immediate tick if a configuration remains active. Called after every
// commit, clear, and manual refresh.
func (e *Engine) Kick() {
	e.mu.Lock()
	if e.cancelTick != nil {
		e.cancelTick()
	}
	kicked := e.kick
	e.mu.Unlock()

	if kicked == nil {
		return
	}
	select {
	case kicked <- struct{}{}:
	default:
	}
}

// emit delivers an event without ever blocking the poll loop
func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		util.LogWarn("Poll event channel full, dropping event")
	}
}
