package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wrenb/go-stream-lens/internal/core/config"
	"github.com/wrenb/go-stream-lens/internal/data/client"
	"github.com/wrenb/go-stream-lens/internal/data/poller"
	"github.com/wrenb/go-stream-lens/internal/presentation/display"
	"github.com/wrenb/go-stream-lens/internal/presentation/formatter"
	"github.com/wrenb/go-stream-lens/internal/util"
)

// Orchestrator coordinates all components for the watch command
type Orchestrator struct {
	config *WatchConfig

	// Core components
	stager       *config.Stager
	stateManager *StateManager
	engine       *poller.Engine
	exporter     *formatter.CSVExporter

	// UI components
	display  *display.TerminalDisplay
	keyboard *KeyboardReader

	// Config file monitoring
	watcher *config.FileWatcher

	paused bool

	// cursor is the pinned velocity sample index, -1 follows the newest
	cursor int
}

// NewOrchestrator creates a new Orchestrator instance
func NewOrchestrator(cfg *WatchConfig) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	stager := config.NewStager()
	summaryClient := client.NewClient(cfg.APIBaseURL)

	return &Orchestrator{
		config:       cfg,
		stager:       stager,
		stateManager: NewStateManager(),
		engine:       poller.NewEngine(summaryClient, stager, cfg.PollInterval),
		exporter:     formatter.NewCSVExporter(),
		display:      display.NewTerminalDisplay(),
		cursor:       -1,
	}, nil
}

// Stager exposes the config stager for command-line staging
func (o *Orchestrator) Stager() *config.Stager {
	return o.stager
}

// State exposes the session state manager
func (o *Orchestrator) State() *StateManager {
	return o.stateManager
}

// CommitDraft commits the staged draft. On an identity-key change all
// derived series are cleared before the new configuration activates; on a
// parameter tweak they survive. Either way polling restarts immediately.
func (o *Orchestrator) CommitDraft() error {
	draft := o.stager.Draft()
	result, err := o.stager.Commit(o.stateManager.ResetSeries)
	if err != nil {
		if errors.Is(err, config.ErrInvalidReference) {
			return fmt.Errorf("%w: %s", err, config.InvalidReferenceMessage(draft.Source))
		}
		return err
	}

	if result.StreamChanged {
		o.cursor = -1
	}
	o.stateManager.BeginConnecting()
	o.engine.Kick()
	return nil
}

// ClearSession cancels polling and resets all session state
func (o *Orchestrator) ClearSession() {
	o.stager.Clear()
	o.stateManager.ResetSeries()
	o.stateManager.SetStatus(StatusIdle)
	o.cursor = -1
	o.engine.Kick()
}

// Run starts the orchestrator main loop
func (o *Orchestrator) Run(ctx context.Context) error {
	util.LogInfo("Starting stream lens watch...")

	defer o.Close()

	if err := util.InitializeTimeProvider(o.config.Timezone); err != nil {
		return fmt.Errorf("failed to initialize timezone: %w", err)
	}

	// Load the config file and start watching it for edits
	if o.config.ConfigFile != "" {
		fileCfg, err := config.LoadFile(o.config.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		o.stager.Stage(func(draft *config.SessionConfig) {
			*draft = fileCfg
		})
		if err := o.CommitDraft(); err != nil {
			return err
		}

		watcher, err := config.NewFileWatcher(o.config.ConfigFile)
		if err != nil {
			return fmt.Errorf("failed to watch config file: %w", err)
		}
		o.watcher = watcher
	}

	// Keyboard is best-effort: a non-interactive terminal still gets the view
	if keyboard, err := NewKeyboardReader(); err == nil {
		o.keyboard = keyboard
	} else {
		util.LogWarnf("Keyboard unavailable, running display-only: %v", err)
	}

	o.display.EnterAlternateScreen()
	defer o.display.ExitAlternateScreen()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go o.engine.Run(ctx)

	uiInterval := time.Duration(float64(time.Second) / o.config.UIRefreshRate)
	uiTicker := time.NewTicker(uiInterval)
	defer uiTicker.Stop()

	o.updateDisplay()

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Shutting down stream lens watch...")
			return nil

		case <-uiTicker.C:
			if !o.paused {
				o.updateDisplay()
			}

		case event := <-o.engine.Events():
			o.handlePollEvent(event)

		case fileCfg := <-o.watcherEvents():
			o.handleConfigFileChange(fileCfg)

		case keyEvent := <-o.keyboardEvents():
			if o.handleKeyboard(keyEvent) {
				return nil
			}
			o.updateDisplay()
		}
	}
}

// handlePollEvent applies a poll loop event to the session state. Events
// from a superseded configuration generation are dropped here as a second
// line of defense behind the engine's own check.
func (o *Orchestrator) handlePollEvent(event poller.Event) {
	if event.Generation != o.stager.Generation() {
		util.LogDebugf("Dropping poll event for superseded generation %d", event.Generation)
		return
	}

	switch event.Kind {
	case poller.TickStarted:
		o.stateManager.BeginTick()
	case poller.TickFailed:
		o.stateManager.SetOffline(event.Err.Error())
	case poller.TickSucceeded:
		o.stateManager.ApplyPayload(event.Payload, event.At)
	}
}

// handleConfigFileChange stages and commits an edited config file
func (o *Orchestrator) handleConfigFileChange(fileCfg config.SessionConfig) {
	util.LogInfof("Config file changed, committing %s", fileCfg.IdentityKey())
	o.stager.Stage(func(draft *config.SessionConfig) {
		*draft = fileCfg
	})
	if err := o.CommitDraft(); err != nil {
		o.stateManager.SetOffline(err.Error())
	}
}

// handleKeyboard handles keyboard events; returns true to exit
func (o *Orchestrator) handleKeyboard(event KeyEvent) bool {
	switch event.Type {
	case KeyEscape:
		return true
	case KeyLeft:
		o.moveCursor(-1)
		return false
	case KeyRight:
		o.moveCursor(1)
		return false
	}

	switch event.Key {
	case 'q', 'Q', 3: // 'q', 'Q', or Ctrl+C
		return true
	case 'p', 'P':
		o.paused = !o.paused
	case 'r', 'R':
		o.engine.Kick()
	case 'e', 'E':
		o.exportSnapshot()
	}
	return false
}

// exportSnapshot writes both CSV exports for the current session state.
// Empty sources are skipped rather than producing empty files.
func (o *Orchestrator) exportSnapshot() {
	snap := o.stateManager.GetSnapshot()

	if _, err := o.exporter.ExportEventsFile(o.config.ExportDir, snap.Events); err != nil {
		if !errors.Is(err, formatter.ErrNoData) {
			util.LogErrorf("Keyword event export failed: %v", err)
		}
	}

	if _, err := o.exporter.ExportRatesFile(o.config.ExportDir, snap.Samples, snap.Rates, snap.Clock); err != nil {
		if !errors.Is(err, formatter.ErrNoData) {
			util.LogErrorf("Velocity export failed: %v", err)
		}
	}
}

// moveCursor shifts the pinned velocity sample. Scrubbing right past the
// newest sample resumes following the live edge.
func (o *Orchestrator) moveCursor(delta int) {
	snap := o.stateManager.GetSnapshot()
	n := len(snap.Samples)
	if n == 0 {
		o.cursor = -1
		return
	}

	cur := o.cursor
	if cur < 0 {
		cur = n - 1
	}
	cur += delta
	if cur < 0 {
		cur = 0
	}
	if cur >= n-1 {
		o.cursor = -1
		return
	}
	o.cursor = cur
}

// updateDisplay renders the current session state
func (o *Orchestrator) updateDisplay() {
	o.display.Render(o.currentView())
}

// currentView projects the session snapshot, the cursor, and the history
// entry aligned to the cursor's sample into the render view.
func (o *Orchestrator) currentView() display.View {
	snap := o.stateManager.GetSnapshot()
	active, _, hasActive := o.stager.Active()

	if o.cursor >= len(snap.Samples) {
		o.cursor = -1
	}
	idx := o.cursor
	if idx < 0 {
		idx = len(snap.Samples) - 1
	}
	aligned, hasAligned := o.stateManager.ClosestSummary(idx)

	return buildView(snap, active, hasActive, o.paused,
		idx, o.cursor >= 0, aligned, hasAligned)
}

// watcherEvents returns the config watcher channel, or nil when disabled
func (o *Orchestrator) watcherEvents() <-chan config.SessionConfig {
	if o.watcher == nil {
		return nil
	}
	return o.watcher.Events()
}

// keyboardEvents returns the keyboard channel, or nil when unavailable
func (o *Orchestrator) keyboardEvents() <-chan KeyEvent {
	if o.keyboard == nil {
		return nil
	}
	return o.keyboard.Events()
}

// Close cleans up all resources
func (o *Orchestrator) Close() error {
	if o.keyboard != nil {
		if err := o.keyboard.Close(); err != nil {
			util.LogErrorf("Failed to close keyboard: %v", err)
		}
	}
	if o.watcher != nil {
		if err := o.watcher.Close(); err != nil {
			return fmt.Errorf("failed to close config watcher: %w", err)
		}
	}
	return nil
}
