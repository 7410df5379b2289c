package watch

import (
	"sync"
	"time"

	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/core/runtime"
	"github.com/wrenb/go-stream-lens/internal/core/series"
	"github.com/wrenb/go-stream-lens/internal/core/timeline"
)

// Status is the session's connection state as shown to the user
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusUpdating   Status = "updating"
	StatusLive       Status = "live"
	StatusWaiting    Status = "waiting"
	StatusOffline    Status = "offline"
)

// Snapshot is a read-only copy of the session state for rendering and export
type Snapshot struct {
	Status       Status
	ErrorMessage string
	Summary      string
	VideoTitle   string
	VideoChannel string
	UpdatedAt    int64
	History      []model.HistoryEntry
	Events       []model.KeywordEvent
	Samples      []model.RateSample
	Rates        []float64
	Labels       []string
	WindowRates  []float64
	WindowLabels []string
	UsingPoints  bool
	Clock        runtime.Clock
}

// StateManager owns all mutable session state. Writers are the poll tick
// completion handler and explicit commit/reset actions, nothing else; the
// display reads through copies.
type StateManager struct {
	mu sync.RWMutex

	status       Status
	errorMessage string
	summary      string
	videoTitle   string
	videoChannel string
	updatedAt    int64

	history    []model.HistoryEntry
	events     []model.KeywordEvent
	reconciler *series.Reconciler
}

// NewStateManager creates an empty StateManager
func NewStateManager() *StateManager {
	return &StateManager{
		status:     StatusIdle,
		reconciler: series.NewReconciler(),
	}
}

// SetStatus updates the connection status
func (sm *StateManager) SetStatus(status Status) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.status = status
}

// BeginTick marks a poll tick in progress: status updating, error cleared
func (sm *StateManager) BeginTick() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.status = StatusUpdating
	sm.errorMessage = ""
}

// BeginConnecting marks a fresh commit: status connecting, error cleared
func (sm *StateManager) BeginConnecting() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.status = StatusConnecting
	sm.errorMessage = ""
}

// SetOffline records a failed tick. Series are left untouched.
func (sm *StateManager) SetOffline(message string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.status = StatusOffline
	sm.errorMessage = message
}

// ApplyPayload reconciles a successful poll payload into the session state
func (sm *StateManager) ApplyPayload(p *model.SummaryPayload, now time.Time) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.reconciler.Apply(p, now)

	sm.summary = p.Summary
	sm.videoTitle = p.VideoTitle
	sm.videoChannel = p.VideoChannel
	if p.UpdatedAt != 0 {
		sm.updatedAt = int64(p.UpdatedAt)
	}

	sm.history = make([]model.HistoryEntry, len(p.SummaryHistory))
	copy(sm.history, p.SummaryHistory)
	sm.events = make([]model.KeywordEvent, len(p.Events))
	copy(sm.events, p.Events)

	sm.errorMessage = ""
	if p.Summary != "" {
		sm.status = StatusLive
	} else {
		sm.status = StatusWaiting
	}
}

// ResetSeries clears every derived series and display field. Runs on the
// "new stream" commit path before the new configuration is installed, and on
// explicit reset.
func (sm *StateManager) ResetSeries() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.reconciler.Reset()
	sm.summary = ""
	sm.videoTitle = ""
	sm.videoChannel = ""
	sm.updatedAt = 0
	sm.history = nil
	sm.events = nil
	sm.errorMessage = ""
}

// GetSnapshot returns a copy of the full session state
func (sm *StateManager) GetSnapshot() Snapshot {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	windowRates, windowLabels := sm.reconciler.DisplayWindow()

	return Snapshot{
		Status:       sm.status,
		ErrorMessage: sm.errorMessage,
		Summary:      sm.summary,
		VideoTitle:   sm.videoTitle,
		VideoChannel: sm.videoChannel,
		UpdatedAt:    sm.updatedAt,
		History:      append([]model.HistoryEntry(nil), sm.history...),
		Events:       append([]model.KeywordEvent(nil), sm.events...),
		Samples:      sm.reconciler.Samples(),
		Rates:        sm.reconciler.Rates(),
		Labels:       sm.reconciler.Labels(),
		WindowRates:  windowRates,
		WindowLabels: windowLabels,
		UsingPoints:  sm.reconciler.UsingPoints(),
		Clock:        sm.reconciler.Clock(),
	}
}

// ClosestSummary finds the history entry nearest in stream runtime to the
// rate sample at the given index.
func (sm *StateManager) ClosestSummary(sampleIndex int) (model.HistoryEntry, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	aligner := timeline.NewAligner(sm.reconciler.Samples(), sm.history, sm.reconciler.Clock())
	return aligner.ClosestSummary(sampleIndex)
}
