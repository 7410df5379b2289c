package watch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenb/go-stream-lens/internal/util"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	o, err := NewOrchestrator(&WatchConfig{})
	require.NoError(t, err)
	return o
}

func TestCursorScrubbing(t *testing.T) {
	o := newTestOrchestrator(t)
	o.stateManager.ApplyPayload(livePayload(), time.Unix(1100, 0))

	t.Run("follows_newest_by_default", func(t *testing.T) {
		view := o.currentView()
		assert.Equal(t, "01:30", view.CursorLabel)
		assert.Equal(t, float64(4), view.CursorRate)
		assert.False(t, view.CursorPinned)
		require.True(t, view.HasAligned)
		// The newest sample sits at elapsed 90s, nearest to the 01:45 entry
		assert.Equal(t, "01:45", view.AlignedRuntime)
		assert.Equal(t, "First boss", view.AlignedSummary)
	})

	t.Run("left_pins_an_earlier_sample", func(t *testing.T) {
		o.handleKeyboard(KeyEvent{Type: KeyLeft})

		view := o.currentView()
		assert.True(t, view.CursorPinned)
		assert.Equal(t, "00:05", view.CursorLabel)
		require.True(t, view.HasAligned)
		assert.Equal(t, "Intro", view.AlignedSummary)
	})

	t.Run("left_at_the_start_stays_put", func(t *testing.T) {
		o.handleKeyboard(KeyEvent{Type: KeyLeft})

		view := o.currentView()
		assert.True(t, view.CursorPinned)
		assert.Equal(t, "00:05", view.CursorLabel)
	})

	t.Run("right_past_the_end_resumes_following", func(t *testing.T) {
		o.handleKeyboard(KeyEvent{Type: KeyRight})

		view := o.currentView()
		assert.False(t, view.CursorPinned)
		assert.Equal(t, "01:30", view.CursorLabel)
	})
}

func TestCursorWithoutData(t *testing.T) {
	o := newTestOrchestrator(t)

	t.Run("no_samples_no_annotation", func(t *testing.T) {
		o.handleKeyboard(KeyEvent{Type: KeyLeft})

		view := o.currentView()
		assert.Empty(t, view.CursorLabel)
		assert.False(t, view.HasAligned)
	})

	t.Run("neutral_affordance_without_history", func(t *testing.T) {
		p := livePayload()
		p.SummaryHistory = nil
		o.stateManager.ApplyPayload(p, time.Unix(1100, 0))

		view := o.currentView()
		assert.Equal(t, "01:30", view.CursorLabel, "the sample still renders")
		assert.False(t, view.HasAligned, "nothing to align against")
	})
}

func TestCursorResetOnSeriesReset(t *testing.T) {
	o := newTestOrchestrator(t)
	o.stateManager.ApplyPayload(livePayload(), time.Unix(1100, 0))
	o.handleKeyboard(KeyEvent{Type: KeyLeft})
	require.True(t, o.currentView().CursorPinned)

	o.stateManager.ResetSeries()

	view := o.currentView()
	assert.Empty(t, view.CursorLabel, "a cleared series leaves no stale cursor")
	assert.False(t, o.currentView().CursorPinned)
}
