package watch

import (
	"github.com/wrenb/go-stream-lens/internal/core/config"
	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/presentation/display"
)

// buildView projects the session snapshot into the renderer's view model.
// cursor selects the velocity sample whose runtime and aligned history entry
// the renderer annotates; pinned distinguishes a user-scrubbed cursor from
// one following the newest sample.
func buildView(snap Snapshot, active config.SessionConfig, hasActive bool, paused bool,
	cursor int, pinned bool, aligned model.HistoryEntry, hasAligned bool) display.View {
	target := ""
	if hasActive {
		target = active.IdentityKey()
	}

	view := display.View{
		Status:       string(snap.Status),
		Live:         snap.Status == StatusLive,
		Offline:      snap.Status == StatusOffline,
		Idle:         snap.Status == StatusIdle,
		Target:       target,
		Paused:       paused,
		ErrorMessage: snap.ErrorMessage,
		Summary:      snap.Summary,
		VideoTitle:   snap.VideoTitle,
		VideoChannel: snap.VideoChannel,
		UpdatedAt:    snap.UpdatedAt,
		History:      snap.History,
		Events:       snap.Events,
		WindowRates:  snap.WindowRates,
	}

	if cursor >= 0 && cursor < len(snap.Samples) {
		view.CursorLabel = snap.Labels[cursor]
		view.CursorRate = snap.Samples[cursor].Rate
		view.CursorPinned = pinned
		view.HasAligned = hasAligned
		view.AlignedRuntime = aligned.Runtime
		view.AlignedSummary = aligned.Summary
	}

	return view
}
