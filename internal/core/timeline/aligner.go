package timeline

import (
	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/core/runtime"
)

// Aligner maps a sample of the fine-grained rate series to the temporally
// closest entry of the coarser summary-history series, both measured in
// elapsed stream runtime.
type Aligner struct {
	samples []model.RateSample
	history []model.HistoryEntry
	clock   runtime.Clock
}

// NewAligner creates an Aligner over the given series state. When the clock
// carries no explicit anchor, the first sample's timestamp stands in for
// stream start.
func NewAligner(samples []model.RateSample, history []model.HistoryEntry, clock runtime.Clock) *Aligner {
	return &Aligner{
		samples: samples,
		history: history,
		clock:   clock,
	}
}

// ClosestSummary returns the history entry whose runtime is numerically
// closest to the elapsed runtime of the sample at sampleIndex. Ties resolve
// to the first minimal entry in arrival order. ok is false when no sample
// exists at that index, no anchor can be derived, or no history entry parses;
// callers render a neutral "no summary" affordance, never an error.
func (a *Aligner) ClosestSummary(sampleIndex int) (entry model.HistoryEntry, ok bool) {
	if sampleIndex < 0 || sampleIndex >= len(a.samples) {
		return model.HistoryEntry{}, false
	}

	anchor := a.clock.Anchor()
	if anchor <= 0 {
		anchor = a.samples[0].Timestamp
	}
	if anchor <= 0 {
		return model.HistoryEntry{}, false
	}

	elapsed := int(a.samples[sampleIndex].Timestamp - anchor)
	if elapsed < 0 {
		elapsed = 0
	}

	// Linear scan: history grows one entry per summary tick, bounded by poll
	// count over a session, not by sample count.
	bestDelta := -1
	for _, candidate := range a.history {
		seconds, err := runtime.ParseRuntime(candidate.Runtime)
		if err != nil {
			continue
		}
		delta := seconds - elapsed
		if delta < 0 {
			delta = -delta
		}
		if bestDelta < 0 || delta < bestDelta {
			bestDelta = delta
			entry = candidate
			ok = true
		}
	}

	return entry, ok
}
