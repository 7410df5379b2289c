package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/core/runtime"
)

func history(runtimes ...string) []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(runtimes))
	for i, r := range runtimes {
		out[i] = model.HistoryEntry{Runtime: r, Summary: "summary at " + r}
	}
	return out
}

func TestClosestSummary(t *testing.T) {
	samples := []model.RateSample{
		{Timestamp: 1005, Rate: 1},
		{Timestamp: 1090, Rate: 4},
		{Timestamp: 1300, Rate: 2},
	}

	t.Run("picks_nearest_runtime", func(t *testing.T) {
		a := NewAligner(samples, history("01:00", "01:45", "02:00"), runtime.NewClock(1000))

		// Sample at elapsed 90s: |60-90|=30, |105-90|=15, |120-90|=30
		entry, ok := a.ClosestSummary(1)
		require.True(t, ok)
		assert.Equal(t, "01:45", entry.Runtime)
	})

	t.Run("tie_resolves_to_first_arrival", func(t *testing.T) {
		a := NewAligner(samples, history("01:00", "02:00"), runtime.NewClock(1000))

		// Elapsed 90s is equidistant from 60s and 120s
		entry, ok := a.ClosestSummary(1)
		require.True(t, ok)
		assert.Equal(t, "01:00", entry.Runtime)
	})

	t.Run("malformed_runtimes_skipped", func(t *testing.T) {
		a := NewAligner(samples, history("garbage", "01:45", ""), runtime.NewClock(1000))

		entry, ok := a.ClosestSummary(1)
		require.True(t, ok)
		assert.Equal(t, "01:45", entry.Runtime)
	})

	t.Run("no_anchor_falls_back_to_first_sample", func(t *testing.T) {
		a := NewAligner(samples, history("00:00", "01:30", "05:00"), runtime.Clock{})

		// Elapsed measured from samples[0]: 1090-1005 = 85s, closest to 01:30
		entry, ok := a.ClosestSummary(1)
		require.True(t, ok)
		assert.Equal(t, "01:30", entry.Runtime)
	})

	t.Run("sample_before_anchor_clamps_to_zero", func(t *testing.T) {
		a := NewAligner(samples, history("00:00", "10:00"), runtime.NewClock(2000))

		entry, ok := a.ClosestSummary(0)
		require.True(t, ok)
		assert.Equal(t, "00:00", entry.Runtime)
	})
}

func TestClosestSummaryNoResult(t *testing.T) {
	samples := []model.RateSample{{Timestamp: 1005, Rate: 1}}

	t.Run("index_out_of_range", func(t *testing.T) {
		a := NewAligner(samples, history("01:00"), runtime.NewClock(1000))
		_, ok := a.ClosestSummary(5)
		assert.False(t, ok)
		_, ok = a.ClosestSummary(-1)
		assert.False(t, ok)
	})

	t.Run("empty_history", func(t *testing.T) {
		a := NewAligner(samples, nil, runtime.NewClock(1000))
		_, ok := a.ClosestSummary(0)
		assert.False(t, ok)
	})

	t.Run("nothing_parses", func(t *testing.T) {
		a := NewAligner(samples, history("nope", "also nope"), runtime.NewClock(1000))
		_, ok := a.ClosestSummary(0)
		assert.False(t, ok)
	})

	t.Run("no_derivable_anchor", func(t *testing.T) {
		a := NewAligner([]model.RateSample{{Timestamp: 0, Rate: 1}}, history("01:00"), runtime.Clock{})
		_, ok := a.ClosestSummary(0)
		assert.False(t, ok)
	})

	t.Run("no_samples", func(t *testing.T) {
		a := NewAligner(nil, history("01:00"), runtime.NewClock(1000))
		_, ok := a.ClosestSummary(0)
		assert.False(t, ok)
	})
}
