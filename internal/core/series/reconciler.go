package series

import (
	"time"

	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/core/runtime"
	"github.com/wrenb/go-stream-lens/internal/util"
)

const (
	// MaxPointWindow is the display window for the timestamped shape
	MaxPointWindow = 20000
	// MaxLegacyWindow is the display window for the legacy rates array
	MaxLegacyWindow = 100
)

// Reconciler merges each poll payload's velocity data into the persisted
// series. The timestamped ratePoints shape is authoritative; the legacy bare
// rates array is reconciled incrementally against the stored label count so
// already-displayed wall-clock labels never churn between ticks.
type Reconciler struct {
	samples     []model.RateSample
	rates       []float64
	labels      []string
	clock       runtime.Clock
	usingPoints bool
}

// NewReconciler creates an empty Reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Apply reconciles one successful payload into the series. now anchors the
// backward-counted labels on the legacy path.
func (r *Reconciler) Apply(p *model.SummaryPayload, now time.Time) {
	if anchor := p.StreamAnchor(); anchor > 0 {
		if r.clock.HasAnchor() && anchor < r.clock.Anchor() {
			util.LogDebugf("Stream start regressed from %.0f to %.0f, elapsed clamps at zero",
				r.clock.Anchor(), anchor)
		}
		r.clock = runtime.NewClock(anchor)
	}

	if p.HasRatePoints() {
		r.applyPoints(p.RatePoints)
		return
	}
	r.applyLegacy(p.Rates, now)
}

// applyPoints takes the timestamped series as authoritative and recomputes
// every label from the latest anchor. Labels are pure functions of the sample
// timestamps, so untouched prefixes come out byte-identical.
func (r *Reconciler) applyPoints(points []model.RateSample) {
	if len(points) < len(r.samples) {
		util.LogInfof("Rate series shrank from %d to %d points, stream restarted",
			len(r.samples), len(points))
	}

	r.samples = make([]model.RateSample, len(points))
	copy(r.samples, points)
	r.rates = nil
	r.usingPoints = true

	r.labels = make([]string, len(r.samples))
	for i, sample := range r.samples {
		r.labels[i] = r.clock.FormatRuntime(sample.Timestamp)
	}
}

// applyLegacy reconciles the bare rates array against the stored label count.
// A shorter array means the stream restarted and labels rebuild in full;
// equal length leaves labels alone; a longer one appends only the delta,
// counting backward one second per sample from now.
func (r *Reconciler) applyLegacy(rates []float64, now time.Time) {
	prev := len(r.labels)
	if r.usingPoints {
		// Shape downgrade: treat as a fresh legacy series
		prev = 0
		r.samples = nil
		r.labels = nil
		r.usingPoints = false
	}

	next := len(rates)
	r.rates = make([]float64, next)
	copy(r.rates, rates)

	switch {
	case next < prev:
		util.LogInfof("Rate series shrank from %d to %d entries, rebuilding labels", prev, next)
		r.labels = backwardLabels(now, next, 0)
	case next == prev:
		// Labels unchanged
	default:
		r.labels = append(r.labels, backwardLabels(now, next, prev)...)
	}
}

// backwardLabels builds wall-clock labels for indices [from, total), where
// the last index lands on now and each earlier one steps back a second.
func backwardLabels(now time.Time, total, from int) []string {
	tp := util.GetTimeProvider()
	labels := make([]string, 0, total-from)
	for i := from; i < total; i++ {
		labels = append(labels, tp.FormatUnixClock(now.Unix()-int64(total-1-i)))
	}
	return labels
}

// Reset clears all series state, including the anchor
func (r *Reconciler) Reset() {
	r.samples = nil
	r.rates = nil
	r.labels = nil
	r.clock = runtime.Clock{}
	r.usingPoints = false
}

// UsingPoints reports whether the timestamped shape is active
func (r *Reconciler) UsingPoints() bool {
	return r.usingPoints
}

// Clock returns the runtime clock carrying the latest stream anchor
func (r *Reconciler) Clock() runtime.Clock {
	return r.clock
}

// Samples returns the full retained timestamped series
func (r *Reconciler) Samples() []model.RateSample {
	out := make([]model.RateSample, len(r.samples))
	copy(out, r.samples)
	return out
}

// Rates returns the full retained legacy series
func (r *Reconciler) Rates() []float64 {
	out := make([]float64, len(r.rates))
	copy(out, r.rates)
	return out
}

// Labels returns the full label set, one per retained sample
func (r *Reconciler) Labels() []string {
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

// Len returns the retained series length
func (r *Reconciler) Len() int {
	if r.usingPoints {
		return len(r.samples)
	}
	return len(r.rates)
}

// DisplayWindow returns the most recent slice of rates and labels for
// rendering. Truncation applies here, not at storage, so exports always see
// the full retained series.
func (r *Reconciler) DisplayWindow() (rates []float64, labels []string) {
	window := MaxLegacyWindow
	total := len(r.rates)
	values := r.rates
	if r.usingPoints {
		window = MaxPointWindow
		total = len(r.samples)
		values = make([]float64, total)
		for i, s := range r.samples {
			values[i] = s.Rate
		}
	}

	start := 0
	if total > window {
		start = total - window
	}

	rates = make([]float64, total-start)
	copy(rates, values[start:])
	labels = make([]string, total-start)
	copy(labels, r.labels[start:])
	return rates, labels
}
