package model

import (
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// RateSample is one point of the chat velocity series: an absolute sample
// timestamp in epoch seconds and the measured messages-per-second rate.
type RateSample struct {
	Timestamp float64 `json:"timestamp"`
	Rate      float64 `json:"rate"`
}

// HistoryEntry is one snapshot of the rolling summary, stamped with the
// stream runtime ("mm:ss" or "hh:mm:ss") at which it was produced.
type HistoryEntry struct {
	Runtime string `json:"timestamp"`
	Summary string `json:"summary"`
}

// KeywordEvent records a keyword threshold being crossed at a stream runtime.
// Runtime may be empty when the backend could not anchor the hit.
type KeywordEvent struct {
	Runtime string `json:"timestamp"`
	Keyword string `json:"keyword"`
}

// FlexibleEpoch decodes an epoch-seconds value that may arrive as a JSON
// number, a numeric string, or null. Zero means absent.
type FlexibleEpoch float64

func (fe *FlexibleEpoch) UnmarshalJSON(data []byte) error {
	var num float64
	if err := sonic.Unmarshal(data, &num); err == nil {
		*fe = FlexibleEpoch(num)
		return nil
	}

	var str string
	if err := sonic.Unmarshal(data, &str); err == nil {
		if str == "" {
			*fe = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return fmt.Errorf("epoch value %q is not numeric: %w", str, err)
		}
		*fe = FlexibleEpoch(parsed)
		return nil
	}

	if string(data) == "null" {
		*fe = 0
		return nil
	}

	return fmt.Errorf("epoch value must be a number, numeric string, or null")
}

// SummaryPayload is the response body of GET /api/summary.
//
// Two velocity shapes exist on the wire: the preferred RatePoints carries
// timestamped samples, the legacy Rates carries bare numbers sampled roughly
// once per second. StreamStart arrives under either spelling depending on
// backend version.
type SummaryPayload struct {
	Summary        string         `json:"summary"`
	Events         []KeywordEvent `json:"events"`
	SummaryHistory []HistoryEntry `json:"summaryHistory"`
	VideoTitle     string         `json:"videoTitle"`
	VideoChannel   string         `json:"videoChannel"`
	Rates          []float64      `json:"rates"`
	RatePoints     []RateSample   `json:"ratePoints"`
	StreamStart    FlexibleEpoch  `json:"streamStart"`
	StreamStartTs  FlexibleEpoch  `json:"streamStartTs"`
	UpdatedAt      FlexibleEpoch  `json:"updatedAt"`
	Error          string         `json:"error"`
}

// StreamAnchor returns the stream start anchor in epoch seconds, preferring
// the modern spelling. Zero means no anchor was supplied.
func (p *SummaryPayload) StreamAnchor() float64 {
	if p.StreamStart != 0 {
		return float64(p.StreamStart)
	}
	return float64(p.StreamStartTs)
}

// HasRatePoints reports whether the preferred timestamped shape is usable
func (p *SummaryPayload) HasRatePoints() bool {
	return len(p.RatePoints) > 0
}
