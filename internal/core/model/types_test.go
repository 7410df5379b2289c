package model

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleEpoch(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected float64
	}{
		{"number", `1723456789`, 1723456789},
		{"fractional", `1723456789.5`, 1723456789.5},
		{"numeric_string", `"1723456789"`, 1723456789},
		{"fractional_string", `"1723456789.5"`, 1723456789.5},
		{"empty_string", `""`, 0},
		{"null", `null`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fe FlexibleEpoch
			require.NoError(t, sonic.Unmarshal([]byte(tt.json), &fe))
			assert.Equal(t, tt.expected, float64(fe))
		})
	}

	t.Run("non_numeric_string_fails", func(t *testing.T) {
		var fe FlexibleEpoch
		assert.Error(t, sonic.Unmarshal([]byte(`"soon"`), &fe))
	})
}

func TestStreamAnchor(t *testing.T) {
	t.Run("prefers_modern_spelling", func(t *testing.T) {
		p := &SummaryPayload{StreamStart: 1000, StreamStartTs: 2000}
		assert.Equal(t, float64(1000), p.StreamAnchor())
	})

	t.Run("falls_back_to_legacy_spelling", func(t *testing.T) {
		p := &SummaryPayload{StreamStartTs: 2000}
		assert.Equal(t, float64(2000), p.StreamAnchor())
	})

	t.Run("zero_when_absent", func(t *testing.T) {
		p := &SummaryPayload{}
		assert.Zero(t, p.StreamAnchor())
	})
}

func TestSummaryPayloadDecode(t *testing.T) {
	body := `{
		"summary": "Speedrun attempt, chat hyped",
		"events": [{"timestamp": "12:34", "keyword": "clutch"}, {"timestamp": "", "keyword": "gg"}],
		"summaryHistory": [{"timestamp": "01:00", "summary": "Intro"}],
		"videoTitle": "Any% attempts",
		"videoChannel": "speedrunner",
		"ratePoints": [{"timestamp": 1723456790.0, "rate": 3.5}],
		"streamStart": "1723456789",
		"updatedAt": 1723456800,
		"error": ""
	}`

	var p SummaryPayload
	require.NoError(t, sonic.Unmarshal([]byte(body), &p))

	assert.Equal(t, "Speedrun attempt, chat hyped", p.Summary)
	require.Len(t, p.Events, 2)
	assert.Equal(t, KeywordEvent{Runtime: "12:34", Keyword: "clutch"}, p.Events[0])
	assert.Empty(t, p.Events[1].Runtime, "events without runtime still decode")
	require.Len(t, p.SummaryHistory, 1)
	assert.Equal(t, "Intro", p.SummaryHistory[0].Summary)
	assert.True(t, p.HasRatePoints())
	assert.Equal(t, RateSample{Timestamp: 1723456790, Rate: 3.5}, p.RatePoints[0])
	assert.Equal(t, float64(1723456789), p.StreamAnchor())
	assert.Equal(t, FlexibleEpoch(1723456800), p.UpdatedAt)
	assert.Empty(t, p.Error)
}

func TestHasRatePoints(t *testing.T) {
	assert.False(t, (&SummaryPayload{Rates: []float64{1, 2}}).HasRatePoints())
	assert.True(t, (&SummaryPayload{RatePoints: []RateSample{{Timestamp: 1, Rate: 1}}}).HasRatePoints())
}
