package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wrenb/go-stream-lens/internal/util"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name     string
		offset   int
		expected string
	}{
		{"zero", 0, "00:00"},
		{"under_a_minute", 42, "00:42"},
		{"minutes", 90, "01:30"},
		{"just_under_an_hour", 3599, "59:59"},
		{"exactly_an_hour", 3600, "01:00:00"},
		{"hours", 7384, "02:03:04"},
		{"negative_clamps", -5, "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatElapsed(tt.offset))
		})
	}
}

func TestParseRuntime(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  int
		expectErr bool
	}{
		{"mm_ss", "01:30", 90, false},
		{"zero", "00:00", 0, false},
		{"hh_mm_ss", "02:03:04", 7384, false},
		{"whitespace", " 01:30 ", 90, false},
		{"empty", "", 0, true},
		{"single_part", "90", 0, true},
		{"four_parts", "01:02:03:04", 0, true},
		{"non_numeric", "ab:cd", 0, true},
		{"negative_component", "-1:30", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRuntime(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseRuntimeRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 59, 60, 3599, 3600, 7384} {
		got, err := ParseRuntime(FormatElapsed(offset))
		assert.NoError(t, err)
		assert.Equal(t, offset, got)
	}
}

func TestClockElapsedSeconds(t *testing.T) {
	clock := NewClock(1000)

	assert.Equal(t, 90, clock.ElapsedSeconds(1090))
	assert.Equal(t, 0, clock.ElapsedSeconds(1000))
	assert.Equal(t, 0, clock.ElapsedSeconds(950), "timestamps before the anchor clamp to zero")
}

func TestClockFormatRuntime(t *testing.T) {
	util.InitializeTimeProvider("UTC")

	t.Run("anchored", func(t *testing.T) {
		clock := NewClock(1000)
		assert.Equal(t, "01:30", clock.FormatRuntime(1090))
		assert.Equal(t, "01:01:40", clock.FormatRuntime(4700))
	})

	t.Run("unanchored_falls_back_to_wall_clock", func(t *testing.T) {
		clock := NewClock(0)
		assert.False(t, clock.HasAnchor())
		// 1970-01-01 00:01:30 UTC
		assert.Equal(t, "00:01:30", clock.FormatRuntime(90))
	})
}
