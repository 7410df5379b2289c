package runtime

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wrenb/go-stream-lens/internal/util"
)

// Clock converts absolute sample timestamps into elapsed-since-stream-start
// display strings. Without an anchor it falls back to wall-clock time in the
// configured timezone.
type Clock struct {
	anchor float64
}

// NewClock creates a Clock anchored at the given stream start.
// An anchor of zero means no anchor is known.
func NewClock(streamStart float64) Clock {
	return Clock{anchor: streamStart}
}

// HasAnchor reports whether a stream start anchor is set
func (c Clock) HasAnchor() bool {
	return c.anchor > 0
}

// Anchor returns the stream start in epoch seconds, zero when unset
func (c Clock) Anchor() float64 {
	return c.anchor
}

// ElapsedSeconds converts an absolute timestamp to whole seconds since
// stream start, clamped at zero. A timestamp before the anchor (the anchor
// regressed, or clock skew) displays as 00:00 rather than going negative.
func (c Clock) ElapsedSeconds(timestamp float64) int {
	offset := int(timestamp - c.anchor)
	if offset < 0 {
		return 0
	}
	return offset
}

// FormatRuntime renders an absolute timestamp as elapsed runtime ("mm:ss",
// or "hh:mm:ss" once the stream passes an hour). Without an anchor it renders
// the wall clock instead.
func (c Clock) FormatRuntime(timestamp float64) string {
	if !c.HasAnchor() {
		if timestamp < 0 {
			timestamp = 0
		}
		return util.GetTimeProvider().FormatUnixClock(int64(timestamp))
	}
	return FormatElapsed(c.ElapsedSeconds(timestamp))
}

// FormatElapsed renders a whole-seconds offset as "mm:ss" or "hh:mm:ss"
func FormatElapsed(offset int) string {
	if offset < 0 {
		offset = 0
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60
	seconds := offset % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// ParseRuntime parses a "mm:ss" or "hh:mm:ss" runtime string into whole
// seconds. History entries carry runtimes in this form; anything else is an
// error and the caller skips the entry.
func ParseRuntime(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("runtime %q: want mm:ss or hh:mm:ss", s)
	}

	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("runtime %q: invalid component %q", s, part)
		}
		values[i] = v
	}

	if len(values) == 2 {
		return values[0]*60 + values[1], nil
	}
	return values[0]*3600 + values[1]*60 + values[2], nil
}
