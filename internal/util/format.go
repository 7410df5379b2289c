package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset  = "\033[0m"
	ColorCyan   = "\033[36m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"

	ClearScreen    = "\033[2J"
	ClearLine      = "\033[2K"
	MoveCursorHome = "\033[H"
	HideCursor     = "\033[?25l"
	ShowCursor     = "\033[?25h"
)

// GetDisplayWidth calculates the actual display width of a string, accounting
// for emojis and wide runes that chat titles routinely contain.
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateToWidth shortens a string to the given display width, appending an
// ellipsis when anything was cut.
func TruncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

// PadToWidth pads a string with spaces to a specific display width
func PadToWidth(text string, width int) string {
	actual := runewidth.StringWidth(text)
	if actual >= width {
		return text
	}
	return text + strings.Repeat(" ", width-actual)
}

// FormatRate renders a messages-per-second rate for display
func FormatRate(rate float64) string {
	if rate >= 100 {
		return fmt.Sprintf("%.0f msg/s", rate)
	}
	return fmt.Sprintf("%.2f msg/s", rate)
}

// FormatRelativeAge renders how long ago an epoch-seconds timestamp was
func FormatRelativeAge(epoch int64, now time.Time) string {
	if epoch <= 0 {
		return "never"
	}
	age := now.Sub(time.Unix(epoch, 0))
	if age < 0 {
		age = 0
	}
	switch {
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	default:
		return fmt.Sprintf("%dh %dm ago", int(age.Hours()), int(age.Minutes())%60)
	}
}
