package display

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/util"
)

// View is the render-ready projection of the session state. The watch
// orchestrator converts its snapshot into this shape so the renderer stays
// independent of application wiring.
type View struct {
	Status       string
	Live         bool
	Offline      bool
	Idle         bool
	Target       string
	Paused       bool
	ErrorMessage string
	Summary      string
	VideoTitle   string
	VideoChannel string
	UpdatedAt    int64
	History      []model.HistoryEntry
	Events       []model.KeywordEvent
	WindowRates  []float64

	// Cursor annotation: the selected velocity sample and the history entry
	// nearest to it in stream runtime. CursorLabel empty means no sample.
	CursorLabel    string
	CursorRate     float64
	CursorPinned   bool
	HasAligned     bool
	AlignedRuntime string
	AlignedSummary string
}

const (
	historyTail   = 5
	eventTail     = 8
	minTermWidth  = 60
	fallbackWidth = 100
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// TerminalDisplay renders the live session view with ANSI sequences
type TerminalDisplay struct {
	out *os.File
}

// NewTerminalDisplay creates a display writing to stdout
func NewTerminalDisplay() *TerminalDisplay {
	return &TerminalDisplay{out: os.Stdout}
}

// EnterAlternateScreen switches to the alternate screen buffer
func (d *TerminalDisplay) EnterAlternateScreen() {
	fmt.Fprint(d.out, "\033[?1049h"+util.HideCursor)
}

// ExitAlternateScreen restores the main screen buffer
func (d *TerminalDisplay) ExitAlternateScreen() {
	fmt.Fprint(d.out, util.ShowCursor+"\033[?1049l")
}

// Render draws one frame of the session view
func (d *TerminalDisplay) Render(view View) {
	width := d.maxWidth()
	var b strings.Builder

	b.WriteString(util.MoveCursorHome + util.ClearScreen)

	d.renderHeader(&b, view, width)
	d.renderSummary(&b, view, width)
	d.renderSparkline(&b, view, width)
	d.renderCursor(&b, view, width)
	d.renderHistory(&b, view, width)
	d.renderEvents(&b, view, width)

	b.WriteString("\r\n" + util.ColorGray +
		"[q] quit  [p] pause  [r] refresh  [e] export csv  [←/→] scrub" + util.ColorReset + "\r\n")

	fmt.Fprint(d.out, b.String())
}

func (d *TerminalDisplay) renderHeader(b *strings.Builder, view View, width int) {
	color := util.ColorYellow
	switch {
	case view.Live:
		color = util.ColorGreen
	case view.Offline:
		color = util.ColorRed
	case view.Idle:
		color = util.ColorGray
	}

	target := view.Target
	if target == "" {
		target = "no session"
	}
	line := fmt.Sprintf("%s%s%s  %s", color+util.ColorBold, strings.ToUpper(view.Status), util.ColorReset, target)
	if view.Paused {
		line += "  " + util.ColorYellow + "(paused)" + util.ColorReset
	}
	b.WriteString(line + "\r\n")

	if view.VideoTitle != "" || view.VideoChannel != "" {
		title := util.TruncateToWidth(view.VideoTitle, width-2)
		b.WriteString(util.ColorBold + title + util.ColorReset)
		if view.VideoChannel != "" {
			b.WriteString(util.ColorGray + "  — " + view.VideoChannel + util.ColorReset)
		}
		b.WriteString("\r\n")
	}

	b.WriteString(util.ColorGray + "updated " +
		util.FormatRelativeAge(view.UpdatedAt, time.Now()) + util.ColorReset + "\r\n")

	if view.ErrorMessage != "" {
		b.WriteString(util.ColorRed + util.TruncateToWidth(view.ErrorMessage, width) + util.ColorReset + "\r\n")
	}
	b.WriteString("\r\n")
}

func (d *TerminalDisplay) renderSummary(b *strings.Builder, view View, width int) {
	if view.Summary == "" {
		b.WriteString(util.ColorGray + "Waiting for first summary..." + util.ColorReset + "\r\n\r\n")
		return
	}
	for _, line := range wrapText(view.Summary, width) {
		b.WriteString(line + "\r\n")
	}
	b.WriteString("\r\n")
}

func (d *TerminalDisplay) renderSparkline(b *strings.Builder, view View, width int) {
	rates := view.WindowRates
	if len(rates) == 0 {
		return
	}
	if len(rates) > width {
		rates = rates[len(rates)-width:]
	}

	max := 0.0
	for _, r := range rates {
		if r > max {
			max = r
		}
	}

	var spark strings.Builder
	for _, r := range rates {
		idx := 0
		if max > 0 {
			idx = int(r / max * float64(len(sparkRunes)-1))
		}
		spark.WriteRune(sparkRunes[idx])
	}

	latest := rates[len(rates)-1]
	b.WriteString(util.ColorCyan + spark.String() + util.ColorReset + "\r\n")
	b.WriteString(util.ColorGray + "chat velocity " + util.FormatRate(latest) + util.ColorReset + "\r\n\r\n")
}

// renderCursor annotates the selected velocity sample with the history entry
// nearest to it in stream runtime.
func (d *TerminalDisplay) renderCursor(b *strings.Builder, view View, width int) {
	if view.CursorLabel == "" {
		return
	}

	marker := "latest"
	if view.CursorPinned {
		marker = "pinned"
	}
	b.WriteString(fmt.Sprintf("%s▸ %s (%s)%s  %s\r\n", util.ColorCyan,
		view.CursorLabel, marker, util.ColorReset, util.FormatRate(view.CursorRate)))

	if view.HasAligned {
		b.WriteString(fmt.Sprintf("  %s[%s]%s %s\r\n", util.ColorGray,
			view.AlignedRuntime, util.ColorReset,
			util.TruncateToWidth(view.AlignedSummary, width-12)))
	} else {
		b.WriteString(util.ColorGray + "  no summary near this sample" + util.ColorReset + "\r\n")
	}
	b.WriteString("\r\n")
}

func (d *TerminalDisplay) renderHistory(b *strings.Builder, view View, width int) {
	if len(view.History) == 0 {
		return
	}
	b.WriteString(util.ColorBold + "History" + util.ColorReset + "\r\n")

	// Newest first for display; arrival order is oldest first
	count := 0
	for i := len(view.History) - 1; i >= 0 && count < historyTail; i-- {
		entry := view.History[i]
		line := fmt.Sprintf("  %s%s%s  %s", util.ColorGray, entry.Runtime, util.ColorReset,
			util.TruncateToWidth(entry.Summary, width-12))
		b.WriteString(line + "\r\n")
		count++
	}
	b.WriteString("\r\n")
}

func (d *TerminalDisplay) renderEvents(b *strings.Builder, view View, width int) {
	if len(view.Events) == 0 {
		return
	}
	b.WriteString(util.ColorBold + "Keyword events" + util.ColorReset + "\r\n")

	start := 0
	if len(view.Events) > eventTail {
		start = len(view.Events) - eventTail
	}
	for _, ev := range view.Events[start:] {
		runtime := ev.Runtime
		if runtime == "" {
			runtime = "--:--"
		}
		b.WriteString(fmt.Sprintf("  %s%s%s  %s\r\n", util.ColorGray, runtime, util.ColorReset,
			util.TruncateToWidth(ev.Keyword, width-12)))
	}
}

// maxWidth returns the usable terminal width with a fallback
func (d *TerminalDisplay) maxWidth() int {
	termWidth, _, err := term.GetSize(int(d.out.Fd()))
	if err != nil || termWidth < minTermWidth {
		return fallbackWidth
	}
	return termWidth - 2
}

// wrapText wraps a paragraph at display width, breaking on spaces
func wrapText(text string, width int) []string {
	if width < 20 {
		width = 20
	}
	words := strings.Fields(text)
	var lines []string
	var current string
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if util.GetDisplayWidth(candidate) > width && current != "" {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
