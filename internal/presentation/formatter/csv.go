package formatter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/core/runtime"
	"github.com/wrenb/go-stream-lens/internal/util"
)

const (
	// EventsFileName is the keyword event export file
	EventsFileName = "keyword-timestamps.csv"
	// RatesFileName is the chat velocity export file
	RatesFileName = "chat-velocity.csv"
)

// ErrNoData reports that nothing exists to export. Callers disable the
// export action instead of writing an empty file.
var ErrNoData = errors.New("no data to export")

// CSVExporter renders keyword events and rate series as comma-delimited
// text. Data fields are always double-quoted with embedded quotes doubled;
// headers are bare.
type CSVExporter struct{}

// NewCSVExporter creates a CSVExporter
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// WriteEvents writes keyword events as timestamp,keyword rows
func (e *CSVExporter) WriteEvents(w io.Writer, events []model.KeywordEvent) error {
	if len(events) == 0 {
		return ErrNoData
	}

	if _, err := fmt.Fprintln(w, "timestamp,keyword"); err != nil {
		return err
	}
	for _, ev := range events {
		row := quoteField(ev.Runtime) + "," + quoteField(ev.Keyword)
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// WriteRates writes the velocity series as elapsed,rate rows. With the
// timestamped shape, elapsed is the runtime-clock label for each sample;
// the legacy shape falls back to bare index,rate pairs.
func (e *CSVExporter) WriteRates(w io.Writer, samples []model.RateSample, rates []float64, clock runtime.Clock) error {
	if len(samples) == 0 && len(rates) == 0 {
		return ErrNoData
	}

	if _, err := fmt.Fprintln(w, "elapsed,rate"); err != nil {
		return err
	}

	if len(samples) > 0 {
		for _, sample := range samples {
			row := quoteField(clock.FormatRuntime(sample.Timestamp)) + "," + quoteField(formatRate(sample.Rate))
			if _, err := fmt.Fprintln(w, row); err != nil {
				return err
			}
		}
		return nil
	}

	for i, rate := range rates {
		row := quoteField(strconv.Itoa(i)) + "," + quoteField(formatRate(rate))
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

// ExportEventsFile writes the keyword event export into dir. No file is
// created when there is nothing to export.
func (e *CSVExporter) ExportEventsFile(dir string, events []model.KeywordEvent) (string, error) {
	if len(events) == 0 {
		return "", ErrNoData
	}
	path := filepath.Join(dir, EventsFileName)
	if err := writeFile(path, func(w io.Writer) error {
		return e.WriteEvents(w, events)
	}); err != nil {
		return "", err
	}
	util.LogInfof("Exported %d keyword events to %s", len(events), path)
	return path, nil
}

// ExportRatesFile writes the velocity export into dir. No file is created
// when there is nothing to export.
func (e *CSVExporter) ExportRatesFile(dir string, samples []model.RateSample, rates []float64, clock runtime.Clock) (string, error) {
	if len(samples) == 0 && len(rates) == 0 {
		return "", ErrNoData
	}
	path := filepath.Join(dir, RatesFileName)
	if err := writeFile(path, func(w io.Writer) error {
		return e.WriteRates(w, samples, rates, clock)
	}); err != nil {
		return "", err
	}
	util.LogInfof("Exported velocity series to %s", path)
	return path, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()
	return write(file)
}

// quoteField double-quotes a field, doubling embedded quotes
func quoteField(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatRate renders a rate with minimal digits
func formatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'g', -1, 64)
}
