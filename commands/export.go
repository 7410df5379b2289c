package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenb/go-stream-lens/internal/core/series"
	"github.com/wrenb/go-stream-lens/internal/data/client"
	"github.com/wrenb/go-stream-lens/internal/presentation/formatter"
)

var exportOutDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export keyword events and chat velocity as CSV",
	Long: `Fetches one summary snapshot and writes keyword-timestamps.csv and
chat-velocity.csv into the output directory. A file is only written when its
source series has data.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOutDir, "out-dir", ".",
		"Directory for CSV exports")
}

func runExport(cmd *cobra.Command, args []string) error {
	initRuntime()

	_, active, err := stageFromFlags()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 20*time.Second)
	defer cancel()

	summaryClient := client.NewClient(apiBaseURL)
	payload, err := summaryClient.FetchSummary(ctx, active)
	if err != nil {
		return fmt.Errorf("export fetch failed: %w", err)
	}

	reconciler := series.NewReconciler()
	reconciler.Apply(payload, time.Now())

	exporter := formatter.NewCSVExporter()
	wrote := 0

	path, err := exporter.ExportEventsFile(exportOutDir, payload.Events)
	switch {
	case err == nil:
		fmt.Printf("Wrote %s\n", path)
		wrote++
	case !errors.Is(err, formatter.ErrNoData):
		return err
	}

	path, err = exporter.ExportRatesFile(exportOutDir, reconciler.Samples(), reconciler.Rates(), reconciler.Clock())
	switch {
	case err == nil:
		fmt.Printf("Wrote %s\n", path)
		wrote++
	case !errors.Is(err, formatter.ErrNoData):
		return err
	}

	if wrote == 0 {
		fmt.Println("Nothing to export yet.")
	}
	return nil
}
