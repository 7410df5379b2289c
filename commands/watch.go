package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenb/go-stream-lens/internal/application/watch"
	"github.com/wrenb/go-stream-lens/internal/core/config"
)

var (
	// Config file flag
	watchConfigFile string

	// Poll and display flags
	watchPollInterval  int
	watchRefreshPerSec float64

	// Export flag
	watchExportDir string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a live stream's chat analytics in real-time",
	Long: `Polls the summarizer backend and renders a live terminal view: rolling
summary, summary history, keyword events, and a chat velocity sparkline.

The session comes either from the --ref flags or from a JSON config file.
With --config, edits to the file retune the running session: changing
keywords keeps the accumulated series, switching streams resets them.

Keys: q quit, p pause display, r refresh now, e export CSVs, left/right
arrows scrub the velocity series to see the summary nearest each sample.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchConfigFile, "config", "",
		"Session config file (JSON), hot-reloaded on change")
	watchCmd.Flags().IntVar(&watchPollInterval, "poll-interval", 8,
		"Seconds between polls")
	watchCmd.Flags().Float64Var(&watchRefreshPerSec, "refresh-per-second", 1.0,
		"Display refresh rate (0.1-10 Hz)")
	watchCmd.Flags().StringVar(&watchExportDir, "out-dir", ".",
		"Directory for CSV exports")
}

func runWatch(cmd *cobra.Command, args []string) error {
	initRuntime()

	if watchRefreshPerSec < 0.1 || watchRefreshPerSec > 10 {
		return fmt.Errorf("refresh-per-second must be between 0.1 and 10")
	}
	if watchConfigFile == "" && streamRef == "" {
		return fmt.Errorf("either --ref or --config is required")
	}

	watchConfig := &watch.WatchConfig{
		APIBaseURL:    apiBaseURL,
		ConfigFile:    watchConfigFile,
		PollInterval:  time.Duration(watchPollInterval) * time.Second,
		Timezone:      timezone,
		UIRefreshRate: watchRefreshPerSec,
		ExportDir:     watchExportDir,
	}

	orchestrator, err := watch.NewOrchestrator(watchConfig)
	if err != nil {
		return err
	}

	// Flag-supplied session: stage and commit before the loop starts
	if watchConfigFile == "" {
		orchestrator.Stager().Stage(func(draft *config.SessionConfig) {
			draft.Source = config.Source(source)
			draft.StreamRef = streamRef
			draft.Mode = config.Mode(mode)
			draft.Keywords = keywords
			draft.KeywordThreshold = keywordThreshold
		})
		if err := orchestrator.CommitDraft(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return orchestrator.Run(ctx)
}
