package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenb/go-stream-lens/internal/core/config"
	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/core/series"
	"github.com/wrenb/go-stream-lens/internal/data/client"
	"github.com/wrenb/go-stream-lens/internal/util"
)

var (
	// Logging related
	debug bool

	// Backend endpoint
	apiBaseURL string

	// Session parameters
	source           string
	streamRef        string
	mode             string
	keywords         string
	keywordThreshold int

	// Output related
	timezone string

	rootCmd = &cobra.Command{
		Use:   "go-stream-lens [flags]",
		Short: "Live stream chat analytics viewer",
		Long: `go-stream-lens is a command-line client for a live chat summarizer backend.

It polls the backend's summary endpoint for a YouTube or Twitch stream and
presents the rolling summary, summary history, keyword events, and chat
velocity series. The root command fetches a single snapshot; use watch for a
live view and export for CSV downloads.

Examples:
  go-stream-lens --ref dQw4w9WgXcQ                          # One YouTube snapshot
  go-stream-lens --ref https://youtu.be/dQw4w9WgXcQ          # Same, by link
  go-stream-lens --source twitch --ref somechannel           # Twitch channel
  go-stream-lens watch --ref dQw4w9WgXcQ                     # Live view
  go-stream-lens watch --config session.json                 # Hot-reloaded config file
  go-stream-lens export --ref dQw4w9WgXcQ --out-dir ./data   # CSV export`,
		RunE: runSnapshot,
	}
)

const defaultLogFile = "~/.go-stream-lens/logs/app.log"

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api", "http://localhost:6767",
		"Summarizer backend base URL")
	rootCmd.PersistentFlags().StringVar(&source, "source", "youtube",
		"Stream platform (youtube, twitch)")
	rootCmd.PersistentFlags().StringVar(&streamRef, "ref", "",
		"Video ID, channel handle, or playback URL")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "general",
		"Summary mode (general, streamer)")
	rootCmd.PersistentFlags().StringVar(&keywords, "keywords", "",
		"Comma-separated keywords to track (streamer mode)")
	rootCmd.PersistentFlags().IntVar(&keywordThreshold, "keyword-threshold", 2,
		"Matches required before a keyword event fires (1-4)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "Local",
		"Timezone for wall-clock labels (e.g., Asia/Shanghai, UTC)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode")
}

// initRuntime initializes logging and the time provider for every command
func initRuntime() {
	logLevel := "info"
	if debug {
		logLevel = "debug"
	}
	logFile := expandPath(defaultLogFile)
	ensureDir(filepath.Dir(logFile))
	util.InitLogger(logLevel, logFile, debug)
	util.InitializeTimeProvider(timezone)
}

// stageFromFlags builds a committed stager from the command-line session
// parameters. ErrInvalidReference surfaces the platform-specific message.
func stageFromFlags() (*config.Stager, config.SessionConfig, error) {
	stager := config.NewStager()
	stager.Stage(func(draft *config.SessionConfig) {
		draft.Source = config.Source(source)
		draft.StreamRef = streamRef
		draft.Mode = config.Mode(mode)
		draft.Keywords = keywords
		draft.KeywordThreshold = keywordThreshold
	})

	result, err := stager.Commit(nil)
	if err != nil {
		if errors.Is(err, config.ErrInvalidReference) {
			return nil, config.SessionConfig{}, fmt.Errorf("%s", config.InvalidReferenceMessage(config.Source(source)))
		}
		return nil, config.SessionConfig{}, err
	}
	return stager, result.Active, nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("snapshot failed: %w", err)
	}

	reconciler := series.NewReconciler()
	reconciler.Apply(payload, time.Now())

	printSnapshot(active, payload, reconciler)
	return nil
}

// printSnapshot renders a one-shot plain-text report to stdout
func printSnapshot(active config.SessionConfig, payload *model.SummaryPayload, reconciler *series.Reconciler) {
	fmt.Printf("Session:  %s\n", active.IdentityKey())
	if payload.VideoTitle != "" {
		fmt.Printf("Title:    %s\n", payload.VideoTitle)
	}
	if payload.VideoChannel != "" {
		fmt.Printf("Channel:  %s\n", payload.VideoChannel)
	}
	if payload.UpdatedAt != 0 {
		fmt.Printf("Updated:  %s\n", util.FormatRelativeAge(int64(payload.UpdatedAt), time.Now()))
	}

	fmt.Println()
	if payload.Summary != "" {
		fmt.Println(payload.Summary)
	} else {
		fmt.Println("No summary yet.")
	}

	if rates, labels := reconciler.DisplayWindow(); len(rates) > 0 {
		latest := rates[len(rates)-1]
		fmt.Printf("\nChat velocity: %s (%d samples, latest at %s)\n",
			util.FormatRate(latest), reconciler.Len(), labels[len(labels)-1])
	}

	if len(payload.SummaryHistory) > 0 {
		fmt.Printf("\nHistory (%d entries, newest first):\n", len(payload.SummaryHistory))
		shown := 0
		for i := len(payload.SummaryHistory) - 1; i >= 0 && shown < 5; i-- {
			entry := payload.SummaryHistory[i]
			fmt.Printf("  [%s] %s\n", entry.Runtime, entry.Summary)
			shown++
		}
	}

	if len(payload.Events) > 0 {
		fmt.Printf("\nKeyword events:\n")
		for _, ev := range payload.Events {
			runtime := ev.Runtime
			if runtime == "" {
				runtime = "--:--"
			}
			fmt.Printf("  [%s] %s\n", runtime, ev.Keyword)
		}
	}
}

func Execute() error {
	return rootCmd.Execute()
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
