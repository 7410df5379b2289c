package watch

import "time"

// WatchConfig contains configuration for the watch command
type WatchConfig struct {
	// Backend endpoint
	APIBaseURL string

	// Session config file to load and hot-reload; empty disables the watcher
	ConfigFile string

	// Poll settings
	PollInterval time.Duration

	// Display settings
	Timezone      string
	UIRefreshRate float64

	// Export settings
	ExportDir string
}

// Validate checks the configuration and applies defaults
func (c *WatchConfig) Validate() error {
	if c.APIBaseURL == "" {
		c.APIBaseURL = "http://localhost:6767"
	}
	if c.PollInterval == 0 {
		c.PollInterval = 8 * time.Second
	}
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.UIRefreshRate == 0 {
		c.UIRefreshRate = 1.0
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	return nil
}
