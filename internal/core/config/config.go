package config

import (
	"fmt"
	"strings"
)

// Source identifies the streaming platform a session targets
type Source string

const (
	SourceYouTube Source = "youtube"
	SourceTwitch  Source = "twitch"
)

// Mode selects the summarization style requested from the backend
type Mode string

const (
	ModeGeneral  Mode = "general"
	ModeStreamer Mode = "streamer"
)

// SessionConfig describes one monitoring session. Two instances exist at a
// time: a freely mutable draft being edited and the committed active config
// that polling targets. The draft never reaches the wire.
type SessionConfig struct {
	Source           Source `json:"source"`
	StreamRef        string `json:"streamRef"`
	Mode             Mode   `json:"mode"`
	Keywords         string `json:"keywords"`
	KeywordThreshold int    `json:"keywordThreshold"`
}

// IdentityKey returns the source:reference pair that identifies the
// underlying stream. Committing a config whose key differs from the active
// one means a new stream, so accumulated series must be discarded.
func (c SessionConfig) IdentityKey() string {
	return fmt.Sprintf("%s:%s", c.Source, c.StreamRef)
}

// Validate normalizes a config in place, applying the same defaults the
// backend applies server-side.
func (c *SessionConfig) Validate() error {
	if c.Source == "" {
		c.Source = SourceYouTube
	}
	if c.Source != SourceYouTube && c.Source != SourceTwitch {
		return fmt.Errorf("invalid source %q: use youtube or twitch", c.Source)
	}
	if c.Mode != ModeStreamer {
		c.Mode = ModeGeneral
	}
	if c.KeywordThreshold < 1 {
		c.KeywordThreshold = 2
	}
	if c.KeywordThreshold > 4 {
		c.KeywordThreshold = 4
	}
	c.StreamRef = strings.TrimSpace(c.StreamRef)
	return nil
}

// KeywordList splits the comma-separated keyword field, dropping blanks
func (c SessionConfig) KeywordList() []string {
	if c.Keywords == "" {
		return nil
	}
	parts := strings.Split(c.Keywords, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
