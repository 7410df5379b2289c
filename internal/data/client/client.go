package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/wrenb/go-stream-lens/internal/core/config"
	"github.com/wrenb/go-stream-lens/internal/core/model"
	"github.com/wrenb/go-stream-lens/internal/util"
)

// SummaryFetcher fetches one summary snapshot for a session configuration
type SummaryFetcher interface {
	FetchSummary(ctx context.Context, cfg config.SessionConfig) (*model.SummaryPayload, error)
}

// Client talks to the summarizer backend's /api/summary endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given backend base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchSummary issues one GET /api/summary request parameterized from the
// given configuration. The keyword parameters are only sent in streamer mode,
// matching what the backend acts on. A payload carrying an error field counts
// as a failed fetch regardless of HTTP status.
func (c *Client) FetchSummary(ctx context.Context, cfg config.SessionConfig) (*model.SummaryPayload, error) {
	endpoint, err := c.summaryURL(cfg)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var payload model.SummaryPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to decode summary payload: %w", err)
	}

	// The backend reports user-facing failures in-band; surface them over
	// the transport status so the message survives.
	if payload.Error != "" {
		return nil, fmt.Errorf("%s", payload.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	util.LogDebugf("Fetched summary for %s: %d rate points, %d history entries",
		cfg.IdentityKey(), len(payload.RatePoints), len(payload.SummaryHistory))

	return &payload, nil
}

// summaryURL builds the /api/summary request URL for a configuration
func (c *Client) summaryURL(cfg config.SessionConfig) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}
	endpoint := base.JoinPath("/api/summary")

	query := url.Values{}
	query.Set("videoId", cfg.StreamRef)
	query.Set("mode", string(cfg.Mode))
	query.Set("source", string(cfg.Source))
	if cfg.Mode == config.ModeStreamer {
		// Normalize the comma list so stray spaces and blanks never reach
		// the backend's keyword matcher.
		if keywords := cfg.KeywordList(); len(keywords) > 0 {
			query.Set("keywords", strings.Join(keywords, ","))
		}
		query.Set("keywordThreshold", strconv.Itoa(cfg.KeywordThreshold))
	}
	endpoint.RawQuery = query.Encode()

	return endpoint.String(), nil
}
