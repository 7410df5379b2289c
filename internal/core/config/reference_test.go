package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare_id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare_id_with_spaces", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"bare_id_underscore_dash", "a-b_c123XYZ", "a-b_c123XYZ"},
		{"watch_url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch_url_extra_params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short_link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live_path", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live_path_no_www", "https://youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"empty", "", ""},
		{"too_short", "abc123", ""},
		{"too_long", "dQw4w9WgXcQdQw", ""},
		{"invalid_charset", "dQw4w9WgXc!", ""},
		{"unrelated_url", "https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"youtube_url_without_id", "https://www.youtube.com/feed/subscriptions", ""},
		{"live_path_trailing", "https://www.youtube.com/live/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractVideoID(tt.input))
		})
	}
}

func TestExtractVideoID_AllURLFormsAgree(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	forms := []string{
		id,
		"https://www.youtube.com/watch?v=" + id,
		"https://youtu.be/" + id,
		"https://www.youtube.com/live/" + id,
	}
	for _, form := range forms {
		assert.Equal(t, id, ExtractVideoID(form), "form %q", form)
	}
}

func TestExtractTwitchChannel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare_handle", "somechannel", "somechannel"},
		{"handle_with_underscore", "some_channel_99", "some_channel_99"},
		{"channel_url", "https://www.twitch.tv/somechannel", "somechannel"},
		{"channel_url_subpath", "https://twitch.tv/somechannel/videos", "somechannel"},
		{"empty", "", ""},
		{"invalid_charset", "some channel", ""},
		{"unrelated_url", "https://example.com/somechannel", ""},
		{"twitch_url_bad_handle", "https://twitch.tv/some%20channel", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractTwitchChannel(tt.input))
		})
	}
}

func TestResolveReference(t *testing.T) {
	t.Run("youtube_ok", func(t *testing.T) {
		ref, err := ResolveReference(SourceYouTube, "https://youtu.be/dQw4w9WgXcQ")
		assert.NoError(t, err)
		assert.Equal(t, "dQw4w9WgXcQ", ref)
	})

	t.Run("twitch_ok", func(t *testing.T) {
		ref, err := ResolveReference(SourceTwitch, "somechannel")
		assert.NoError(t, err)
		assert.Equal(t, "somechannel", ref)
	})

	t.Run("invalid_reports_sentinel", func(t *testing.T) {
		_, err := ResolveReference(SourceYouTube, "not a video")
		assert.ErrorIs(t, err, ErrInvalidReference)
	})
}
