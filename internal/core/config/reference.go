package config

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidReference reports that user input could not be parsed into a
// platform identifier. Callers surface a platform-specific message and leave
// all session state untouched.
var ErrInvalidReference = errors.New("invalid stream reference")

// ResolveReference parses a raw user-supplied reference for the given
// platform. Input may be a bare identifier/handle or a full playback URL.
func ResolveReference(source Source, raw string) (string, error) {
	var ref string
	switch source {
	case SourceTwitch:
		ref = ExtractTwitchChannel(raw)
	default:
		ref = ExtractVideoID(raw)
	}
	if ref == "" {
		return "", ErrInvalidReference
	}
	return ref, nil
}

// ExtractVideoID extracts an 11-character YouTube video ID from a bare ID,
// a watch URL, a youtu.be short link, or a /live/ path. Returns "" when the
// input matches none of those forms.
func ExtractVideoID(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) == 11 && isVideoIDCharset(trimmed) {
		return trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	host := parsed.Hostname()

	if strings.Contains(host, "youtu.be") {
		segments := splitPath(parsed.Path)
		if len(segments) > 0 {
			return segments[0]
		}
		return ""
	}

	if strings.Contains(host, "youtube.com") {
		if v := parsed.Query().Get("v"); v != "" {
			return v
		}
		segments := splitPath(parsed.Path)
		for i, seg := range segments {
			if seg == "live" && i+1 < len(segments) {
				return segments[i+1]
			}
		}
	}

	return ""
}

// ExtractTwitchChannel extracts a Twitch channel handle from a bare handle or
// a twitch.tv URL. Handles are alphanumeric plus underscore.
func ExtractTwitchChannel(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if isHandleCharset(trimmed) {
		return trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if !strings.Contains(parsed.Hostname(), "twitch.tv") {
		return ""
	}
	segments := splitPath(parsed.Path)
	if len(segments) == 0 {
		return ""
	}
	if channel := segments[0]; isHandleCharset(channel) {
		return channel
	}
	return ""
}

func splitPath(path string) []string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isVideoIDCharset(s string) bool {
	for _, r := range s {
		if !isAlnum(r) && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func isHandleCharset(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isAlnum(r) && r != '_' {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
