package config

import (
	"sync"

	"github.com/wrenb/go-stream-lens/internal/util"
)

// Stager holds the draft configuration being edited and the committed active
// configuration that polling targets. Commit is the only way a draft becomes
// active, and it alone decides whether accumulated series survive.
type Stager struct {
	mu         sync.Mutex
	draft      SessionConfig
	active     *SessionConfig
	generation int64
}

// CommitResult reports the outcome of a successful commit
type CommitResult struct {
	// Active is the installed configuration, with StreamRef replaced by the
	// resolved platform identifier.
	Active SessionConfig

	// Generation increments on every commit and clear. Poll responses carry
	// the generation they were issued under so stale ones can be discarded.
	Generation int64

	// StreamChanged is true when the identity key differs from the previous
	// active configuration (the "new stream" path).
	StreamChanged bool
}

// NewStager creates a Stager with an empty draft
func NewStager() *Stager {
	return &Stager{}
}

// Stage applies an edit to the draft only. The active configuration and any
// in-flight polling are unaffected until Commit.
func (s *Stager) Stage(edit func(*SessionConfig)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	edit(&s.draft)
}

// Draft returns a copy of the current draft
func (s *Stager) Draft() SessionConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Active returns a copy of the active configuration and its generation.
// ok is false when nothing has been committed.
func (s *Stager) Active() (cfg SessionConfig, generation int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return SessionConfig{}, s.generation, false
	}
	return *s.active, s.generation, true
}

// Generation returns the current configuration generation
func (s *Stager) Generation() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Commit validates the draft, resolves its stream reference, and installs it
// as the active configuration. When the identity key changes, onStreamChange
// (if non-nil) runs before the new configuration is installed so callers can
// clear derived series first. On ErrInvalidReference no state transitions.
func (s *Stager) Commit(onStreamChange func()) (CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.draft
	if err := next.Validate(); err != nil {
		return CommitResult{}, err
	}

	ref, err := ResolveReference(next.Source, next.StreamRef)
	if err != nil {
		return CommitResult{}, err
	}
	next.StreamRef = ref

	currentKey := ""
	if s.active != nil {
		currentKey = s.active.IdentityKey()
	}
	changed := next.IdentityKey() != currentKey

	if changed && onStreamChange != nil {
		onStreamChange()
	}

	s.active = &next
	s.generation++

	util.LogInfof("Committed session config %s (generation %d, streamChanged=%v)",
		next.IdentityKey(), s.generation, changed)

	return CommitResult{
		Active:        next,
		Generation:    s.generation,
		StreamChanged: changed,
	}, nil
}

// Clear removes the active configuration and bumps the generation so any
// in-flight poll response is discarded on arrival.
func (s *Stager) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
	s.generation++
}

// InvalidReferenceMessage returns the platform-specific message shown when
// reference parsing fails.
func InvalidReferenceMessage(source Source) string {
	if source == SourceTwitch {
		return "Invalid Twitch channel or link."
	}
	return "Invalid YouTube link or video ID."
}
