// Package session implements the guest-session and conversation-context
// engine for Innkeeper.
//
// It tracks per-phone-number session lifecycle, bounded conversation
// history, inferred guest interests, and assembles the context block used
// by the response generator. All state is process-wide and volatile: it is
// lost on restart by design.
package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// Tracker defines the session and history store consumed by the message
// pipeline. Implementations must make every single-key operation atomic:
// no reader may observe a half-updated record.
type Tracker interface {
	// GetOrCreate returns the session for phone, creating it on first
	// contact. Every call counts one inbound message: LastContact is
	// refreshed and MessageCount incremented.
	GetOrCreate(phone string) models.GuestSession

	// Get returns a copy of the session for phone, if one exists.
	Get(phone string) (models.GuestSession, bool)

	// AppendTurn records a conversation turn for phone, evicting the
	// oldest turns beyond the retention cap. Incoming turns additionally
	// run interest inference against the session.
	AppendTurn(phone, text string, direction models.Direction)

	// History returns a copy of the retained turns for phone, oldest first.
	History(phone string) []models.Turn

	// BuildContext renders the guest-context block for phone, or an empty
	// string when no session exists.
	BuildContext(phone string) string

	// ActiveSessions returns the number of tracked sessions.
	ActiveSessions() int

	// TotalMessages returns the sum of message counts across all sessions.
	TotalMessages() int
}

// MemoryTracker is the in-process Tracker. A single mutex guards both the
// session and history maps so that the append-then-infer sequence for one
// phone number is observed as one atomic update.
type MemoryTracker struct {
	mu        sync.Mutex
	sessions  map[string]*models.GuestSession
	histories map[string][]models.Turn
	now       func() time.Time
}

// Opts holds configuration options for the memory tracker.
type Opts struct {
	Clock func() time.Time
}

// Option defines a configuration option for the memory tracker.
type Option func(*Opts)

// WithClock overrides the time source. Used by tests for deterministic
// timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// NewMemoryTracker creates an empty in-memory session tracker.
func NewMemoryTracker(opts ...Option) *MemoryTracker {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &MemoryTracker{
		sessions:  make(map[string]*models.GuestSession),
		histories: make(map[string][]models.Turn),
		now:       cfg.Clock,
	}
}

// GetOrCreate returns the session for phone, creating it on first contact.
func (t *MemoryTracker) GetOrCreate(phone string) models.GuestSession {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	s, exists := t.sessions[phone]
	if !exists {
		s = &models.GuestSession{
			Phone:        phone,
			Name:         defaultName(phone),
			FirstContact: now,
			Interests:    []string{},
		}
		t.sessions[phone] = s
		slog.Debug("MemoryTracker.GetOrCreate: session created", "phone", phone, "name", s.Name)
	}
	s.LastContact = now
	s.MessageCount++
	return *s
}

// Get returns a copy of the session for phone, if one exists.
func (t *MemoryTracker) Get(phone string) (models.GuestSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, exists := t.sessions[phone]
	if !exists {
		return models.GuestSession{}, false
	}
	return copySession(s), true
}

// AppendTurn records a turn and truncates the history to the retention cap.
func (t *MemoryTracker) AppendTurn(phone, text string, direction models.Direction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	turns := append(t.histories[phone], models.Turn{
		Text:      text,
		Direction: direction,
		Timestamp: t.now(),
	})
	if len(turns) > models.MaxHistoryTurns {
		turns = turns[len(turns)-models.MaxHistoryTurns:]
	}
	t.histories[phone] = turns

	if direction == models.DirectionIncoming {
		if s, exists := t.sessions[phone]; exists {
			updateInterests(s, text)
		}
	}
}

// History returns a copy of the retained turns for phone, oldest first.
func (t *MemoryTracker) History(phone string) []models.Turn {
	t.mu.Lock()
	defer t.mu.Unlock()

	turns := t.histories[phone]
	out := make([]models.Turn, len(turns))
	copy(out, turns)
	return out
}

// ActiveSessions returns the number of tracked sessions.
func (t *MemoryTracker) ActiveSessions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// TotalMessages returns the sum of message counts across all sessions.
func (t *MemoryTracker) TotalMessages() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := 0
	for _, s := range t.sessions {
		total += s.MessageCount
	}
	return total
}

// defaultName derives a display name from the last 4 digits of the phone
// number, e.g. "Guest 0100".
func defaultName(phone string) string {
	suffix := phone
	if len(phone) > 4 {
		suffix = phone[len(phone)-4:]
	}
	return fmt.Sprintf("Guest %s", suffix)
}

// copySession returns a deep copy so callers never alias tracked state.
func copySession(s *models.GuestSession) models.GuestSession {
	out := *s
	out.Interests = make([]string, len(s.Interests))
	copy(out.Interests, s.Interests)
	return out
}
