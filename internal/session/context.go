package session

import (
	"fmt"
	"strings"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// ContextRecentTurns is how many trailing history turns the context block
// includes for the response generator.
const ContextRecentTurns = 3

// BuildContext renders the guest-context block consumed by the response
// generator. It is a pure projection of the current session and history
// state: calling it twice with no intervening mutation yields identical
// output. Returns an empty string when no session exists for phone.
func (t *MemoryTracker) BuildContext(phone string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, exists := t.sessions[phone]
	if !exists {
		return ""
	}

	var b strings.Builder
	b.WriteString("Guest information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", s.Name)
	fmt.Fprintf(&b, "- Phone: %s\n", s.Phone)
	fmt.Fprintf(&b, "- First contact: %s\n", s.FirstContact.Format("2 Jan 2006"))
	fmt.Fprintf(&b, "- Total messages: %d\n", s.MessageCount)
	if s.IsReturning() {
		b.WriteString("- Returning guest: yes\n")
	} else {
		b.WriteString("- Returning guest: no\n")
	}
	if len(s.Interests) > 0 {
		fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(s.Interests, ", "))
	}
	if s.BookingIntent {
		b.WriteString("- High booking intent: the guest has asked about reserving a room\n")
	}

	turns := t.histories[phone]
	if len(turns) > 0 {
		start := len(turns) - ContextRecentTurns
		if start < 0 {
			start = 0
		}
		b.WriteString("Recent conversation:\n")
		for _, turn := range turns[start:] {
			label := "Guest"
			if turn.Direction == models.DirectionOutgoing {
				label = "Hotel"
			}
			fmt.Fprintf(&b, "- %s: %s\n", label, turn.Text)
		}
	}

	return b.String()
}
