package session

import (
	"log/slog"
	"strings"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// Interest tags inferred from guest messages.
const (
	InterestWedding     = "wedding"
	InterestAnniversary = "anniversary"
	InterestOrganicFarm = "organic_farm"
)

// interestRule appends a tag when its keyword matcher fires.
type interestRule struct {
	tag      string
	keywords []string
}

// interestRules are evaluated on every incoming turn. Matching is a
// case-insensitive substring check; either keyword of a rule is enough.
var interestRules = []interestRule{
	{tag: InterestWedding, keywords: []string{"wedding"}},
	{tag: InterestAnniversary, keywords: []string{"anniversary"}},
	{tag: InterestOrganicFarm, keywords: []string{"organic", "farm"}},
}

// bookingKeywords flip the sticky booking-intent flag.
var bookingKeywords = []string{"book", "room", "stay"}

// updateInterests derives interest tags and booking intent from the message
// text and mutates the session in place. Tags are deduplicated and never
// removed; booking intent is never unset here. Caller must hold the
// tracker lock.
func updateInterests(s *models.GuestSession, text string) {
	lower := strings.ToLower(text)

	for _, rule := range interestRules {
		if !containsAny(lower, rule.keywords) {
			continue
		}
		if s.HasInterest(rule.tag) {
			continue
		}
		s.Interests = append(s.Interests, rule.tag)
		slog.Debug("session interest tagged", "phone", s.Phone, "tag", rule.tag)
	}

	if !s.BookingIntent && containsAny(lower, bookingKeywords) {
		s.BookingIntent = true
		slog.Debug("session booking intent set", "phone", s.Phone)
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
