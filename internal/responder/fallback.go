package responder

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/karthik-pvr/innkeeper/internal/models"
	"github.com/karthik-pvr/innkeeper/internal/session"
)

// fallbackRule pairs a keyword matcher with a template renderer. Rules are
// evaluated in order against the lower-cased message text; the first match
// wins.
type fallbackRule struct {
	category string
	keywords []string
	render   func(s models.GuestSession) string
}

var fallbackRules = []fallbackRule{
	{
		category: "wedding",
		keywords: []string{"wedding", "marriage", "ceremony"},
		render:   renderWedding,
	},
	{
		category: "booking",
		keywords: []string{"book", "room", "stay", "reservation"},
		render:   renderBooking,
	},
	{
		category: "dining",
		keywords: []string{"food", "meal", "dining", "organic"},
		render:   renderDining,
	},
	{
		category: "location",
		keywords: []string{"location", "where", "direction", "address"},
		render:   renderLocation,
	},
	{
		category: "pricing",
		keywords: []string{"price", "cost", "rate", "expensive"},
		render:   renderPricing,
	},
}

// fallbackReply classifies the message and renders the matching template,
// personalized with the guest's session state. Unmatched messages get the
// default greeting.
func (r *Responder) fallbackReply(phone, text string) string {
	s, _ := r.tracker.Get(phone)
	lower := strings.ToLower(text)

	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				slog.Debug("Responder.fallbackReply: rule matched", "phone", phone, "category", rule.category)
				return rule.render(s)
			}
		}
	}

	slog.Debug("Responder.fallbackReply: no rule matched, using default greeting", "phone", phone)
	return renderDefault(s)
}

func renderWedding(s models.GuestSession) string {
	return "What a joy - Amara Heritage Homestead would be honoured to host your celebration! 💐\n\n" +
		"Our heritage courtyard and orchard lawns hold ceremonies for up to 120 guests, " +
		"with the manor as your backdrop and flowers from our own gardens.\n\n" +
		"Our events team would love to walk you through dates, menus, and ceremony arrangements. " +
		"Shall I have them reach out to you?"
}

func renderBooking(s models.GuestSession) string {
	var b strings.Builder
	if s.HasInterest(session.InterestWedding) {
		b.WriteString("Since you're planning a wedding with us, we can reserve a block of rooms for your party as well.\n\n")
	}
	if s.IsReturning() {
		fmt.Fprintf(&b, "Lovely to hear from you again, %s! ", s.Name)
	}
	b.WriteString("We'd be delighted to host you. 🏡\n\n" +
		"We have 14 heritage rooms across the manor and garden cottages. " +
		"Check-in is from 14:00 and check-out by 11:00.\n\n" +
		"Just share your dates and the number of guests, and we'll confirm availability right away.")
	return b.String()
}

func renderDining(s models.GuestSession) string {
	return "Our kitchen is the heart of the homestead. 🌿\n\n" +
		"Everything is farm-to-table, grown on our own organic farm: " +
		"breakfast 7:30-10:00 and dinner 19:00-21:30, with a guided farm walk every morning at 8:00.\n\n" +
		"Do let us know about any dietary preferences and our chef will take care of the rest."
}

func renderLocation(s models.GuestSession) string {
	return "You'll find us 40 minutes from the city airport, among the farmlands. 🗺️\n\n" +
		"We're happy to arrange an airport pickup, or send you a pin and driving directions - " +
		"just tell us where you're coming from."
}

func renderPricing(s models.GuestSession) string {
	return "Our room rates vary by season and cottage type, and always include breakfast and the morning farm walk.\n\n" +
		"Share your travel dates and we'll send you exact rates and any seasonal offers. 😊"
}

func renderDefault(s models.GuestSession) string {
	var b strings.Builder
	if s.IsReturning() {
		fmt.Fprintf(&b, "Welcome back, %s! ", s.Name)
	} else {
		fmt.Fprintf(&b, "Hello %s, and welcome to Amara Heritage Homestead! ", s.Name)
	}
	b.WriteString("🙏\n\nI can help with rooms and reservations, our farm-to-table dining, " +
		"directions, or planning a celebration with us.")
	if s.HasInterest(session.InterestWedding) {
		b.WriteString("\n\nAnd of course, ask me anything about hosting your wedding here.")
	}
	b.WriteString("\n\nWhat can I do for you today?")
	return b.String()
}
