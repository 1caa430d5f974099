// Package responder generates guest-facing replies.
//
// When a GenAI client is configured, replies come from a single-turn chat
// completion carrying the assembled guest context; prior history is
// summarized into the context block rather than replayed turn by turn. Any
// model failure falls back to the deterministic rule-based responder, so a
// reply is always produced and no error ever reaches the caller.
package responder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/karthik-pvr/innkeeper/internal/session"
)

// hotelFacts is the static property description embedded in every system
// prompt sent to the model.
const hotelFacts = `You are the guest-relations assistant for Amara Heritage Homestead,
a restored 19th-century manor house set on a working organic farm.

Property facts:
- 14 rooms across the manor and the garden cottages, all heritage-furnished.
- Farm-to-table dining: breakfast 7:30-10:00, dinner 19:00-21:30, produce from our own organic farm.
- Check-in from 14:00, check-out by 11:00.
- The courtyard and orchard lawns host weddings and anniversary ceremonies for up to 120 guests.
- Guided farm walks every morning at 8:00.
- Located 40 minutes from the city airport; pickup can be arranged.

Answer warmly and concisely. If asked something you do not know, offer to
connect the guest with the front desk rather than inventing details.`

// generator is the minimal completion interface the responder needs; the
// genai client satisfies it.
type generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Responder orchestrates reply generation for inbound guest messages.
type Responder struct {
	gen     generator
	tracker session.Tracker
}

// Opts holds configuration options for the responder.
type Opts struct {
	GenAI generator
}

// Option defines a configuration option for the responder.
type Option func(*Opts)

// WithGenAI enables model-backed replies. When absent, every reply comes
// from the rule-based fallback.
func WithGenAI(g generator) Option {
	return func(o *Opts) { o.GenAI = g }
}

// New creates a Responder reading guest state from the given tracker.
func New(tracker session.Tracker, opts ...Option) *Responder {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Responder{gen: cfg.GenAI, tracker: tracker}
}

// Respond produces the reply for an inbound message. The result is always
// a non-empty string; model failures are contained here and answered by
// the fallback responder.
func (r *Responder) Respond(ctx context.Context, phone, text string) string {
	if r.gen == nil {
		slog.Debug("Responder.Respond: no GenAI client configured, using fallback", "phone", phone)
		return r.fallbackReply(phone, text)
	}

	systemPrompt := hotelFacts
	if guestContext := r.tracker.BuildContext(phone); guestContext != "" {
		systemPrompt = hotelFacts + "\n\n" + guestContext
	}

	reply, err := r.gen.Generate(ctx, systemPrompt, text)
	if err != nil {
		slog.Warn("Responder.Respond: model call failed, using fallback", "error", err, "phone", phone)
		return r.fallbackReply(phone, text)
	}
	if strings.TrimSpace(reply) == "" {
		slog.Warn("Responder.Respond: model returned empty reply, using fallback", "phone", phone)
		return r.fallbackReply(phone, text)
	}

	slog.Debug("Responder.Respond: model reply generated", "phone", phone, "reply_length", len(reply))
	return reply
}
