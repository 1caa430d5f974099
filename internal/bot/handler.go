// Package bot implements the inbound message pipeline: session tracking,
// history recording, reply generation, and outbound delivery.
package bot

import (
	"context"
	"log/slog"

	"github.com/karthik-pvr/innkeeper/internal/messaging"
	"github.com/karthik-pvr/innkeeper/internal/models"
	"github.com/karthik-pvr/innkeeper/internal/session"
)

// Replier generates the reply text for an inbound message. The responder
// package provides the production implementation.
type Replier interface {
	Respond(ctx context.Context, phone, text string) string
}

// Handler orchestrates the per-message processing pipeline. All failures
// are contained here: nothing a single message does can crash the process
// or roll back state already committed.
type Handler struct {
	tracker   session.Tracker
	replier   Replier
	transport messaging.Service
}

// NewHandler creates a Handler wired to the given stores, replier, and
// outbound transport.
func NewHandler(tracker session.Tracker, replier Replier, transport messaging.Service) *Handler {
	return &Handler{
		tracker:   tracker,
		replier:   replier,
		transport: transport,
	}
}

// Handle processes one inbound guest message end to end:
// session get-or-create, incoming history append (which runs interest
// inference), reply generation, outgoing history append, and delivery.
//
// Empty or whitespace-only messages are skipped entirely: no session is
// created, no history recorded, no reply attempted. Delivery failures are
// logged and never propagated; the session and history mutations stand.
func (h *Handler) Handle(ctx context.Context, msg models.InboundMessage) {
	if msg.IsEmpty() {
		slog.Debug("Handler.Handle: skipping empty message", "from", msg.From)
		return
	}

	s := h.tracker.GetOrCreate(msg.From)
	slog.Debug("Handler.Handle: session updated", "from", msg.From, "message_count", s.MessageCount, "returning", s.IsReturning())

	h.tracker.AppendTurn(msg.From, msg.Body, models.DirectionIncoming)

	reply := h.replier.Respond(ctx, msg.From, msg.Body)

	h.tracker.AppendTurn(msg.From, reply, models.DirectionOutgoing)

	result, err := h.transport.SendMessage(ctx, msg.From, reply, msg.MessageID)
	if err != nil {
		slog.Error("Handler.Handle: delivery failed", "error", err, "to", msg.From)
		return
	}
	slog.Info("Handler.Handle: reply delivered", "to", msg.From, "message_id", result.MessageID)
}
