// Package api provides HTTP handlers for Innkeeper endpoints.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// webhookAckBody is the fixed acknowledgement returned for every webhook
// delivery, before any processing happens.
const webhookAckBody = "EVENT_RECEIVED"

// webhookHandler dispatches the webhook endpoint by method: GET is the
// Meta verification handshake, POST is message delivery.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.verifyWebhookHandler(w, r)
	case http.MethodPost:
		s.receiveWebhookHandler(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		slog.Warn("Server.webhookHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// verifyWebhookHandler implements the Cloud API subscription handshake:
// hub.mode must be "subscribe" and hub.verify_token must match the
// configured secret, in which case the challenge is echoed back.
func (s *Server) verifyWebhookHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode == "subscribe" && s.verifyToken != "" && token == s.verifyToken {
		slog.Info("Server.verifyWebhookHandler: webhook verified")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge)); err != nil {
			slog.Error("Server.verifyWebhookHandler: failed to write challenge", "error", err)
		}
		return
	}

	slog.Warn("Server.verifyWebhookHandler: verification rejected", "mode", mode, "token_matched", token == s.verifyToken)
	w.WriteHeader(http.StatusForbidden)
}

// receiveWebhookHandler acknowledges the delivery immediately and then
// processes each contained message in a detached goroutine. The webhook
// caller never observes processing outcome: acknowledgement is never
// gated on pipeline success.
func (s *Server) receiveWebhookHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}

	var payload models.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		slog.Warn("Server.receiveWebhookHandler: failed to decode payload", "error", err)
		// Still acknowledge: a malformed payload is skipped, not retried.
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(webhookAckBody)); err != nil {
		slog.Error("Server.receiveWebhookHandler: failed to write acknowledgement", "error", err)
	}

	msgs := payload.Messages()
	if len(msgs) == 0 {
		slog.Debug("Server.receiveWebhookHandler: no processable messages", "object", payload.Object)
		return
	}

	slog.Debug("Server.receiveWebhookHandler: dispatching messages", "count", len(msgs))
	for _, msg := range msgs {
		m := msg
		go func() {
			// Detached from the webhook request lifecycle on purpose.
			s.msgHandler.Handle(context.Background(), m)
		}()
	}
}

// statusHandler reports process uptime and aggregate session metrics
// (GET /status).
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status := map[string]interface{}{
		"uptime":          time.Since(s.startTime).Round(time.Second).String(),
		"active_sessions": s.tracker.ActiveSessions(),
		"total_messages":  s.tracker.TotalMessages(),
	}
	slog.Debug("Server.statusHandler: status reported", "active_sessions", status["active_sessions"], "total_messages", status["total_messages"])
	writeJSONResponse(w, http.StatusOK, models.Success(status))
}

// guestHandler returns the session record, full history, and rendered
// context block for one guest (GET /guests/{phone}).
func (s *Server) guestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	phone := strings.Trim(strings.TrimPrefix(r.URL.Path, "/guests/"), "/")
	if phone == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing phone number"))
		return
	}

	guest, ok := s.tracker.Get(phone)
	if !ok {
		slog.Debug("Server.guestHandler: unknown phone", "phone", phone)
		writeJSONResponse(w, http.StatusNotFound, models.Error(models.ErrSessionNotFound.Error()))
		return
	}

	detail := map[string]interface{}{
		"session": guest,
		"history": s.tracker.History(phone),
		"context": s.tracker.BuildContext(phone),
	}
	writeJSONResponse(w, http.StatusOK, models.Success(detail))
}

// healthHandler provides a health check endpoint for monitoring and load
// balancing.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSONResponse(w, http.StatusOK, healthData)
}
