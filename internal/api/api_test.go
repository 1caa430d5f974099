package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/karthik-pvr/innkeeper/internal/bot"
	"github.com/karthik-pvr/innkeeper/internal/models"
	"github.com/karthik-pvr/innkeeper/internal/responder"
	"github.com/karthik-pvr/innkeeper/internal/session"
)

// captureTransport implements messaging.Service and signals each delivery
// so tests can wait for the detached processing goroutine.
type captureTransport struct {
	delivered chan models.InboundMessage
}

func newCaptureTransport() *captureTransport {
	return &captureTransport{delivered: make(chan models.InboundMessage, 8)}
}

func (c *captureTransport) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", models.ErrEmptyRecipient
	}
	return recipient, nil
}

func (c *captureTransport) SendMessage(ctx context.Context, to, body, contextMessageID string) (models.DeliveryResult, error) {
	c.delivered <- models.InboundMessage{From: to, Body: body, MessageID: contextMessageID}
	return models.DeliveryResult{Success: true, MessageID: "wamid.OUT"}, nil
}

func newTestServer(transport *captureTransport) (*Server, *session.MemoryTracker) {
	tracker := session.NewMemoryTracker()
	handler := bot.NewHandler(tracker, responder.New(tracker), transport)
	return NewServer(tracker, handler, WithVerifyToken("secret-token")), tracker
}

func TestVerifyWebhookSuccess(t *testing.T) {
	s, _ := newTestServer(newCaptureTransport())

	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345", nil)
	rr := httptest.NewRecorder()
	s.webhookHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "12345" {
		t.Errorf("expected challenge echoed back, got %q", rr.Body.String())
	}
}

func TestVerifyWebhookRejected(t *testing.T) {
	s, _ := newTestServer(newCaptureTransport())

	cases := []string{
		"/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1",
		"/webhook?hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=1",
		"/webhook",
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rr := httptest.NewRecorder()
		s.webhookHandler(rr, req)
		if rr.Code != http.StatusForbidden {
			t.Errorf("%s: expected 403, got %d", url, rr.Code)
		}
	}
}

func webhookBody(from, text, id string) string {
	return `{
		"object": "whatsapp_business_account",
		"entry": [{"changes": [{"value": {"messages": [
			{"from": "` + from + `", "id": "` + id + `", "type": "text", "text": {"body": "` + text + `"}}
		]}}]}]
	}`
}

func TestReceiveWebhookAcksAndProcesses(t *testing.T) {
	transport := newCaptureTransport()
	s, tracker := newTestServer(transport)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(webhookBody("14155550100", "hello", "wamid.IN1")))
	rr := httptest.NewRecorder()
	s.webhookHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != webhookAckBody {
		t.Errorf("expected fixed acknowledgement body, got %q", rr.Body.String())
	}

	select {
	case sent := <-transport.delivered:
		if sent.From != "14155550100" {
			t.Errorf("unexpected delivery recipient %q", sent.From)
		}
		if sent.MessageID != "wamid.IN1" {
			t.Errorf("delivery should reference the inbound message id, got %q", sent.MessageID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for async processing")
	}

	guest, ok := tracker.Get("14155550100")
	if !ok || guest.MessageCount != 1 {
		t.Errorf("expected session with one message, got %+v (ok=%v)", guest, ok)
	}
}

func TestReceiveWebhookMalformedPayloadStillAcks(t *testing.T) {
	s, tracker := newTestServer(newCaptureTransport())

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	s.webhookHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("malformed payload must still be acknowledged, got %d", rr.Code)
	}
	if tracker.ActiveSessions() != 0 {
		t.Error("malformed payload must not create sessions")
	}
}

func TestReceiveWebhookIgnoresOtherObjects(t *testing.T) {
	transport := newCaptureTransport()
	s, tracker := newTestServer(transport)

	body := `{"object": "page", "entry": []}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rr := httptest.NewRecorder()
	s.webhookHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if tracker.ActiveSessions() != 0 {
		t.Error("non-business payloads must not be processed")
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(newCaptureTransport())

	req := httptest.NewRequest(http.MethodDelete, "/webhook", nil)
	rr := httptest.NewRecorder()
	s.webhookHandler(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	s, tracker := newTestServer(newCaptureTransport())
	tracker.GetOrCreate("14155550100")
	tracker.GetOrCreate("14155550100")
	tracker.GetOrCreate("14155550200")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rr := httptest.NewRecorder()
	s.statusHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp models.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected result shape: %+v", resp.Result)
	}
	if result["active_sessions"].(float64) != 2 {
		t.Errorf("expected 2 active sessions, got %v", result["active_sessions"])
	}
	if result["total_messages"].(float64) != 3 {
		t.Errorf("expected 3 total messages, got %v", result["total_messages"])
	}
}

func TestGuestHandlerFound(t *testing.T) {
	s, tracker := newTestServer(newCaptureTransport())
	tracker.GetOrCreate("14155550100")
	tracker.AppendTurn("14155550100", "hello", models.DirectionIncoming)

	req := httptest.NewRequest(http.MethodGet, "/guests/14155550100", nil)
	rr := httptest.NewRecorder()
	s.guestHandler(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp models.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	result := resp.Result.(map[string]interface{})
	for _, key := range []string{"session", "history", "context"} {
		if _, present := result[key]; !present {
			t.Errorf("guest detail missing %q", key)
		}
	}
}

func TestGuestHandlerNotFound(t *testing.T) {
	s, _ := newTestServer(newCaptureTransport())

	req := httptest.NewRequest(http.MethodGet, "/guests/19999999999", nil)
	rr := httptest.NewRecorder()
	s.guestHandler(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown phone, got %d", rr.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	s, _ := newTestServer(newCaptureTransport())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.healthHandler(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}
