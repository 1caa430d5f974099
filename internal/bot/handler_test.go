package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/karthik-pvr/innkeeper/internal/models"
	"github.com/karthik-pvr/innkeeper/internal/responder"
	"github.com/karthik-pvr/innkeeper/internal/session"
)

// mockTransport implements messaging.Service for testing.
type mockTransport struct {
	sent      []sentMessage
	err       error
}

type sentMessage struct {
	to, body, contextID string
}

func (m *mockTransport) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", models.ErrEmptyRecipient
	}
	return recipient, nil
}

func (m *mockTransport) SendMessage(ctx context.Context, to, body, contextMessageID string) (models.DeliveryResult, error) {
	m.sent = append(m.sent, sentMessage{to: to, body: body, contextID: contextMessageID})
	if m.err != nil {
		return models.DeliveryResult{Error: m.err.Error()}, m.err
	}
	return models.DeliveryResult{Success: true, MessageID: "wamid.OUT"}, nil
}

func newTestHandler(transport *mockTransport) (*Handler, *session.MemoryTracker) {
	tr := session.NewMemoryTracker()
	return NewHandler(tr, responder.New(tr), transport), tr
}

func TestHandleFullPipeline(t *testing.T) {
	transport := &mockTransport{}
	h, tr := newTestHandler(transport)

	h.Handle(context.Background(), models.InboundMessage{
		From:      "14155550100",
		Body:      "I want to book a room for my wedding",
		MessageID: "wamid.IN1",
	})

	s, ok := tr.Get("14155550100")
	if !ok {
		t.Fatal("expected session to be created")
	}
	if s.MessageCount != 1 {
		t.Errorf("expected message count 1, got %d", s.MessageCount)
	}
	if !s.HasInterest(session.InterestWedding) {
		t.Error("expected wedding interest tagged")
	}
	if !s.BookingIntent {
		t.Error("expected booking intent set")
	}

	turns := tr.History("14155550100")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns (incoming + outgoing), got %d", len(turns))
	}
	if turns[0].Direction != models.DirectionIncoming || turns[1].Direction != models.DirectionOutgoing {
		t.Error("expected incoming then outgoing turn order")
	}

	if len(transport.sent) != 1 {
		t.Fatalf("expected one delivery, got %d", len(transport.sent))
	}
	if transport.sent[0].to != "14155550100" {
		t.Errorf("unexpected recipient %q", transport.sent[0].to)
	}
	if transport.sent[0].contextID != "wamid.IN1" {
		t.Errorf("delivery should carry the inbound message id, got %q", transport.sent[0].contextID)
	}
	if transport.sent[0].body != turns[1].Text {
		t.Error("delivered body should match the recorded outgoing turn")
	}
}

func TestHandleEmptyMessageSkipsEverything(t *testing.T) {
	transport := &mockTransport{}
	h, tr := newTestHandler(transport)

	h.Handle(context.Background(), models.InboundMessage{From: "14155550100", Body: "   "})

	if _, ok := tr.Get("14155550100"); ok {
		t.Error("empty message must not create a session")
	}
	if turns := tr.History("14155550100"); len(turns) != 0 {
		t.Errorf("empty message must not record history, got %d turns", len(turns))
	}
	if len(transport.sent) != 0 {
		t.Error("empty message must not attempt delivery")
	}
}

func TestHandleDeliveryFailureKeepsState(t *testing.T) {
	transport := &mockTransport{err: errors.New("network unreachable")}
	h, tr := newTestHandler(transport)

	h.Handle(context.Background(), models.InboundMessage{From: "14155550100", Body: "hello", MessageID: "wamid.IN2"})

	s, ok := tr.Get("14155550100")
	if !ok || s.MessageCount != 1 {
		t.Error("session mutation must survive delivery failure")
	}
	if turns := tr.History("14155550100"); len(turns) != 2 {
		t.Errorf("history must keep both turns after delivery failure, got %d", len(turns))
	}
}

func TestHandleSequentialMessagesCountCorrectly(t *testing.T) {
	transport := &mockTransport{}
	h, tr := newTestHandler(transport)

	for i := 0; i < 5; i++ {
		h.Handle(context.Background(), models.InboundMessage{From: "14155550100", Body: "hello"})
	}

	s, _ := tr.Get("14155550100")
	if s.MessageCount != 5 {
		t.Errorf("expected message count 5, got %d", s.MessageCount)
	}
	if len(transport.sent) != 5 {
		t.Errorf("expected 5 deliveries, got %d", len(transport.sent))
	}
}
