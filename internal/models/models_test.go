package models

import (
	"encoding/json"
	"testing"
)

func TestInboundMessageIsEmpty(t *testing.T) {
	cases := []struct {
		body  string
		empty bool
	}{
		{"", true},
		{"   ", true},
		{"\t\n", true},
		{"hello", false},
		{"  hi  ", false},
	}
	for _, c := range cases {
		m := InboundMessage{From: "14155550100", Body: c.body}
		if m.IsEmpty() != c.empty {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.body, m.IsEmpty(), c.empty)
		}
	}
}

func TestGuestSessionHasInterest(t *testing.T) {
	s := GuestSession{Interests: []string{"wedding", "organic_farm"}}
	if !s.HasInterest("wedding") {
		t.Error("expected wedding interest to be present")
	}
	if s.HasInterest("anniversary") {
		t.Error("did not expect anniversary interest")
	}
}

func TestGuestSessionIsReturning(t *testing.T) {
	s := GuestSession{MessageCount: 1}
	if s.IsReturning() {
		t.Error("first message should not mark guest as returning")
	}
	s.MessageCount = 2
	if !s.IsReturning() {
		t.Error("second message should mark guest as returning")
	}
}

func TestWebhookPayloadMessages(t *testing.T) {
	raw := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "123",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"messages": [
						{"from": "14155550100", "id": "wamid.A", "type": "text", "text": {"body": "Hello"}},
						{"from": "14155550101", "id": "wamid.B", "type": "image"}
					]
				}
			}]
		}]
	}`
	var p WebhookPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs := p.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 text message, got %d", len(msgs))
	}
	if msgs[0].From != "14155550100" || msgs[0].Body != "Hello" || msgs[0].MessageID != "wamid.A" {
		t.Errorf("unexpected message: %+v", msgs[0])
	}
}

func TestWebhookPayloadMessagesWrongObject(t *testing.T) {
	p := WebhookPayload{
		Object: "page",
		Entry: []WebhookEntry{{
			Changes: []WebhookChange{{
				Value: WebhookValue{Messages: []WebhookMessage{{From: "1", Text: &WebhookText{Body: "hi"}}}},
			}},
		}},
	}
	if msgs := p.Messages(); msgs != nil {
		t.Errorf("expected no messages for non-business object, got %d", len(msgs))
	}
}
