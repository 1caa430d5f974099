// Package models defines the core data structures for Innkeeper.
//
// It includes types for guest sessions, conversation turns, and inbound
// webhook payloads, which are shared across modules.
package models

import (
	"errors"
	"strings"
	"time"
)

// Direction indicates whether a conversation turn was received or sent.
type Direction string

const (
	// DirectionIncoming marks a turn received from the guest.
	DirectionIncoming Direction = "incoming"
	// DirectionOutgoing marks a turn sent by the hotel.
	DirectionOutgoing Direction = "outgoing"
)

// Validation constants for input validation
const (
	// MaxHistoryTurns defines how many conversation turns are retained per guest.
	MaxHistoryTurns = 20
	// MaxMessageBodyLength defines the maximum allowed length for outbound message bodies.
	MaxMessageBodyLength = 4096
)

// Error variables for better error handling and testability
var (
	ErrEmptyRecipient  = errors.New("recipient cannot be empty")
	ErrEmptyBody       = errors.New("message body cannot be empty")
	ErrBodyTooLong     = errors.New("message body exceeds maximum length")
	ErrSessionNotFound = errors.New("no session exists for this phone number")
)

// Turn represents one message recorded in a guest's conversation history.
type Turn struct {
	Text      string    `json:"text"`
	Direction Direction `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
}

// GuestSession holds per-guest conversational state keyed by phone number.
//
// FirstContact is immutable after creation. MessageCount increments exactly
// once per inbound message. BookingIntent is sticky: once true it is never
// reset by the session engine.
type GuestSession struct {
	Phone         string    `json:"phone"`
	Name          string    `json:"name"`
	FirstContact  time.Time `json:"first_contact"`
	LastContact   time.Time `json:"last_contact"`
	MessageCount  int       `json:"message_count"`
	Interests     []string  `json:"interests"`
	BookingIntent bool      `json:"booking_intent"`
}

// HasInterest reports whether the session already carries the given tag.
func (s *GuestSession) HasInterest(tag string) bool {
	for _, t := range s.Interests {
		if t == tag {
			return true
		}
	}
	return false
}

// IsReturning reports whether the guest has messaged more than once.
func (s *GuestSession) IsReturning() bool {
	return s.MessageCount > 1
}

// InboundMessage is a single guest message extracted from a webhook payload.
type InboundMessage struct {
	From      string `json:"from"`
	Body      string `json:"body"`
	MessageID string `json:"message_id"`
}

// IsEmpty reports whether the message body is empty or whitespace-only.
// Empty messages are skipped entirely: no session mutation, no reply.
func (m InboundMessage) IsEmpty() bool {
	return strings.TrimSpace(m.Body) == ""
}

// WebhookObjectBusinessAccount identifies Cloud API business-account events.
const WebhookObjectBusinessAccount = "whatsapp_business_account"

// WebhookPayload mirrors the Meta WhatsApp Cloud API webhook envelope.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

// WebhookEntry is one business-account entry in a webhook delivery.
type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

// WebhookChange wraps the message batch of one webhook entry.
type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

// WebhookValue carries the messages delivered in one change.
type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []WebhookMessage `json:"messages"`
}

// WebhookMessage is a raw inbound message as delivered by the Cloud API.
type WebhookMessage struct {
	From      string       `json:"from"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Type      string       `json:"type"`
	Text      *WebhookText `json:"text,omitempty"`
}

// WebhookText holds the text body of a text-type message.
type WebhookText struct {
	Body string `json:"body"`
}

// Messages flattens a webhook payload into inbound messages. Non-text
// entries are skipped; only business-account events yield messages.
func (p *WebhookPayload) Messages() []InboundMessage {
	if p.Object != WebhookObjectBusinessAccount {
		return nil
	}
	var out []InboundMessage
	for _, entry := range p.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Text == nil {
					continue
				}
				out = append(out, InboundMessage{
					From:      msg.From,
					Body:      msg.Text.Body,
					MessageID: msg.ID,
				})
			}
		}
	}
	return out
}

// DeliveryResult reports the outcome of one outbound transport attempt.
type DeliveryResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
