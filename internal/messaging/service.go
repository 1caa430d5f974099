// Package messaging provides the outbound message transport abstraction
// and its WhatsApp Cloud API and Twilio implementations.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// phoneNumberRegex matches everything that is not a digit for
// canonicalization.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// MinPhoneDigits is the minimum number of digits a canonical recipient
// must have.
const MinPhoneDigits = 6

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a
	// recipient identifier. Returns the canonicalized recipient and an
	// error if validation fails.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage delivers a text message to a recipient. The optional
	// contextMessageID references the inbound message being replied to;
	// implementations that cannot express it may ignore it.
	SendMessage(ctx context.Context, to, body, contextMessageID string) (models.DeliveryResult, error)
}

// canonicalizeRecipient strips all non-digit characters and validates the
// result. Shared by every transport implementation.
func canonicalizeRecipient(recipient string) (string, error) {
	if recipient == "" {
		return "", models.ErrEmptyRecipient
	}

	canonical := phoneNumberRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < MinPhoneDigits {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum %d digits required)", canonical, MinPhoneDigits)
	}

	if canonical != recipient {
		slog.Debug("messaging canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}

// validateBody rejects empty or oversized outbound bodies before any
// network call is attempted.
func validateBody(body string) error {
	if body == "" {
		return models.ErrEmptyBody
	}
	if len(body) > models.MaxMessageBodyLength {
		return models.ErrBodyTooLong
	}
	return nil
}
