package messaging

import (
	"context"
	"errors"
	"log/slog"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// ErrTransportNotConfigured is reported when delivery is requested but no
// transport credentials were configured.
var ErrTransportNotConfigured = errors.New("outbound transport not configured")

// DisabledService is the transport used when no delivery credentials are
// configured. It reports failure without attempting any call, so the rest
// of the pipeline (session, history, reply generation) still runs.
type DisabledService struct{}

// NewDisabledService creates a transport that always reports failure.
func NewDisabledService() *DisabledService {
	return &DisabledService{}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a WhatsApp
// phone number.
func (s *DisabledService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeRecipient(recipient)
}

// SendMessage reports failure without attempting delivery.
func (s *DisabledService) SendMessage(ctx context.Context, to, body, contextMessageID string) (models.DeliveryResult, error) {
	slog.Warn("DisabledService.SendMessage: delivery skipped, transport not configured", "to", to, "body_length", len(body))
	return models.DeliveryResult{Error: ErrTransportNotConfigured.Error()}, ErrTransportNotConfigured
}
