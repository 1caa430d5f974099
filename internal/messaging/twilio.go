package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// twilioMessageCreator is the slice of the Twilio REST client the service
// uses, extracted so tests can substitute a mock.
type twilioMessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioService implements Service using the Twilio WhatsApp API. It is an
// alternative transport for deployments fronted by Twilio instead of the
// Meta Cloud API.
type TwilioService struct {
	client    twilioMessageCreator
	fromWhats string // WhatsApp number in "whatsapp:+1234567890" format
}

// TwilioOpts holds configuration options for the Twilio transport.
type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	FromWhats  string
}

// TwilioOption defines a configuration option for the Twilio transport.
type TwilioOption func(*TwilioOpts)

// WithAccountSID sets the Twilio account SID (overrides $TWILIO_ACCOUNT_SID).
func WithAccountSID(sid string) TwilioOption {
	return func(o *TwilioOpts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token (overrides $TWILIO_AUTH_TOKEN).
func WithAuthToken(token string) TwilioOption {
	return func(o *TwilioOpts) { o.AuthToken = token }
}

// WithFromWhats sets the sending WhatsApp number (overrides $TWILIO_FROM_NUMBER).
func WithFromWhats(from string) TwilioOption {
	return func(o *TwilioOpts) { o.FromWhats = from }
}

// NewTwilioService creates a Twilio-backed transport. All three credentials
// are required; without them delivery cannot be attempted at all.
func NewTwilioService(opts ...TwilioOption) (*TwilioService, error) {
	var cfg TwilioOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromWhats == "" {
		cfg.FromWhats = os.Getenv("TWILIO_FROM_NUMBER")
	}

	slog.Debug("TwilioService config loaded",
		"account_sid_set", cfg.AccountSID != "",
		"auth_token_set", cfg.AuthToken != "",
		"from_set", cfg.FromWhats != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromWhats == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		client:    client.Api,
		fromWhats: cfg.FromWhats,
	}, nil
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a WhatsApp
// phone number.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeRecipient(recipient)
}

// SendMessage delivers a text message via Twilio. The contextMessageID has
// no Twilio equivalent and is ignored.
func (s *TwilioService) SendMessage(ctx context.Context, to, body, contextMessageID string) (models.DeliveryResult, error) {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("TwilioService.SendMessage: recipient validation failed", "error", err, "to", to)
		return models.DeliveryResult{Error: err.Error()}, err
	}
	if err := validateBody(body); err != nil {
		slog.Error("TwilioService.SendMessage: body validation failed", "error", err, "to", canonicalTo)
		return models.DeliveryResult{Error: err.Error()}, err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:+" + canonicalTo)
	params.SetFrom(s.fromWhats)
	params.SetBody(body)

	resp, err := s.client.CreateMessage(params)
	if err != nil {
		slog.Error("TwilioService.SendMessage: delivery failed", "error", err, "to", canonicalTo)
		return models.DeliveryResult{Error: err.Error()}, fmt.Errorf("twilio delivery failed: %w", err)
	}

	result := models.DeliveryResult{Success: true}
	if resp != nil && resp.Sid != nil {
		result.MessageID = *resp.Sid
	}
	slog.Info("TwilioService.SendMessage: message delivered", "to", canonicalTo, "sid", result.MessageID)
	return result, nil
}
