package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

// Constants for CloudAPIService configuration
const (
	// DefaultGraphAPIBaseURL is the Meta Graph API endpoint for the
	// WhatsApp Business Cloud API.
	DefaultGraphAPIBaseURL = "https://graph.facebook.com/v21.0"
	// DefaultSendTimeout bounds a single outbound delivery call.
	DefaultSendTimeout = 15 * time.Second
)

// CloudAPIService implements Service using the Meta WhatsApp Business
// Cloud API. Outbound messages are plain HTTP posts to the Graph API.
type CloudAPIService struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
}

// Opts holds configuration options for the Cloud API service.
type Opts struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	HTTPClient    *http.Client
}

// Option defines a configuration option for the Cloud API service.
type Option func(*Opts)

// WithAccessToken sets the Cloud API access token (overrides $WHATSAPP_ACCESS_TOKEN).
func WithAccessToken(token string) Option {
	return func(o *Opts) { o.AccessToken = token }
}

// WithPhoneNumberID sets the sender phone-number ID (overrides $WHATSAPP_PHONE_NUMBER_ID).
func WithPhoneNumberID(id string) Option {
	return func(o *Opts) { o.PhoneNumberID = id }
}

// WithBaseURL overrides the Graph API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(o *Opts) { o.BaseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Opts) { o.HTTPClient = c }
}

// NewCloudAPIService creates a Cloud API transport. Both the access token
// and the phone-number ID are required; without them delivery cannot be
// attempted at all.
func NewCloudAPIService(opts ...Option) (*CloudAPIService, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccessToken == "" {
		cfg.AccessToken = os.Getenv("WHATSAPP_ACCESS_TOKEN")
	}
	if cfg.PhoneNumberID == "" {
		cfg.PhoneNumberID = os.Getenv("WHATSAPP_PHONE_NUMBER_ID")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGraphAPIBaseURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: DefaultSendTimeout}
	}

	slog.Debug("CloudAPIService config loaded",
		"access_token_set", cfg.AccessToken != "",
		"phone_number_id_set", cfg.PhoneNumberID != "")

	if cfg.AccessToken == "" || cfg.PhoneNumberID == "" {
		return nil, fmt.Errorf("access token and phone number ID must be provided")
	}

	return &CloudAPIService{
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       cfg.BaseURL,
		httpClient:    cfg.HTTPClient,
	}, nil
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a WhatsApp
// phone number.
func (s *CloudAPIService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizeRecipient(recipient)
}

// sendRequest is the Cloud API message payload.
type sendRequest struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             sendText         `json:"text"`
	Context          *sendMsgContext  `json:"context,omitempty"`
}

type sendText struct {
	Body string `json:"body"`
}

type sendMsgContext struct {
	MessageID string `json:"message_id"`
}

// sendResponse is the subset of the Cloud API response we read back.
type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendMessage delivers a text message through the Cloud API. A non-2xx
// response or any transport failure is reported as an error; no retry is
// attempted here.
func (s *CloudAPIService) SendMessage(ctx context.Context, to, body, contextMessageID string) (models.DeliveryResult, error) {
	canonicalTo, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		slog.Error("CloudAPIService.SendMessage: recipient validation failed", "error", err, "to", to)
		return models.DeliveryResult{Error: err.Error()}, err
	}
	if err := validateBody(body); err != nil {
		slog.Error("CloudAPIService.SendMessage: body validation failed", "error", err, "to", canonicalTo)
		return models.DeliveryResult{Error: err.Error()}, err
	}

	payload := sendRequest{
		MessagingProduct: "whatsapp",
		To:               canonicalTo,
		Type:             "text",
		Text:             sendText{Body: body},
	}
	if contextMessageID != "" {
		payload.Context = &sendMsgContext{MessageID: contextMessageID}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return models.DeliveryResult{Error: err.Error()}, fmt.Errorf("failed to marshal send payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return models.DeliveryResult{Error: err.Error()}, fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("CloudAPIService.SendMessage: request failed", "error", err, "to", canonicalTo)
		return models.DeliveryResult{Error: err.Error()}, fmt.Errorf("cloud API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		slog.Error("CloudAPIService.SendMessage: non-success status", "status", resp.StatusCode, "to", canonicalTo, "body", string(respBody))
		err := fmt.Errorf("cloud API returned status %d", resp.StatusCode)
		return models.DeliveryResult{Error: err.Error()}, err
	}

	var parsed sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		slog.Warn("CloudAPIService.SendMessage: failed to decode response", "error", err, "to", canonicalTo)
		// Delivery succeeded; the message ID is best-effort.
		return models.DeliveryResult{Success: true}, nil
	}

	result := models.DeliveryResult{Success: true}
	if len(parsed.Messages) > 0 {
		result.MessageID = parsed.Messages[0].ID
	}
	slog.Info("CloudAPIService.SendMessage: message delivered", "to", canonicalTo, "message_id", result.MessageID)
	return result, nil
}
