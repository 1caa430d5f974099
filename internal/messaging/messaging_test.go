package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/karthik-pvr/innkeeper/internal/models"
)

func TestCanonicalizeRecipient(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"+1 (415) 555-0100", "14155550100", false},
		{"14155550100", "14155550100", false},
		{"whatsapp:+14155550100", "14155550100", false},
		{"", "", true},
		{"abc", "", true},
		{"12345", "", true}, // too short
	}
	for _, c := range cases {
		got, err := canonicalizeRecipient(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("canonicalizeRecipient(%q): expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("canonicalizeRecipient(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("canonicalizeRecipient(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewCloudAPIServiceMissingCredentials(t *testing.T) {
	t.Setenv("WHATSAPP_ACCESS_TOKEN", "")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "")
	if _, err := NewCloudAPIService(); err == nil {
		t.Error("expected error when credentials are missing")
	}
	if _, err := NewCloudAPIService(WithAccessToken("tok")); err == nil {
		t.Error("expected error when phone number ID is missing")
	}
}

func TestCloudAPISendMessage(t *testing.T) {
	var gotPath string
	var gotAuth string
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages":[{"id":"wamid.OUT1"}]}`))
	}))
	defer srv.Close()

	svc, err := NewCloudAPIService(
		WithAccessToken("test-token"),
		WithPhoneNumberID("12345"),
		WithBaseURL(srv.URL),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.SendMessage(context.Background(), "+1 415 555 0100", "Hello!", "wamid.IN1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.MessageID != "wamid.OUT1" {
		t.Errorf("unexpected result: %+v", result)
	}
	if gotPath != "/12345/messages" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
	if gotPayload["to"] != "14155550100" {
		t.Errorf("expected canonicalized recipient, got %v", gotPayload["to"])
	}
	msgCtx, ok := gotPayload["context"].(map[string]interface{})
	if !ok || msgCtx["message_id"] != "wamid.IN1" {
		t.Errorf("expected context message id in payload, got %v", gotPayload["context"])
	}
}

func TestCloudAPISendMessageOmitsEmptyContext(t *testing.T) {
	var gotPayload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{"messages":[{"id":"wamid.OUT2"}]}`))
	}))
	defer srv.Close()

	svc, _ := NewCloudAPIService(WithAccessToken("t"), WithPhoneNumberID("1"), WithBaseURL(srv.URL))
	if _, err := svc.SendMessage(context.Background(), "14155550100", "hi", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, present := gotPayload["context"]; present {
		t.Error("context must be omitted when no message id is given")
	}
}

func TestCloudAPISendMessageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc, _ := NewCloudAPIService(WithAccessToken("t"), WithPhoneNumberID("1"), WithBaseURL(srv.URL))
	result, err := svc.SendMessage(context.Background(), "14155550100", "hi", "")
	if err == nil {
		t.Fatal("expected error on non-success status")
	}
	if result.Success {
		t.Error("result must report failure")
	}
	if !strings.Contains(result.Error, "500") {
		t.Errorf("expected status in error, got %q", result.Error)
	}
}

func TestCloudAPISendMessageInvalidInput(t *testing.T) {
	svc, _ := NewCloudAPIService(WithAccessToken("t"), WithPhoneNumberID("1"))

	if _, err := svc.SendMessage(context.Background(), "", "hi", ""); !errors.Is(err, models.ErrEmptyRecipient) {
		t.Errorf("expected ErrEmptyRecipient, got %v", err)
	}
	if _, err := svc.SendMessage(context.Background(), "14155550100", "", ""); !errors.Is(err, models.ErrEmptyBody) {
		t.Errorf("expected ErrEmptyBody, got %v", err)
	}
}

func TestNewTwilioServiceMissingCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")
	t.Setenv("TWILIO_FROM_NUMBER", "")
	if _, err := NewTwilioService(); err == nil {
		t.Error("expected error when credentials are missing")
	}
	if _, err := NewTwilioService(WithAccountSID("AC"), WithAuthToken("tok")); err == nil {
		t.Error("expected error when from number is missing")
	}
}

// mockTwilioAPI implements twilioMessageCreator for testing.
type mockTwilioAPI struct {
	lastParams *twilioApi.CreateMessageParams
	err        error
}

func (m *mockTwilioAPI) CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	m.lastParams = params
	if m.err != nil {
		return nil, m.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestTwilioSendMessage(t *testing.T) {
	mock := &mockTwilioAPI{}
	svc := &TwilioService{client: mock, fromWhats: "whatsapp:+15550006666"}

	result, err := svc.SendMessage(context.Background(), "+1 415 555 0100", "Hello!", "ignored")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.MessageID != "SM123" {
		t.Errorf("unexpected result: %+v", result)
	}
	if mock.lastParams == nil || mock.lastParams.To == nil || *mock.lastParams.To != "whatsapp:+14155550100" {
		t.Errorf("unexpected To param: %+v", mock.lastParams)
	}
}

func TestTwilioSendMessageFailure(t *testing.T) {
	mock := &mockTwilioAPI{err: errors.New("twilio down")}
	svc := &TwilioService{client: mock, fromWhats: "whatsapp:+15550006666"}

	result, err := svc.SendMessage(context.Background(), "14155550100", "hi", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if result.Success {
		t.Error("result must report failure")
	}
}
