package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testWebhookSecret = "whsec_test"

func signedHeader(secret string, payload []byte, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	return fmt.Sprintf("t=%s,v1=%s", ts, ComputeSignature(secret, ts, payload))
}

func TestVerifyWebhook(t *testing.T) {
	svc := NewPaymentService("https://pay.example", "sk_test", testWebhookSecret)

	payload := []byte(`{"type":"checkout.session.completed","data":{"id":"sess_1","status":"complete","metadata":{"order_id":"abc"}}}`)

	event, err := svc.VerifyWebhook(payload, signedHeader(testWebhookSecret, payload, time.Now()))
	assert.NoError(t, err)
	assert.Equal(t, EventSessionCompleted, event.Type)
	assert.Equal(t, "sess_1", event.Session.ID)
	assert.Equal(t, "abc", event.Session.Metadata["order_id"])
}

func TestVerifyWebhookWrongSecret(t *testing.T) {
	svc := NewPaymentService("https://pay.example", "sk_test", testWebhookSecret)

	payload := []byte(`{"type":"checkout.session.completed","data":{"id":"sess_1"}}`)

	_, err := svc.VerifyWebhook(payload, signedHeader("whsec_other", payload, time.Now()))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookTamperedPayload(t *testing.T) {
	svc := NewPaymentService("https://pay.example", "sk_test", testWebhookSecret)

	payload := []byte(`{"type":"checkout.session.completed","data":{"id":"sess_1"}}`)
	header := signedHeader(testWebhookSecret, payload, time.Now())

	tampered := []byte(`{"type":"checkout.session.completed","data":{"id":"sess_2"}}`)
	_, err := svc.VerifyWebhook(tampered, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookStaleTimestamp(t *testing.T) {
	svc := NewPaymentService("https://pay.example", "sk_test", testWebhookSecret)

	payload := []byte(`{"type":"checkout.session.completed","data":{"id":"sess_1"}}`)

	// Correctly signed but ten minutes old: rejected as a replay.
	_, err := svc.VerifyWebhook(payload, signedHeader(testWebhookSecret, payload, time.Now().Add(-10*time.Minute)))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookMalformedHeader(t *testing.T) {
	svc := NewPaymentService("https://pay.example", "sk_test", testWebhookSecret)

	payload := []byte(`{}`)

	for _, header := range []string{"", "garbage", "t=123", "v1=deadbeef", "t=notanumber,v1=deadbeef"} {
		_, err := svc.VerifyWebhook(payload, header)
		assert.ErrorIs(t, err, ErrInvalidSignature, "header %q", header)
	}
}

func TestCreateSession(t *testing.T) {
	var gotAuth string
	var gotReq SessionRequest

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Session{ID: "sess_9", URL: "https://pay.example/sess_9", Status: "open"})
	}))
	defer provider.Close()

	svc := NewPaymentService(provider.URL, "sk_test", testWebhookSecret)

	session, err := svc.CreateSession(context.Background(), SessionRequest{
		LineItems:     []LineItem{{Name: "Tarte", UnitAmount: 1000, Quantity: 2}},
		CustomerEmail: "alice@example.com",
		SuccessURL:    "https://invithe.example/confirmation",
		CancelURL:     "https://invithe.example/panier",
	})
	assert.NoError(t, err)
	assert.Equal(t, "sess_9", session.ID)
	assert.Equal(t, "https://pay.example/sess_9", session.URL)

	assert.Equal(t, "Bearer sk_test", gotAuth)
	assert.Equal(t, int64(1000), gotReq.LineItems[0].UnitAmount)
	// The service fills in the session expiry when the caller leaves it zero.
	assert.Greater(t, gotReq.ExpiresAt, time.Now().Unix())
}

func TestCreateSessionProviderError(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer provider.Close()

	svc := NewPaymentService(provider.URL, "sk_test", testWebhookSecret)

	_, err := svc.CreateSession(context.Background(), SessionRequest{})
	assert.ErrorIs(t, err, ErrPaymentProvider)
}

func TestGetSession(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/checkout/sessions/sess_9", r.URL.Path)
		json.NewEncoder(w).Encode(Session{ID: "sess_9", Status: "complete", Metadata: map[string]string{"order_id": "abc"}})
	}))
	defer provider.Close()

	svc := NewPaymentService(provider.URL, "sk_test", testWebhookSecret)

	session, err := svc.GetSession(context.Background(), "sess_9")
	assert.NoError(t, err)
	assert.Equal(t, "complete", session.Status)
	assert.Equal(t, "abc", session.Metadata["order_id"])
}
