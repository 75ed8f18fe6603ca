package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Webhook event types emitted by the hosted checkout provider.
const (
	EventSessionCompleted = "checkout.session.completed"
	EventSessionExpired   = "checkout.session.expired"
)

// Hosted session lifecycle statuses reported by the provider.
const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"
)

// SignatureHeader carries the webhook signature on inbound deliveries.
const SignatureHeader = "Payment-Signature"

// sessionTTL bounds the hosted payment page; the provider cancels the
// session after this window and delivers a session-expired event.
const sessionTTL = 30 * time.Minute

// webhookTolerance rejects replayed deliveries with a stale timestamp.
const webhookTolerance = 5 * time.Minute

// LineItem is one server-computed line sent to the provider. Amounts are
// in cents; client-asserted prices never reach this struct.
type LineItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
}

// SessionRequest describes a hosted checkout session to create.
type SessionRequest struct {
	LineItems     []LineItem        `json:"line_items"`
	CustomerEmail string            `json:"customer_email"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata"`
	ExpiresAt     int64             `json:"expires_at"`
}

// Session is the provider's view of a hosted checkout session.
type Session struct {
	ID       string            `json:"id"`
	URL      string            `json:"url"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// WebhookEvent is a verified provider notification.
type WebhookEvent struct {
	Type    string  `json:"type"`
	Session Session `json:"data"`
}

// PaymentGateway is the surface the checkout and fulfillment flows need
// from the payment provider.
type PaymentGateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

// PaymentService talks to the hosted checkout provider's HTTP API and
// verifies its webhook signatures.
type PaymentService struct {
	apiURL        string
	secretKey     string
	webhookSecret string
	client        *http.Client
}

// NewPaymentService constructs PaymentService.
func NewPaymentService(apiURL, secretKey, webhookSecret string) *PaymentService {
	return &PaymentService{
		apiURL:        strings.TrimRight(apiURL, "/"),
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateSession requests a hosted checkout session and returns it, with
// the redirect URL the visitor is sent to.
func (s *PaymentService) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	if req.ExpiresAt == 0 {
		req.ExpiresAt = time.Now().Add(sessionTTL).Unix()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("%w: status %d: %s", ErrPaymentProvider, resp.StatusCode, respBody)
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("%w: empty redirect url", ErrPaymentProvider)
	}

	return &session, nil
}

// GetSession fetches a session by ID, used by the return-URL confirmation
// fallback.
func (s *PaymentService) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/checkout/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrPaymentProvider, resp.StatusCode, respBody)
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPaymentProvider, err)
	}

	return &session, nil
}

// VerifyWebhook checks the signature header (t=<unix>,v1=<hmac>) against
// the raw payload before trusting any of its content. The HMAC covers
// "<t>.<payload>" so the timestamp cannot be swapped onto an old body.
func (s *PaymentService) VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	timestamp, signature, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, ErrInvalidSignature
	}
	if d := time.Since(time.Unix(ts, 0)); d > webhookTolerance || d < -webhookTolerance {
		return nil, ErrInvalidSignature
	}

	expected := ComputeSignature(s.webhookSecret, timestamp, payload)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrInvalidSignature
	}

	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}

	return &event, nil
}

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>".
func ComputeSignature(secret, timestamp string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (timestamp, signature string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}
	if timestamp == "" || signature == "" {
		return "", "", ErrInvalidSignature
	}
	return timestamp, signature, nil
}
