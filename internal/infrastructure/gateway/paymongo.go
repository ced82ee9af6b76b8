package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leasehold/backend/internal/domain/billing"
	"github.com/leasehold/backend/internal/infrastructure/config"
)

const paymentIntentsPath = "/payment_intents"

var (
	ErrMissingSecretKey   = errors.New("paymongo: secret key is not configured")
	ErrInvalidSignature   = errors.New("paymongo: webhook signature mismatch")
	ErrMalformedSignature = errors.New("paymongo: malformed signature header")
	ErrGatewayUnavailable = errors.New("paymongo: gateway unavailable")
	ErrRequestFailed      = errors.New("paymongo: request failed")
)

// PayMongoAdapter implements billing.PaymentGateway against the PayMongo v1 API.
type PayMongoAdapter struct {
	baseURL       string
	secretKey     string
	webhookSecret string
	httpClient    *http.Client
}

// NewPayMongoAdapter creates a PayMongo adapter from gateway configuration.
func NewPayMongoAdapter(cfg config.GatewayConfig) (*PayMongoAdapter, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecretKey
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &PayMongoAdapter{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type paymongoIntentRequest struct {
	Data struct {
		Attributes paymongoIntentAttributes `json:"attributes"`
	} `json:"data"`
}

type paymongoIntentAttributes struct {
	Amount               int64             `json:"amount"`
	Currency             string            `json:"currency"`
	Description          string            `json:"description,omitempty"`
	PaymentMethodAllowed []string          `json:"payment_method_allowed"`
	CaptureType          string            `json:"capture_type"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

type paymongoIntentResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Amount      int64  `json:"amount"`
			Currency    string `json:"currency"`
			Status      string `json:"status"`
			ClientKey   string `json:"client_key"`
			CheckoutURL string `json:"checkout_url"`
			CreatedAt   int64  `json:"created_at"`
		} `json:"attributes"`
	} `json:"data"`
}

type paymongoErrorResponse struct {
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CreateIntent opens a payment intent with PayMongo. The input amount is in
// major units and converted to centavos on the wire.
func (a *PayMongoAdapter) CreateIntent(ctx context.Context, input billing.CreateIntentInput) (*billing.PaymentIntent, error) {
	currency := input.Currency
	if currency == "" {
		currency = "PHP"
	}

	minor := billing.ToMinorUnits(input.Amount)

	var body paymongoIntentRequest
	body.Data.Attributes = paymongoIntentAttributes{
		Amount:               minor,
		Currency:             currency,
		Description:          input.Description,
		PaymentMethodAllowed: []string{"gcash", "card", "paymaya"},
		CaptureType:          "automatic",
		Metadata:             input.Metadata,
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("paymongo: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, paymentIntentsPath, bodyBytes)
	if err != nil {
		return nil, err
	}

	var resp paymongoIntentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("paymongo: failed to parse response: %w", err)
	}

	return &billing.PaymentIntent{
		ID:          resp.Data.ID,
		ClientKey:   resp.Data.Attributes.ClientKey,
		Status:      resp.Data.Attributes.Status,
		Amount:      resp.Data.Attributes.Amount,
		AmountMajor: billing.FromMinorUnits(resp.Data.Attributes.Amount),
		Currency:    resp.Data.Attributes.Currency,
		CheckoutURL: resp.Data.Attributes.CheckoutURL,
		CreatedAt:   time.Unix(resp.Data.Attributes.CreatedAt, 0),
	}, nil
}

// VerifyWebhookSignature checks the Paymongo-Signature header against the raw
// body. The header carries a timestamp and test/live HMAC-SHA256 digests of
// "<timestamp>.<body>" keyed with the webhook secret.
func (a *PayMongoAdapter) VerifyWebhookSignature(payload []byte, signatureHeader string) error {
	if a.webhookSecret == "" {
		// No secret configured means signatures cannot be verified.
		// Reject rather than accept unverifiable payloads.
		return ErrInvalidSignature
	}

	var timestamp, testSig, liveSig string
	for _, part := range strings.Split(signatureHeader, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "te":
			testSig = kv[1]
		case "li":
			liveSig = kv[1]
		}
	}

	if timestamp == "" || (testSig == "" && liveSig == "") {
		return ErrMalformedSignature
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if hmac.Equal([]byte(expected), []byte(liveSig)) || hmac.Equal([]byte(expected), []byte(testSig)) {
		return nil
	}
	return ErrInvalidSignature
}

type paymongoWebhookPayload struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID         string `json:"id"`
				Attributes struct {
					Amount        int64  `json:"amount"`
					Currency      string `json:"currency"`
					Status        string `json:"status"`
					PaymentIntent struct {
						ID string `json:"id"`
					} `json:"payment_intent"`
					ReceiptURL    string `json:"receipt_url"`
					FailedMessage string `json:"failed_message"`
					PaidAt        int64  `json:"paid_at"`
				} `json:"attributes"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

// ParseWebhook decodes a raw PayMongo webhook body into a normalized event.
func (a *PayMongoAdapter) ParseWebhook(payload []byte) (*billing.WebhookEvent, error) {
	var body paymongoWebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("paymongo: failed to parse webhook: %w", err)
	}

	attrs := body.Data.Attributes.Data.Attributes
	event := &billing.WebhookEvent{
		ID:         body.Data.ID,
		Type:       body.Data.Attributes.Type,
		IntentID:   attrs.PaymentIntent.ID,
		PaymentRef: body.Data.Attributes.Data.ID,
		Amount:     attrs.Amount,
		Currency:   attrs.Currency,
		ReceiptURL: attrs.ReceiptURL,
		FailReason: attrs.FailedMessage,
	}
	if attrs.PaidAt > 0 {
		event.OccurredAt = time.Unix(attrs.PaidAt, 0)
	} else {
		event.OccurredAt = time.Now()
	}

	return event, nil
}

// doRequest performs an authenticated HTTP request against the PayMongo API
func (a *PayMongoAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("paymongo: failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// PayMongo authenticates with the secret key as basic auth username
	req.SetBasicAuth(a.secretKey, "")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("paymongo: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp paymongoErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && len(errResp.Errors) > 0 {
			return nil, fmt.Errorf("%w: %s - %s", ErrRequestFailed, errResp.Errors[0].Code, errResp.Errors[0].Detail)
		}
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

var _ billing.PaymentGateway = (*PayMongoAdapter)(nil)
