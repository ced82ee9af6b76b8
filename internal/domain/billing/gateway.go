package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Gateway event types as delivered by the payment provider.
const (
	EventPaymentPaid   = "payment.paid"
	EventPaymentFailed = "payment.failed"
)

// MinorUnitsPerMajor is the gateway's sub-unit factor (centavos per peso).
const MinorUnitsPerMajor = 100

// FromMinorUnits converts a gateway minor-unit amount to a major-unit decimal
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(decimal.NewFromInt(MinorUnitsPerMajor))
}

// ToMinorUnits converts a major-unit decimal to the gateway's minor units
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(MinorUnitsPerMajor)).Round(0).IntPart()
}

// PaymentIntent is the provider-side record created when a tenant starts
// an online payment. Amount is in minor units (centavos) on the wire;
// AmountMajor is the decimal equivalent used by the rest of the system.
type PaymentIntent struct {
	ID          string
	ClientKey   string
	Status      string
	Amount      int64
	AmountMajor decimal.Decimal
	Currency    string
	CheckoutURL string
	CreatedAt   time.Time
}

// WebhookEvent is a normalized gateway notification.
type WebhookEvent struct {
	ID         string
	Type       string
	IntentID   string
	PaymentRef string
	Amount     int64
	Currency   string
	ReceiptURL string
	FailReason string
	OccurredAt time.Time
}

// CreateIntentInput carries the parameters for opening a payment intent.
type CreateIntentInput struct {
	Amount      decimal.Decimal // major units, converted to minor units on the wire
	Currency    string
	Description string
	Metadata    map[string]string
}

// PaymentGateway abstracts the external payment provider.
type PaymentGateway interface {
	// CreateIntent opens a payment intent with the provider.
	CreateIntent(ctx context.Context, input CreateIntentInput) (*PaymentIntent, error)

	// VerifyWebhookSignature checks the provider's signature header against
	// the raw request body. Returns an error when the payload cannot be trusted.
	VerifyWebhookSignature(payload []byte, signatureHeader string) error

	// ParseWebhook decodes a raw webhook body into a normalized event.
	ParseWebhook(payload []byte) (*WebhookEvent, error)
}
