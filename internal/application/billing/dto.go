package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehold/backend/internal/domain/billing"
	"github.com/leasehold/backend/internal/domain/leasing"
)

// RecordPaymentRequest is the input for manually recording a payment
type RecordPaymentRequest struct {
	TenantID    uuid.UUID       `json:"tenant_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate *time.Time      `json:"payment_date"`
	Method      string          `json:"method" binding:"required"`
	Notes       string          `json:"notes"`
}

// CreateIntentRequest is the input for starting an online payment.
// Amount is in the gateway's minor units (centavos), matching what the
// checkout frontend sends to the provider.
type CreateIntentRequest struct {
	TenantID uuid.UUID `json:"tenant_id" binding:"required"`
	Amount   int64     `json:"amount" binding:"required,gt=0"`
	Currency string    `json:"currency" binding:"omitempty,len=3"`
	Notes    string    `json:"notes"`
}

// PaymentResponse is the API representation of a payment record
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	UnitID          *uuid.UUID      `json:"unit_id,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	PaymentDate     time.Time       `json:"payment_date"`
	Method          string          `json:"method"`
	Status          string          `json:"status"`
	Notes           string          `json:"notes,omitempty"`
	GatewayIntentID string          `json:"gateway_intent_id,omitempty"`
	ReceiptURL      string          `json:"receipt_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TenantBillingSnapshot reports the tenant's billing state after a payment
// has been applied
type TenantBillingSnapshot struct {
	TenantID      uuid.UUID       `json:"tenant_id"`
	Balance       decimal.Decimal `json:"balance"`
	BillingStatus string          `json:"billing_status"`
	NextDueDate   time.Time       `json:"next_due_date"`
}

// RecordPaymentResponse pairs the created payment record with the tenant's
// updated billing state so the caller sees both sides of the mutation
type RecordPaymentResponse struct {
	Payment PaymentResponse       `json:"payment"`
	Tenant  TenantBillingSnapshot `json:"tenant"`
}

// IntentResponse is returned when an online payment intent is created
type IntentResponse struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	IntentID    string          `json:"intent_id"`
	ClientKey   string          `json:"client_key,omitempty"`
	CheckoutURL string          `json:"checkout_url,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
}

// PaymentListFilter carries list query options from the handler
type PaymentListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   string
	Method   string
	TenantID *uuid.UUID
}

// ToPaymentResponse converts a domain payment to its API representation
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		UnitID:          p.UnitID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		Method:          string(p.Method),
		Status:          string(p.Status),
		Notes:           p.Notes,
		GatewayIntentID: p.GatewayIntentID,
		ReceiptURL:      p.ReceiptURL,
		CreatedAt:       p.CreatedAt,
	}
}

// ToBillingSnapshot captures a tenant's post-payment billing state
func ToBillingSnapshot(t *leasing.Tenant) TenantBillingSnapshot {
	return TenantBillingSnapshot{
		TenantID:      t.ID,
		Balance:       t.Balance,
		BillingStatus: string(t.BillingStatus),
		NextDueDate:   t.NextDueDate,
	}
}

// ToPaymentResponses converts a slice of domain payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
