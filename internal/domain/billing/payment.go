package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodCheck        PaymentMethod = "Check"
	PaymentMethodBankTransfer PaymentMethod = "BankTransfer"
	PaymentMethodGCash        PaymentMethod = "GCash"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodOther        PaymentMethod = "Other"
)

// IsValid returns true if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer,
		PaymentMethodGCash, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

// PaymentStatus represents the settlement state of a payment record
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusFailed  PaymentStatus = "Failed"
)

// Payment is an append-only record of money received (or expected, for
// gateway intents awaiting confirmation). Amounts are stored in major
// currency units; minor-unit conversion happens at the gateway boundary.
type Payment struct {
	shared.BaseEntity
	TenantID        uuid.UUID
	UnitID          *uuid.UUID
	Amount          decimal.Decimal
	PaymentDate     time.Time
	Method          PaymentMethod
	Status          PaymentStatus
	Notes           string
	GatewayIntentID string
	ReceiptURL      string
}

// NewPayment creates a settled payment record for a manually recorded payment
func NewPayment(tenantID uuid.UUID, unitID *uuid.UUID, amount decimal.Decimal, paymentDate time.Time, method PaymentMethod, notes string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		UnitID:      unitID,
		Amount:      amount,
		PaymentDate: paymentDate,
		Method:      method,
		Status:      PaymentStatusPaid,
		Notes:       notes,
	}, nil
}

// NewGatewayPayment creates a pending payment awaiting gateway confirmation.
// The intent ID is the correlation key the webhook uses to find this record.
func NewGatewayPayment(tenantID uuid.UUID, unitID *uuid.UUID, amount decimal.Decimal, intentID, notes string, createdAt time.Time) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if intentID == "" {
		return nil, shared.NewDomainError("INVALID_INTENT_ID", "Gateway intent ID cannot be empty")
	}
	if notes == "" {
		notes = "Online payment"
	}

	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		UnitID:          unitID,
		Amount:          amount,
		PaymentDate:     createdAt,
		Method:          PaymentMethodGCash,
		Status:          PaymentStatusPending,
		Notes:           notes,
		GatewayIntentID: intentID,
	}, nil
}

// MarkPaid settles a pending gateway payment. Calling it on an already
// settled payment returns ErrAlreadyPaid; webhook retries rely on this guard.
func (p *Payment) MarkPaid(receiptURL string, paidAt time.Time) error {
	if p.Status == PaymentStatusPaid {
		return ErrAlreadyPaid
	}
	p.Status = PaymentStatusPaid
	p.ReceiptURL = receiptURL
	p.PaymentDate = paidAt
	p.Touch()
	return nil
}

// MarkFailed records a gateway payment that will never settle
func (p *Payment) MarkFailed(reason string) error {
	if p.Status == PaymentStatusPaid {
		return ErrAlreadyPaid
	}
	p.Status = PaymentStatusFailed
	if reason != "" {
		p.Notes = reason
	}
	p.Touch()
	return nil
}

// ErrAlreadyPaid signals that a payment record has already been settled
var ErrAlreadyPaid = shared.NewDomainError("PAYMENT_ALREADY_PAID", "Payment has already been settled")
