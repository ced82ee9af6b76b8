package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehold/backend/internal/domain/billing"
)

// PaymentModel is the persistence model for the Payment domain entity.
// GatewayIntentID carries its own index because webhook handling looks
// payments up by intent rather than by primary key.
type PaymentModel struct {
	BaseModel
	TenantID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID          *uuid.UUID            `gorm:"type:uuid;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaymentDate     time.Time             `gorm:"not null;index"`
	Method          billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Status          billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'Pending';index"`
	Notes           string                `gorm:"type:text"`
	GatewayIntentID string                `gorm:"type:varchar(100);index"`
	ReceiptURL      string                `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		UnitID:          m.UnitID,
		Amount:          m.Amount,
		PaymentDate:     m.PaymentDate,
		Method:          m.Method,
		Status:          m.Status,
		Notes:           m.Notes,
		GatewayIntentID: m.GatewayIntentID,
		ReceiptURL:      m.ReceiptURL,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.TenantID = p.TenantID
	m.UnitID = p.UnitID
	m.Amount = p.Amount
	m.PaymentDate = p.PaymentDate
	m.Method = p.Method
	m.Status = p.Status
	m.Notes = p.Notes
	m.GatewayIntentID = p.GatewayIntentID
	m.ReceiptURL = p.ReceiptURL
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
