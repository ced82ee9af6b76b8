package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehold/backend/internal/domain/leasing"
)

// TenantModel is the persistence model for the Tenant domain entity.
type TenantModel struct {
	AggregateModel
	Name              string                   `gorm:"type:varchar(200);not null"`
	Email             string                   `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone             string                   `gorm:"type:varchar(50)"`
	UnitID            *uuid.UUID               `gorm:"type:uuid;index"`
	RentAmount        decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentFrequency  leasing.PaymentFrequency `gorm:"type:varchar(20)"`
	Balance           decimal.Decimal          `gorm:"type:decimal(18,2);not null;default:0"`
	NextDueDate       time.Time                `gorm:"index"`
	LastPaymentDate   *time.Time
	BillingStatus     leasing.BillingStatus `gorm:"type:varchar(20);not null;default:'Pending';index"`
	PasswordHash      string                `gorm:"type:varchar(100)"`
	LoginAttempts     int                   `gorm:"not null;default:0"`
	LockUntil         *time.Time
	ResetToken        string `gorm:"type:varchar(100)"`
	ResetTokenExpires *time.Time
	Archived          bool `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *leasing.Tenant {
	return &leasing.Tenant{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		UnitID:            m.UnitID,
		RentAmount:        m.RentAmount,
		PaymentFrequency:  m.PaymentFrequency,
		Balance:           m.Balance,
		NextDueDate:       m.NextDueDate,
		LastPaymentDate:   m.LastPaymentDate,
		BillingStatus:     m.BillingStatus,
		PasswordHash:      m.PasswordHash,
		LoginAttempts:     m.LoginAttempts,
		LockUntil:         m.LockUntil,
		ResetToken:        m.ResetToken,
		ResetTokenExpires: m.ResetTokenExpires,
		Archived:          m.Archived,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *leasing.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Email = t.Email
	m.Phone = t.Phone
	m.UnitID = t.UnitID
	m.RentAmount = t.RentAmount
	m.PaymentFrequency = t.PaymentFrequency
	m.Balance = t.Balance
	m.NextDueDate = t.NextDueDate
	m.LastPaymentDate = t.LastPaymentDate
	m.BillingStatus = t.BillingStatus
	m.PasswordHash = t.PasswordHash
	m.LoginAttempts = t.LoginAttempts
	m.LockUntil = t.LockUntil
	m.ResetToken = t.ResetToken
	m.ResetTokenExpires = t.ResetTokenExpires
	m.Archived = t.Archived
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity.
func TenantModelFromDomain(t *leasing.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// UnitModel is the persistence model for the Unit domain entity.
type UnitModel struct {
	AggregateModel
	Number     string             `gorm:"type:varchar(50);not null;uniqueIndex:idx_unit_number_location,priority:1"`
	Location   string             `gorm:"type:varchar(200);uniqueIndex:idx_unit_number_location,priority:2"`
	RentAmount decimal.Decimal    `gorm:"type:decimal(18,2);not null;default:0"`
	Status     leasing.UnitStatus `gorm:"type:varchar(20);not null;default:'Available';index"`
	TenantID   *uuid.UUID         `gorm:"type:uuid;index"`
	Notes      string             `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() *leasing.Unit {
	return &leasing.Unit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		Location:          m.Location,
		RentAmount:        m.RentAmount,
		Status:            m.Status,
		TenantID:          m.TenantID,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Unit entity.
func (m *UnitModel) FromDomain(u *leasing.Unit) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Number = u.Number
	m.Location = u.Location
	m.RentAmount = u.RentAmount
	m.Status = u.Status
	m.TenantID = u.TenantID
	m.Notes = u.Notes
}

// UnitModelFromDomain creates a new persistence model from a domain Unit entity.
func UnitModelFromDomain(u *leasing.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}
