package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehold/backend/internal/domain/finance"
)

// ExpenseModel is the persistence model for the Expense domain entity.
type ExpenseModel struct {
	AggregateModel
	Category    finance.ExpenseCategory `gorm:"type:varchar(20);not null;index"`
	Description string                  `gorm:"type:text;not null"`
	Amount      decimal.Decimal         `gorm:"type:decimal(18,2);not null"`
	IncurredOn  time.Time               `gorm:"not null;index"`
	UnitID      *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense entity.
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Category:          m.Category,
		Description:       m.Description,
		Amount:            m.Amount,
		IncurredOn:        m.IncurredOn,
		UnitID:            m.UnitID,
	}
}

// FromDomain populates the persistence model from a domain Expense entity.
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Category = e.Category
	m.Description = e.Description
	m.Amount = e.Amount
	m.IncurredOn = e.IncurredOn
	m.UnitID = e.UnitID
}

// ExpenseModelFromDomain creates a new persistence model from a domain Expense entity.
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
