package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseCategory represents the category of a property expense
type ExpenseCategory string

const (
	ExpenseCategoryRepairs   ExpenseCategory = "Repairs"
	ExpenseCategoryUtilities ExpenseCategory = "Utilities"
	ExpenseCategoryTaxes     ExpenseCategory = "Taxes"
	ExpenseCategoryInsurance ExpenseCategory = "Insurance"
	ExpenseCategorySupplies  ExpenseCategory = "Supplies"
	ExpenseCategoryOther     ExpenseCategory = "Other"
)

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRepairs, ExpenseCategoryUtilities, ExpenseCategoryTaxes,
		ExpenseCategoryInsurance, ExpenseCategorySupplies, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense represents an operating cost against the property or a unit
type Expense struct {
	shared.BaseAggregateRoot
	Category    ExpenseCategory
	Description string
	Amount      decimal.Decimal
	IncurredOn  time.Time
	UnitID      *uuid.UUID
}

// NewExpense creates a new expense record
func NewExpense(category ExpenseCategory, description string, amount decimal.Decimal, incurredOn time.Time, unitID *uuid.UUID) (*Expense, error) {
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}

	return &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Category:          category,
		Description:       strings.TrimSpace(description),
		Amount:            amount,
		IncurredOn:        incurredOn,
		UnitID:            unitID,
	}, nil
}

// Update changes the expense details
func (e *Expense) Update(category ExpenseCategory, description string, amount decimal.Decimal, incurredOn time.Time) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Unknown expense category")
	}
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	e.Category = category
	e.Description = strings.TrimSpace(description)
	e.Amount = amount
	e.IncurredOn = incurredOn
	e.Touch()
	e.IncrementVersion()
	return nil
}
