package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehold/backend/internal/domain/finance"
)

// CreateExpenseRequest is the input for recording an expense
type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	IncurredOn  *time.Time      `json:"incurred_on"`
	UnitID      *uuid.UUID      `json:"unit_id"`
}

// UpdateExpenseRequest is the input for updating an expense
type UpdateExpenseRequest struct {
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	IncurredOn  *time.Time      `json:"incurred_on"`
}

// ExpenseResponse is the API representation of an expense
type ExpenseResponse struct {
	ID          uuid.UUID       `json:"id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IncurredOn  time.Time       `json:"incurred_on"`
	UnitID      *uuid.UUID      `json:"unit_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ExpenseListFilter carries list query options from the handler
type ExpenseListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Category string
	UnitID   *uuid.UUID
	From     *time.Time
	To       *time.Time
}

// ToExpenseResponse converts a domain expense to its API representation
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Category:    string(e.Category),
		Description: e.Description,
		Amount:      e.Amount,
		IncurredOn:  e.IncurredOn,
		UnitID:      e.UnitID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ToExpenseResponses converts a slice of domain expenses
func ToExpenseResponses(expenses []finance.Expense) []ExpenseResponse {
	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses
}
