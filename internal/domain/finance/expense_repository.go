package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseSummary aggregates expense totals per category
type ExpenseSummary struct {
	Category ExpenseCategory `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	// FindByID finds an expense by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindAll finds all expenses matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Expense, error)

	// FindByUnit finds expenses charged against a unit
	FindByUnit(ctx context.Context, unitID uuid.UUID, filter shared.Filter) ([]Expense, error)

	// SummarizeByCategory totals expenses per category within a period
	SummarizeByCategory(ctx context.Context, from, to time.Time) ([]ExpenseSummary, error)

	// Save creates or updates an expense
	Save(ctx context.Context, expense *Expense) error

	// Delete deletes an expense
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts expenses matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
