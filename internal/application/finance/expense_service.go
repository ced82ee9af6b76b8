package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/finance"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// ExpenseService handles property expense bookkeeping
type ExpenseService struct {
	expenseRepo finance.ExpenseRepository
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo finance.ExpenseRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo}
}

// Create records a new expense
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "create")
	defer span.End()

	incurredOn := time.Now()
	if req.IncurredOn != nil {
		incurredOn = *req.IncurredOn
	}

	expense, err := finance.NewExpense(finance.ExpenseCategory(req.Category), req.Description, req.Amount, incurredOn, req.UnitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Expense recorded",
		zap.String("expense_id", expense.ID.String()),
		zap.String("category", string(expense.Category)),
		zap.String("amount", expense.Amount.String()),
	)

	response := ToExpenseResponse(expense)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves expenses with filtering and pagination
func (s *ExpenseService) List(ctx context.Context, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := buildExpenseFilter(filter)

	var (
		expenses []finance.Expense
		err      error
	)
	if filter.UnitID != nil {
		expenses, err = s.expenseRepo.FindByUnit(ctx, *filter.UnitID, domainFilter)
	} else {
		expenses, err = s.expenseRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToExpenseResponses(expenses), total, nil
}

// Update changes an expense's details
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	incurredOn := expense.IncurredOn
	if req.IncurredOn != nil {
		incurredOn = *req.IncurredOn
	}

	if err := expense.Update(finance.ExpenseCategory(req.Category), req.Description, req.Amount, incurredOn); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, err
	}

	response := ToExpenseResponse(expense)
	return &response, nil
}

// Delete removes an expense record
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.expenseRepo.Delete(ctx, id)
}

// Summary totals expenses per category within a period. A zero "to" means
// now; a zero "from" means the beginning of records.
func (s *ExpenseService) Summary(ctx context.Context, from, to time.Time) ([]finance.ExpenseSummary, error) {
	if to.IsZero() {
		to = time.Now()
	}
	if !from.IsZero() && !to.After(from) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Summary period end must be after its start")
	}
	return s.expenseRepo.SummarizeByCategory(ctx, from, to)
}

func buildExpenseFilter(filter ExpenseListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "incurred_on"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.From != nil {
		domainFilter.Filters["incurred_from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["incurred_to"] = *filter.To
	}
	return domainFilter
}
