package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	financeapp "github.com/leasehold/backend/internal/application/finance"
	"github.com/leasehold/backend/internal/interfaces/http/dto"
)

// ExpenseHandler handles operating expense API endpoints
type ExpenseHandler struct {
	BaseHandler
	expenseService *financeapp.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ListExpensesRequest represents expense list query parameters
type ListExpensesRequest struct {
	dto.ListRequest
	Category string     `form:"category"`
	UnitID   *string    `form:"unit_id" binding:"omitempty,uuid"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
}

// ExpenseSummaryRequest represents summary query parameters
type ExpenseSummaryRequest struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// Create godoc
// @ID           createExpense
// @Summary      Record an operating expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        request body financeapp.CreateExpenseRequest true "Expense creation request"
// @Success      201 {object} APIResponse[financeapp.ExpenseResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req financeapp.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, expense)
}

// Get godoc
// @ID           getExpense
// @Summary      Get an expense by ID
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      200 {object} APIResponse[financeapp.ExpenseResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	expense, err := h.expenseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// List godoc
// @ID           listExpenses
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        category query string false "Filter by category"
// @Param        from query string false "Incurred-on lower bound (YYYY-MM-DD)"
// @Param        to query string false "Incurred-on upper bound (YYYY-MM-DD)"
// @Success      200 {object} APIResponse[[]financeapp.ExpenseResponse]
// @Security     BearerAuth
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	req := ListExpensesRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := financeapp.ExpenseListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Category: req.Category,
		From:     req.From,
		To:       req.To,
	}
	if req.UnitID != nil {
		unitID, err := uuid.Parse(*req.UnitID)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID")
			return
		}
		filter.UnitID = &unitID
	}

	expenses, total, err := h.expenseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, expenses, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateExpense
// @Summary      Update an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Expense ID"
// @Param        request body financeapp.UpdateExpenseRequest true "Expense update request"
// @Success      200 {object} APIResponse[financeapp.ExpenseResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [put]
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	var req financeapp.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// Delete godoc
// @ID           deleteExpense
// @Summary      Delete an expense
// @Tags         expenses
// @Produce      json
// @Param        id path string true "Expense ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/{id} [delete]
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid expense ID")
		return
	}

	if err := h.expenseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Summary godoc
// @ID           expenseSummary
// @Summary      Summarize expenses by category over a period
// @Tags         expenses
// @Produce      json
// @Param        from query string true "Period start (YYYY-MM-DD)"
// @Param        to query string false "Period end (YYYY-MM-DD), defaults to now"
// @Success      200 {object} APIResponse[[]finance.ExpenseSummary]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /expenses/summary [get]
func (h *ExpenseHandler) Summary(c *gin.Context) {
	var req ExpenseSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.expenseService.Summary(c.Request.Context(), req.From, req.To)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}
