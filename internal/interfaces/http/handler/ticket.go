package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	maintenanceapp "github.com/leasehold/backend/internal/application/maintenance"
	"github.com/leasehold/backend/internal/interfaces/http/dto"
)

// TicketHandler handles maintenance ticket API endpoints
type TicketHandler struct {
	BaseHandler
	ticketService *maintenanceapp.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService *maintenanceapp.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// ListTicketsRequest represents ticket list query parameters
type ListTicketsRequest struct {
	dto.ListRequest
	Status   string  `form:"status" binding:"omitempty,oneof=Open InProgress Resolved Cancelled"`
	Priority string  `form:"priority" binding:"omitempty,oneof=Low Medium High"`
	TenantID *string `form:"tenant_id" binding:"omitempty,uuid"`
	UnitID   *string `form:"unit_id" binding:"omitempty,uuid"`
	OpenOnly bool    `form:"open_only"`
}

// Create godoc
// @ID           createTicket
// @Summary      Open a maintenance ticket
// @Description  Open a ticket for a tenant, a unit, or both. A ticket raised by a
// @Description  housed tenant is pinned to their unit.
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        request body maintenanceapp.CreateTicketRequest true "Ticket creation request"
// @Success      201 {object} APIResponse[maintenanceapp.TicketResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets [post]
func (h *TicketHandler) Create(c *gin.Context) {
	var req maintenanceapp.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, ticket)
}

// Get godoc
// @ID           getTicket
// @Summary      Get a ticket by ID
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} APIResponse[maintenanceapp.TicketResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id} [get]
func (h *TicketHandler) Get(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	ticket, err := h.ticketService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// List godoc
// @ID           listTickets
// @Summary      List maintenance tickets
// @Tags         tickets
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by status"
// @Param        priority query string false "Filter by priority"
// @Param        open_only query bool false "Only open and in-progress tickets"
// @Success      200 {object} APIResponse[[]maintenanceapp.TicketResponse]
// @Security     BearerAuth
// @Router       /tickets [get]
func (h *TicketHandler) List(c *gin.Context) {
	req := ListTicketsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := maintenanceapp.TicketListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Status:   req.Status,
		Priority: req.Priority,
		OpenOnly: req.OpenOnly,
	}
	if req.TenantID != nil {
		tenantID, err := uuid.Parse(*req.TenantID)
		if err != nil {
			h.BadRequest(c, "Invalid tenant ID")
			return
		}
		filter.TenantID = &tenantID
	}
	if req.UnitID != nil {
		unitID, err := uuid.Parse(*req.UnitID)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID")
			return
		}
		filter.UnitID = &unitID
	}

	tickets, total, err := h.ticketService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, tickets, total, filter.Page, filter.PageSize)
}

// Start godoc
// @ID           startTicket
// @Summary      Begin work on a ticket
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} APIResponse[maintenanceapp.TicketResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/start [post]
func (h *TicketHandler) Start(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	ticket, err := h.ticketService.Start(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// Resolve godoc
// @ID           resolveTicket
// @Summary      Resolve a ticket
// @Tags         tickets
// @Accept       json
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Param        request body maintenanceapp.ResolveTicketRequest true "Resolution details"
// @Success      200 {object} APIResponse[maintenanceapp.TicketResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/resolve [post]
func (h *TicketHandler) Resolve(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	var req maintenanceapp.ResolveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ticket, err := h.ticketService.Resolve(c.Request.Context(), id, req.Resolution)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}

// Cancel godoc
// @ID           cancelTicket
// @Summary      Cancel a ticket
// @Tags         tickets
// @Produce      json
// @Param        id path string true "Ticket ID"
// @Success      200 {object} APIResponse[maintenanceapp.TicketResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tickets/{id}/cancel [post]
func (h *TicketHandler) Cancel(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid ticket ID")
		return
	}

	ticket, err := h.ticketService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ticket)
}
