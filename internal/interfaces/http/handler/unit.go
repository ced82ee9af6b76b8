package handler

import (
	"github.com/gin-gonic/gin"

	leasingapp "github.com/leasehold/backend/internal/application/leasing"
	"github.com/leasehold/backend/internal/interfaces/http/dto"
)

// UnitHandler handles unit-related API endpoints
type UnitHandler struct {
	BaseHandler
	unitService *leasingapp.UnitService
}

// NewUnitHandler creates a new UnitHandler
func NewUnitHandler(unitService *leasingapp.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// ListUnitsRequest represents unit list query parameters
type ListUnitsRequest struct {
	dto.ListRequest
	Status   string `form:"status" binding:"omitempty,oneof=Vacant Occupied Maintenance"`
	Location string `form:"location"`
}

// Create godoc
// @ID           createUnit
// @Summary      Create a new unit
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        request body leasingapp.CreateUnitRequest true "Unit creation request"
// @Success      201 {object} APIResponse[leasingapp.UnitResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units [post]
func (h *UnitHandler) Create(c *gin.Context) {
	var req leasingapp.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unit, err := h.unitService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, unit)
}

// Get godoc
// @ID           getUnit
// @Summary      Get a unit by ID
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID"
// @Success      200 {object} APIResponse[leasingapp.UnitResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id} [get]
func (h *UnitHandler) Get(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	unit, err := h.unitService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}

// List godoc
// @ID           listUnits
// @Summary      List units
// @Tags         units
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by unit status"
// @Param        location query string false "Filter by location"
// @Success      200 {object} APIResponse[[]leasingapp.UnitResponse]
// @Security     BearerAuth
// @Router       /units [get]
func (h *UnitHandler) List(c *gin.Context) {
	req := ListUnitsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := leasingapp.UnitListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Status:   req.Status,
		Location: req.Location,
	}

	units, total, err := h.unitService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, units, total, filter.Page, filter.PageSize)
}

// ListAvailable godoc
// @ID           listAvailableUnits
// @Summary      List vacant units
// @Tags         units
// @Produce      json
// @Success      200 {object} APIResponse[[]leasingapp.UnitResponse]
// @Security     BearerAuth
// @Router       /units/available [get]
func (h *UnitHandler) ListAvailable(c *gin.Context) {
	req := ListUnitsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := leasingapp.UnitListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Location: req.Location,
	}

	units, err := h.unitService.ListAvailable(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, units)
}

// Update godoc
// @ID           updateUnit
// @Summary      Update unit details
// @Tags         units
// @Accept       json
// @Produce      json
// @Param        id path string true "Unit ID"
// @Param        request body leasingapp.UpdateUnitRequest true "Unit update request"
// @Success      200 {object} APIResponse[leasingapp.UnitResponse]
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id} [put]
func (h *UnitHandler) Update(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	var req leasingapp.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unit, err := h.unitService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}

// Delete godoc
// @ID           deleteUnit
// @Summary      Delete a unit
// @Description  Delete a unit. Occupied units cannot be deleted.
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id} [delete]
func (h *UnitHandler) Delete(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	if err := h.unitService.Delete(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// StartMaintenance godoc
// @ID           startUnitMaintenance
// @Summary      Take a unit offline for maintenance
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID"
// @Success      200 {object} APIResponse[leasingapp.UnitResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/maintenance/start [post]
func (h *UnitHandler) StartMaintenance(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	unit, err := h.unitService.StartMaintenance(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}

// CompleteMaintenance godoc
// @ID           completeUnitMaintenance
// @Summary      Return a unit to service after maintenance
// @Tags         units
// @Produce      json
// @Param        id path string true "Unit ID"
// @Success      200 {object} APIResponse[leasingapp.UnitResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units/{id}/maintenance/complete [post]
func (h *UnitHandler) CompleteMaintenance(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	unit, err := h.unitService.CompleteMaintenance(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}
