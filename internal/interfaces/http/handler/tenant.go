package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	leasingapp "github.com/leasehold/backend/internal/application/leasing"
	"github.com/leasehold/backend/internal/interfaces/http/dto"
)

// TenantHandler handles tenant-related API endpoints
type TenantHandler struct {
	BaseHandler
	tenantService *leasingapp.TenantService
	portalAuth    *leasingapp.PortalAuthService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(tenantService *leasingapp.TenantService, portalAuth *leasingapp.PortalAuthService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
		portalAuth:    portalAuth,
	}
}

// ListTenantsRequest represents tenant list query parameters
type ListTenantsRequest struct {
	dto.ListRequest
	BillingStatus string  `form:"billing_status" binding:"omitempty,oneof=Pending Partial Paid Overdue"`
	UnitID        *string `form:"unit_id" binding:"omitempty,uuid"`
	Archived      *bool   `form:"archived"`
}

// Create godoc
// @ID           createTenant
// @Summary      Create a new tenant
// @Description  Create a tenant, optionally assigning a unit at creation time
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        request body leasingapp.CreateTenantRequest true "Tenant creation request"
// @Success      201 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req leasingapp.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tenant)
}

// Get godoc
// @ID           getTenant
// @Summary      Get a tenant by ID
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id} [get]
func (h *TenantHandler) Get(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// List godoc
// @ID           listTenants
// @Summary      List tenants
// @Description  List tenants with filtering and pagination. Overdue statuses are
// @Description  reconciled before the listing is served.
// @Tags         tenants
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        billing_status query string false "Filter by billing status"
// @Param        archived query bool false "Filter by archived flag"
// @Success      200 {object} APIResponse[[]leasingapp.TenantResponse]
// @Security     BearerAuth
// @Router       /tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	req := ListTenantsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := leasingapp.TenantListFilter{
		Page:          req.Page,
		PageSize:      req.PageSize,
		OrderBy:       req.OrderBy,
		OrderDir:      req.OrderDir,
		Search:        req.Search,
		BillingStatus: req.BillingStatus,
		Archived:      req.Archived,
	}
	if req.UnitID != nil {
		unitID, err := uuid.Parse(*req.UnitID)
		if err != nil {
			h.BadRequest(c, "Invalid unit ID")
			return
		}
		filter.UnitID = &unitID
	}

	tenants, total, err := h.tenantService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, tenants, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateTenant
// @Summary      Update tenant contact details
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Param        request body leasingapp.UpdateTenantRequest true "Tenant update request"
// @Success      200 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req leasingapp.UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// Archive godoc
// @ID           archiveTenant
// @Summary      Archive a tenant
// @Description  Archive a tenant, releasing their unit if one is assigned
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/archive [post]
func (h *TenantHandler) Archive(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.tenantService.Archive(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// AssignUnit godoc
// @ID           assignTenantUnit
// @Summary      Assign a unit to a tenant
// @Description  Place a tenant into a vacant unit and seed their billing cycle
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Param        request body leasingapp.AssignUnitRequest true "Unit assignment request"
// @Success      200 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/unit [post]
func (h *TenantHandler) AssignUnit(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req leasingapp.AssignUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.AssignUnit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// RemoveUnit godoc
// @ID           removeTenantUnit
// @Summary      Remove a tenant from their unit
// @Tags         tenants
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Success      200 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/unit [delete]
func (h *TenantHandler) RemoveUnit(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.RemoveUnit(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// SetPortalPassword godoc
// @ID           setTenantPortalPassword
// @Summary      Set a tenant's portal password
// @Description  Staff-driven portal credential setup for a tenant
// @Tags         tenants
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID"
// @Param        request body leasingapp.SetPasswordRequest true "Portal password request"
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tenants/{id}/portal-password [put]
func (h *TenantHandler) SetPortalPassword(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req leasingapp.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.portalAuth.SetPassword(c.Request.Context(), id, req.Password); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
