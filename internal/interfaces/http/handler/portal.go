package handler

import (
	"github.com/gin-gonic/gin"

	leasingapp "github.com/leasehold/backend/internal/application/leasing"
)

// PortalHandler handles tenant portal self-service endpoints
type PortalHandler struct {
	BaseHandler
	portalAuth    *leasingapp.PortalAuthService
	tenantService *leasingapp.TenantService
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(portalAuth *leasingapp.PortalAuthService, tenantService *leasingapp.TenantService) *PortalHandler {
	return &PortalHandler{
		portalAuth:    portalAuth,
		tenantService: tenantService,
	}
}

// Login godoc
// @ID           portalLogin
// @Summary      Tenant portal login
// @Description  Authenticate a tenant by email and portal password. Repeated
// @Description  failures lock the account for a cooldown period.
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        request body leasingapp.PortalLoginRequest true "Login credentials"
// @Success      200 {object} APIResponse[leasingapp.PortalLoginResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /portal/login [post]
func (h *PortalHandler) Login(c *gin.Context) {
	var req leasingapp.PortalLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.portalAuth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, resp)
}

// RequestPasswordReset godoc
// @ID           portalRequestPasswordReset
// @Summary      Request a portal password reset token
// @Description  Always succeeds from the caller's perspective so email addresses
// @Description  cannot be enumerated
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        request body leasingapp.PasswordResetRequest true "Reset request"
// @Success      200 {object} SuccessResponse
// @Router       /portal/password-reset/request [post]
func (h *PortalHandler) RequestPasswordReset(c *gin.Context) {
	var req leasingapp.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.portalAuth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"message": "If the email is registered, a reset link has been sent"})
}

// ConfirmPasswordReset godoc
// @ID           portalConfirmPasswordReset
// @Summary      Complete a portal password reset
// @Tags         portal
// @Accept       json
// @Produce      json
// @Param        request body leasingapp.PasswordResetConfirm true "Reset confirmation"
// @Success      204
// @Failure      401 {object} ErrorResponse
// @Router       /portal/password-reset/confirm [post]
func (h *PortalHandler) ConfirmPasswordReset(c *gin.Context) {
	var req leasingapp.PasswordResetConfirm
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.portalAuth.ConfirmPasswordReset(c.Request.Context(), req); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Me godoc
// @ID           portalMe
// @Summary      Get the authenticated tenant's own record
// @Tags         portal
// @Produce      json
// @Success      200 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /portal/me [get]
func (h *PortalHandler) Me(c *gin.Context) {
	tenantID, err := getSubjectID(c)
	if err != nil {
		h.Unauthorized(c, "Not authenticated")
		return
	}

	tenant, err := h.tenantService.GetByID(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}
