package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/leasehold/backend/internal/application/billing"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// SignatureHeader carries the gateway's webhook HMAC signature
const SignatureHeader = "Paymongo-Signature"

// PaymentHandler handles payment-related API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
	gatewayService *billingapp.GatewayPaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService, gatewayService *billingapp.GatewayPaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		gatewayService: gatewayService,
	}
}

// ListPaymentsRequest represents payment list query parameters
type ListPaymentsRequest struct {
	dto.ListRequest
	Status string `form:"status" binding:"omitempty,oneof=Pending Paid Failed"`
	Method string `form:"method"`
}

// tenantIDRequest binds the :tenant_id path parameter
type tenantIDRequest struct {
	TenantID string `uri:"tenant_id" binding:"required,uuid"`
}

// Record godoc
// @ID           recordPayment
// @Summary      Record a manual payment
// @Description  Record an offline payment (cash, bank transfer, check) and apply
// @Description  it to the tenant's balance
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body billingapp.RecordPaymentRequest true "Payment request"
// @Success      201 {object} APIResponse[billingapp.RecordPaymentResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.RecordManualPayment(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Get godoc
// @ID           getPayment
// @Summary      Get a payment by ID
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID"
// @Success      200 {object} APIResponse[billingapp.PaymentResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := getIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @ID           listPayments
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        status query string false "Filter by payment status"
// @Param        method query string false "Filter by payment method"
// @Success      200 {object} APIResponse[[]billingapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	req := ListPaymentsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billingapp.PaymentListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Status:   req.Status,
		Method:   req.Method,
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ListByTenant godoc
// @ID           listTenantPayments
// @Summary      List a tenant's payment history
// @Tags         payments
// @Produce      json
// @Param        tenant_id path string true "Tenant ID"
// @Success      200 {object} APIResponse[[]billingapp.PaymentResponse]
// @Security     BearerAuth
// @Router       /payments/tenant/{tenant_id} [get]
func (h *PaymentHandler) ListByTenant(c *gin.Context) {
	var uri tenantIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}
	tenantID, err := uuid.Parse(uri.TenantID)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billingapp.PaymentListFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		TenantID: &tenantID,
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// CreateIntent godoc
// @ID           createPaymentIntent
// @Summary      Start an online payment
// @Description  Create a payment intent with the gateway and a pending local
// @Description  payment record correlated to it
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateIntentRequest true "Intent request"
// @Success      201 {object} APIResponse[billingapp.IntentResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /payments/gateway/create-intent [post]
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req billingapp.CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	intent, err := h.gatewayService.CreateIntent(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, intent)
}

// Webhook godoc
// @ID           gatewayWebhook
// @Summary      Receive a payment gateway webhook
// @Description  Unauthenticated delivery endpoint for the gateway. The raw body
// @Description  is verified against the signature header before processing.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Paymongo-Signature header string true "Webhook signature"
// @Success      200 {object} SuccessResponse
// @Failure      400 {object} ErrorResponse
// @Router       /payments/gateway/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "Unable to read request body")
		return
	}

	if err := h.gatewayService.VerifySignature(payload, c.GetHeader(SignatureHeader)); err != nil {
		logger.L(c.Request.Context()).Warn("Webhook signature rejected", zap.Error(err))
		h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, "Invalid webhook signature")
		return
	}

	// Business-level misses (unknown intent, duplicate event, already settled)
	// return nil from the service so the gateway stops retrying. Only storage
	// failures surface here.
	if err := h.gatewayService.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, gin.H{"received": true})
}
