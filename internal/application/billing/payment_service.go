package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/billing"
	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// PaymentService records payments and applies them to tenant balances
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	tenantRepo  leasing.TenantRepository
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo billing.PaymentRepository, tenantRepo leasing.TenantRepository) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		tenantRepo:  tenantRepo,
	}
}

// RecordManualPayment records a payment taken outside the gateway (cash,
// check, bank transfer) and applies it to the tenant's balance in the same
// operation. The payment record is written first; if the balance update then
// hits a version conflict the caller retries and the duplicate payment record
// is visible for reconciliation rather than silently lost.
func (s *PaymentService) RecordManualPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, req.TenantID.String()),
	)
	defer span.End()

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if tenant.Archived {
		return nil, shared.ErrTenantArchived
	}

	now := time.Now()
	paidAt := now
	if req.PaymentDate != nil {
		paidAt = *req.PaymentDate
	}

	payment, err := billing.NewPayment(tenant.ID, tenant.UnitID, req.Amount, paidAt, billing.PaymentMethod(req.Method), req.Notes)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := tenant.ApplyPayment(req.Amount, paidAt, now); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Manual payment recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("billing_status", string(tenant.BillingStatus)),
	)

	return &RecordPaymentResponse{
		Payment: ToPaymentResponse(payment),
		Tenant:  ToBillingSnapshot(tenant),
	}, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
	domainFilter := buildPaymentFilter(filter)

	var (
		payments []billing.Payment
		err      error
	)
	if filter.TenantID != nil {
		payments, err = s.paymentRepo.FindByTenant(ctx, *filter.TenantID, domainFilter)
	} else {
		payments, err = s.paymentRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if filter.TenantID != nil {
		total, err = s.paymentRepo.CountByTenant(ctx, *filter.TenantID)
	} else {
		total, err = s.paymentRepo.Count(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	return ToPaymentResponses(payments), total, nil
}

func buildPaymentFilter(filter PaymentListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "payment_date"
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Method != "" {
		domainFilter.Filters["method"] = filter.Method
	}
	return domainFilter
}
