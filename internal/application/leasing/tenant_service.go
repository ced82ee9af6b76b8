package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// OverdueSweeper reconciles billing statuses before reads that must not show
// stale data. The billing package provides the implementation.
type OverdueSweeper interface {
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// TenantService handles tenant lifecycle and unit assignment
type TenantService struct {
	tenantRepo leasing.TenantRepository
	unitRepo   leasing.UnitRepository
	sweeper    OverdueSweeper
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo leasing.TenantRepository, unitRepo leasing.UnitRepository, sweeper OverdueSweeper) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		unitRepo:   unitRepo,
		sweeper:    sweeper,
	}
}

// Create creates a tenant, optionally assigning a unit in the same operation.
// Assigning at creation seeds the balance with one period of rent and sets
// the first due date one period out.
func (s *TenantService) Create(ctx context.Context, req CreateTenantRequest) (*TenantResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "create")
	defer span.End()

	exists, err := s.tenantRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_EMAIL", "A tenant with this email already exists")
	}

	tenant, err := leasing.NewTenant(req.Name, req.Email, req.Phone)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var unit *leasing.Unit
	if req.UnitID != nil {
		unit, err = s.unitRepo.FindByID(ctx, *req.UnitID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := tenant.AssignUnit(unit, leasing.PaymentFrequency(req.Frequency), time.Now()); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if err := unit.Occupy(tenant.ID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if unit != nil {
		if err := s.unitRepo.SaveWithLock(ctx, unit); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	logger.L(ctx).Info("Tenant created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.Bool("unit_assigned", unit != nil),
	)

	response := ToTenantResponse(tenant)
	return &response, nil
}

// GetByID retrieves a tenant by ID
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTenantResponse(tenant)
	return &response, nil
}

// List retrieves tenants with filtering and pagination. The overdue sweep
// runs synchronously first so billing statuses in the listing are never
// stale; a sweep failure degrades to serving the current statuses.
func (s *TenantService) List(ctx context.Context, filter TenantListFilter) ([]TenantResponse, int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "list")
	defer span.End()

	if s.sweeper != nil {
		if _, err := s.sweeper.Sweep(ctx, time.Now()); err != nil {
			logger.L(ctx).Warn("Overdue sweep before tenant list failed", zap.Error(err))
		}
	}

	domainFilter := buildTenantFilter(filter)
	tenants, err := s.tenantRepo.FindAll(ctx, domainFilter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}
	total, err := s.tenantRepo.Count(ctx, domainFilter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, err
	}

	return ToTenantResponses(tenants), total, nil
}

// Update updates a tenant's contact details
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, req UpdateTenantRequest) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != tenant.Email {
		exists, err := s.tenantRepo.ExistsByEmail(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_EMAIL", "A tenant with this email already exists")
		}
	}

	if err := tenant.UpdateContact(req.Name, req.Email, req.Phone); err != nil {
		return nil, err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// Archive soft-deletes a tenant. An assigned unit is released back to the
// available pool in the same operation.
func (s *TenantService) Archive(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "archive",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, id.String()),
	)
	defer span.End()

	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	var unit *leasing.Unit
	if tenant.UnitID != nil {
		unit, err = s.unitRepo.FindByID(ctx, *tenant.UnitID)
		if err != nil {
			telemetry.RecordError(span, err)
			return err
		}
		if err := unit.Release(); err != nil {
			telemetry.RecordError(span, err)
			return err
		}
	}

	if err := tenant.Archive(); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if unit != nil {
		if err := s.unitRepo.SaveWithLock(ctx, unit); err != nil {
			telemetry.RecordError(span, err)
			return err
		}
	}

	logger.L(ctx).Info("Tenant archived", zap.String("tenant_id", tenant.ID.String()))
	return nil
}

// AssignUnit places an existing tenant into a unit. The tenant side and the
// unit side are written together; the unit write carries a version check so
// two concurrent assignments of the same unit cannot both land.
func (s *TenantService) AssignUnit(ctx context.Context, tenantID uuid.UUID, req AssignUnitRequest) (*TenantResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "assign_unit",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrUnitID, req.UnitID.String()),
	)
	defer span.End()

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	unit, err := s.unitRepo.FindByID(ctx, req.UnitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := tenant.AssignUnit(unit, leasing.PaymentFrequency(req.Frequency), time.Now()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := unit.Occupy(tenant.ID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.unitRepo.SaveWithLock(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Unit assigned to tenant",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("unit_id", unit.ID.String()),
	)

	response := ToTenantResponse(tenant)
	return &response, nil
}

// RemoveUnit detaches a tenant from their unit and frees the unit
func (s *TenantService) RemoveUnit(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tenant", "remove_unit",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()),
	)
	defer span.End()

	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if tenant.UnitID == nil {
		return nil, shared.NewDomainError("TENANT_HAS_NO_UNIT", "Tenant is not assigned to a unit")
	}

	unit, err := s.unitRepo.FindByID(ctx, *tenant.UnitID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := tenant.ReleaseUnit(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := unit.Release(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.unitRepo.SaveWithLock(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Unit removed from tenant",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("unit_id", unit.ID.String()),
	)

	response := ToTenantResponse(tenant)
	return &response, nil
}

func buildTenantFilter(filter TenantListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.BillingStatus != "" {
		domainFilter.Filters["billing_status"] = filter.BillingStatus
	}
	if filter.UnitID != nil {
		domainFilter.Filters["unit_id"] = filter.UnitID.String()
	}
	if filter.Archived != nil {
		domainFilter.Filters["archived"] = *filter.Archived
	}
	return domainFilter
}
