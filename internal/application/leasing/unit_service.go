package leasing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// UnitService handles unit lifecycle and maintenance transitions
type UnitService struct {
	unitRepo leasing.UnitRepository
}

// NewUnitService creates a new UnitService
func NewUnitService(unitRepo leasing.UnitRepository) *UnitService {
	return &UnitService{unitRepo: unitRepo}
}

// Create creates a new unit. Unit numbers are unique within a location.
func (s *UnitService) Create(ctx context.Context, req CreateUnitRequest) (*UnitResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "unit", "create")
	defer span.End()

	exists, err := s.unitRepo.ExistsByNumber(ctx, req.Number, req.Location)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_UNIT_NUMBER", "A unit with this number already exists at this location")
	}

	unit, err := leasing.NewUnit(req.Number, req.Location, req.RentAmount)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	unit.Notes = req.Notes

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Unit created",
		zap.String("unit_id", unit.ID.String()),
		zap.String("number", unit.Number),
	)

	response := ToUnitResponse(unit)
	return &response, nil
}

// GetByID retrieves a unit by ID
func (s *UnitService) GetByID(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToUnitResponse(unit)
	return &response, nil
}

// List retrieves units with filtering and pagination
func (s *UnitService) List(ctx context.Context, filter UnitListFilter) ([]UnitResponse, int64, error) {
	domainFilter := buildUnitFilter(filter)

	units, err := s.unitRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.unitRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToUnitResponses(units), total, nil
}

// ListAvailable retrieves units that can take a tenant
func (s *UnitService) ListAvailable(ctx context.Context, filter UnitListFilter) ([]UnitResponse, error) {
	units, err := s.unitRepo.FindAvailable(ctx, buildUnitFilter(filter))
	if err != nil {
		return nil, err
	}
	return ToUnitResponses(units), nil
}

// Update updates a unit's details. A rent change does not touch tenants
// already assigned; their rent was snapshotted at assignment.
func (s *UnitService) Update(ctx context.Context, id uuid.UUID, req UpdateUnitRequest) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Number != unit.Number || req.Location != unit.Location {
		exists, err := s.unitRepo.ExistsByNumber(ctx, req.Number, req.Location)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_UNIT_NUMBER", "A unit with this number already exists at this location")
		}
	}

	if err := unit.UpdateDetails(req.Number, req.Location, req.RentAmount, req.Notes); err != nil {
		return nil, err
	}
	if err := s.unitRepo.SaveWithLock(ctx, unit); err != nil {
		return nil, err
	}

	response := ToUnitResponse(unit)
	return &response, nil
}

// Delete removes a unit. Occupied units cannot be deleted.
func (s *UnitService) Delete(ctx context.Context, id uuid.UUID) error {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if unit.TenantID != nil {
		return shared.ErrUnitOccupied
	}
	return s.unitRepo.Delete(ctx, id)
}

// StartMaintenance takes a unit out of the rentable pool
func (s *UnitService) StartMaintenance(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	return s.transition(ctx, id, (*leasing.Unit).StartMaintenance)
}

// CompleteMaintenance returns a unit to the rentable pool
func (s *UnitService) CompleteMaintenance(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	return s.transition(ctx, id, (*leasing.Unit).CompleteMaintenance)
}

func (s *UnitService) transition(ctx context.Context, id uuid.UUID, apply func(*leasing.Unit) error) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(unit); err != nil {
		return nil, err
	}
	if err := s.unitRepo.SaveWithLock(ctx, unit); err != nil {
		return nil, err
	}
	response := ToUnitResponse(unit)
	return &response, nil
}

func buildUnitFilter(filter UnitListFilter) shared.Filter {
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Location != "" {
		domainFilter.Filters["location"] = filter.Location
	}
	return domainFilter
}
