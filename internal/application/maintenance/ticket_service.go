package maintenance

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/maintenance"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// TicketService handles maintenance ticket lifecycle
type TicketService struct {
	ticketRepo maintenance.TicketRepository
	tenantRepo leasing.TenantRepository
	unitRepo   leasing.UnitRepository
}

// NewTicketService creates a new TicketService
func NewTicketService(ticketRepo maintenance.TicketRepository, tenantRepo leasing.TenantRepository, unitRepo leasing.UnitRepository) *TicketService {
	return &TicketService{
		ticketRepo: ticketRepo,
		tenantRepo: tenantRepo,
		unitRepo:   unitRepo,
	}
}

// Create opens a maintenance ticket. When the tenant is given without a
// unit, the ticket is pinned to the unit the tenant currently occupies.
func (s *TicketService) Create(ctx context.Context, req CreateTicketRequest) (*TicketResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ticket", "create")
	defer span.End()

	unitID := req.UnitID
	if req.TenantID != nil {
		tenant, err := s.tenantRepo.FindByID(ctx, *req.TenantID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if tenant.Archived {
			return nil, shared.ErrTenantArchived
		}
		if unitID == nil {
			unitID = tenant.UnitID
		}
	}
	if unitID != nil {
		if _, err := s.unitRepo.FindByID(ctx, *unitID); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	ticket, err := maintenance.NewTicket(req.TenantID, unitID, req.Title, req.Description, maintenance.TicketPriority(req.Priority))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.ticketRepo.Save(ctx, ticket); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Maintenance ticket opened",
		zap.String("ticket_id", ticket.ID.String()),
		zap.String("priority", string(ticket.Priority)),
	)

	response := ToTicketResponse(ticket)
	return &response, nil
}

// GetByID retrieves a ticket by ID
func (s *TicketService) GetByID(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTicketResponse(ticket)
	return &response, nil
}

// List retrieves tickets with filtering and pagination
func (s *TicketService) List(ctx context.Context, filter TicketListFilter) ([]TicketResponse, int64, error) {
	domainFilter := buildTicketFilter(filter)

	var (
		tickets []maintenance.Ticket
		err     error
	)
	switch {
	case filter.TenantID != nil:
		tickets, err = s.ticketRepo.FindByTenant(ctx, *filter.TenantID, domainFilter)
	case filter.UnitID != nil:
		tickets, err = s.ticketRepo.FindByUnit(ctx, *filter.UnitID, domainFilter)
	case filter.OpenOnly:
		tickets, err = s.ticketRepo.FindOpen(ctx, domainFilter)
	default:
		tickets, err = s.ticketRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ticketRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToTicketResponses(tickets), total, nil
}

// Start moves a ticket to in-progress. A linked unit that is still in the
// rentable pool is pulled into Maintenance for the duration of the work;
// occupied units stay with their tenant while being repaired.
func (s *TicketService) Start(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	ticket, err := s.transition(ctx, id, func(t *maintenance.Ticket) error { return t.Start() })
	if err != nil {
		return nil, err
	}
	s.syncUnit(ctx, ticket, func(u *leasing.Unit) error {
		if !u.IsAvailable() {
			return nil
		}
		return u.StartMaintenance()
	})
	response := ToTicketResponse(ticket)
	return &response, nil
}

// Resolve closes a ticket with a resolution note and hands a unit that was
// pulled into Maintenance back to the rentable pool
func (s *TicketService) Resolve(ctx context.Context, id uuid.UUID, resolution string) (*TicketResponse, error) {
	ticket, err := s.transition(ctx, id, func(t *maintenance.Ticket) error { return t.Resolve(resolution) })
	if err != nil {
		return nil, err
	}
	s.returnUnit(ctx, ticket)
	response := ToTicketResponse(ticket)
	return &response, nil
}

// Cancel closes a ticket without work being done. The unit is handed back
// the same way a resolution would.
func (s *TicketService) Cancel(ctx context.Context, id uuid.UUID) (*TicketResponse, error) {
	ticket, err := s.transition(ctx, id, func(t *maintenance.Ticket) error { return t.Cancel() })
	if err != nil {
		return nil, err
	}
	s.returnUnit(ctx, ticket)
	response := ToTicketResponse(ticket)
	return &response, nil
}

func (s *TicketService) transition(ctx context.Context, id uuid.UUID, apply func(*maintenance.Ticket) error) (*maintenance.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(ticket); err != nil {
		return nil, err
	}
	if err := s.ticketRepo.SaveWithLock(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) returnUnit(ctx context.Context, ticket *maintenance.Ticket) {
	s.syncUnit(ctx, ticket, func(u *leasing.Unit) error {
		if u.Status != leasing.UnitStatusMaintenance {
			return nil
		}
		return u.CompleteMaintenance()
	})
}

// syncUnit applies a best-effort status change to the ticket's unit. The
// ticket transition has already been persisted; a unit that cannot follow
// is logged and left to the unit maintenance endpoints.
func (s *TicketService) syncUnit(ctx context.Context, ticket *maintenance.Ticket, apply func(*leasing.Unit) error) {
	if ticket.UnitID == nil {
		return
	}

	unit, err := s.unitRepo.FindByID(ctx, *ticket.UnitID)
	if err != nil {
		logger.L(ctx).Warn("Ticket unit lookup failed",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("unit_id", ticket.UnitID.String()),
			zap.Error(err),
		)
		return
	}

	before := unit.Status
	if err := apply(unit); err != nil {
		logger.L(ctx).Warn("Ticket unit status change refused",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("unit_id", unit.ID.String()),
			zap.Error(err),
		)
		return
	}
	if unit.Status == before {
		return
	}

	if err := s.unitRepo.SaveWithLock(ctx, unit); err != nil {
		logger.L(ctx).Warn("Ticket unit status change not persisted",
			zap.String("ticket_id", ticket.ID.String()),
			zap.String("unit_id", unit.ID.String()),
			zap.Error(err),
		)
	}
}

func buildTicketFilter(filter TicketListFilter) shared.Filter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
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
	if filter.Priority != "" {
		domainFilter.Filters["priority"] = filter.Priority
	}
	return domainFilter
}
