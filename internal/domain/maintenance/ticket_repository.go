package maintenance

import (
	"context"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
)

// TicketRepository defines the interface for ticket persistence
type TicketRepository interface {
	// FindByID finds a ticket by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Ticket, error)

	// FindAll finds all tickets matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Ticket, error)

	// FindByTenant finds tickets raised by a tenant
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Ticket, error)

	// FindByUnit finds tickets against a unit
	FindByUnit(ctx context.Context, unitID uuid.UUID, filter shared.Filter) ([]Ticket, error)

	// FindOpen finds tickets that still need work
	FindOpen(ctx context.Context, filter shared.Filter) ([]Ticket, error)

	// Save creates or updates a ticket
	Save(ctx context.Context, ticket *Ticket) error

	// SaveWithLock saves a ticket with optimistic locking (version check)
	SaveWithLock(ctx context.Context, ticket *Ticket) error

	// Delete deletes a ticket
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts tickets matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
