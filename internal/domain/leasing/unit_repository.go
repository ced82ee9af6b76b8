package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
)

// UnitRepository defines the interface for unit persistence
type UnitRepository interface {
	// FindByID finds a unit by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)

	// FindByNumber finds a unit by its number within a location
	FindByNumber(ctx context.Context, number, location string) (*Unit, error)

	// FindAll finds all units matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Unit, error)

	// FindAvailable finds units that can take a tenant
	FindAvailable(ctx context.Context, filter shared.Filter) ([]Unit, error)

	// Save creates or updates a unit
	Save(ctx context.Context, unit *Unit) error

	// SaveWithLock saves a unit with optimistic locking (version check)
	SaveWithLock(ctx context.Context, unit *Unit) error

	// Delete deletes a unit
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts units matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByNumber checks if a unit with the given number exists at a location
	ExistsByNumber(ctx context.Context, number, location string) (bool, error)
}
