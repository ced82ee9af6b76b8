package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
)

// TenantRepository defines the interface for tenant persistence
type TenantRepository interface {
	// FindByID finds a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByEmail finds a tenant by email (portal login identifier)
	FindByEmail(ctx context.Context, email string) (*Tenant, error)

	// FindAll finds all tenants matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)

	// FindOverdueCandidates finds active tenants whose due date has passed
	// but whose billing status has not yet been flipped to Overdue
	FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error

	// SaveWithLock saves a tenant with optimistic locking (version check)
	SaveWithLock(ctx context.Context, tenant *Tenant) error

	// Delete deletes a tenant
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts tenants matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByEmail checks if a tenant with the given email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
