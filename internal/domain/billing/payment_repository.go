package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
)

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByTenant finds payments for a tenant, most recent first
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// FindByGatewayIntentID finds the payment correlated with a gateway intent
	FindByGatewayIntentID(ctx context.Context, intentID string) (*Payment, error)

	// FindAll finds all payments matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// Count counts payments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByTenant counts payments for a tenant
	CountByTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
