package billing

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/notification"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// OverdueService reconciles billing status with the calendar: tenants whose
// due date has passed with money still owing are flipped to Overdue. The
// scheduler calls it on a timer and tenant list reads call it synchronously,
// both through the same Sweep method.
type OverdueService struct {
	tenantRepo leasing.TenantRepository
	notifier   notification.Notifier
	logger     *zap.Logger
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(tenantRepo leasing.TenantRepository, notifier notification.Notifier, log *zap.Logger) *OverdueService {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &OverdueService{
		tenantRepo: tenantRepo,
		notifier:   notifier,
		logger:     log,
	}
}

// Sweep flips every overdue candidate and returns the number of tenants
// whose status changed. A version conflict on one tenant does not abort the
// sweep; that tenant was just modified concurrently and the next sweep will
// pick it up if it is still overdue.
func (s *OverdueService) Sweep(ctx context.Context, now time.Time) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "overdue_sweep")
	defer span.End()

	candidates, err := s.tenantRepo.FindOverdueCandidates(ctx, now)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	flipped := 0
	for i := range candidates {
		tenant := &candidates[i]
		if !tenant.MarkOverdue(now) {
			continue
		}
		if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
			logger.L(ctx).Warn("Skipping tenant in overdue sweep",
				zap.String("tenant_id", tenant.ID.String()),
				zap.Error(err),
			)
			continue
		}
		flipped++
		s.notifyOverdue(ctx, tenant)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrSweepCount, flipped)
	if flipped > 0 {
		logger.L(ctx).Info("Overdue sweep flipped tenants", zap.Int("count", flipped))
	}
	return flipped, nil
}

// notifyOverdue sends a reminder email on a best-effort basis. A delivery
// failure never fails the sweep.
func (s *OverdueService) notifyOverdue(ctx context.Context, tenant *leasing.Tenant) {
	msg := notification.Message{
		To:      tenant.Email,
		Subject: "Rent payment overdue",
		Body: "Hi " + tenant.Name + ",\n\n" +
			"Your rent payment of " + tenant.Balance.StringFixed(2) +
			" was due on " + tenant.NextDueDate.Format("January 2, 2006") +
			" and is now overdue. Please settle your balance at your earliest convenience.\n",
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		logger.L(ctx).Warn("Overdue notification failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err),
		)
	}
}
