package billing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/billing"
	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// webhookIdempotencyTTL bounds how long processed webhook event IDs are
// remembered. Gateway retries arrive within hours, not days.
const webhookIdempotencyTTL = 48 * time.Hour

// GatewayPaymentService drives online payments: it creates payment intents
// at the gateway and settles them when the webhook confirms.
type GatewayPaymentService struct {
	gateway     billing.PaymentGateway
	paymentRepo billing.PaymentRepository
	tenantRepo  leasing.TenantRepository
	idempotency shared.IdempotencyStore
}

// NewGatewayPaymentService creates a new GatewayPaymentService
func NewGatewayPaymentService(
	gateway billing.PaymentGateway,
	paymentRepo billing.PaymentRepository,
	tenantRepo leasing.TenantRepository,
	idempotency shared.IdempotencyStore,
) *GatewayPaymentService {
	return &GatewayPaymentService{
		gateway:     gateway,
		paymentRepo: paymentRepo,
		tenantRepo:  tenantRepo,
		idempotency: idempotency,
	}
}

// CreateIntent opens a payment intent at the gateway and stores a Pending
// payment correlated by intent ID. The tenant's balance is untouched until
// the webhook confirms settlement.
func (s *GatewayPaymentService) CreateIntent(ctx context.Context, req CreateIntentRequest) (*IntentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "gateway_payment", "create_intent",
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
	if req.Amount <= 0 {
		return nil, shared.ErrInvalidAmount
	}

	// The request carries the amount in gateway minor units; the payment
	// record and the tenant balance work in major units.
	amount := billing.FromMinorUnits(req.Amount)

	intent, err := s.gateway.CreateIntent(ctx, billing.CreateIntentInput{
		Amount:      amount,
		Currency:    req.Currency,
		Description: "Rent payment for " + tenant.Name,
		Metadata: map[string]string{
			"tenant_id": tenant.ID.String(),
		},
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payment, err := billing.NewGatewayPayment(tenant.ID, tenant.UnitID, amount, intent.ID, req.Notes, intent.CreatedAt)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrIntentID, intent.ID)
	logger.L(ctx).Info("Payment intent created",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("intent_id", intent.ID),
		zap.String("amount", amount.String()),
	)

	return &IntentResponse{
		PaymentID:   payment.ID,
		IntentID:    intent.ID,
		ClientKey:   intent.ClientKey,
		CheckoutURL: intent.CheckoutURL,
		Amount:      amount,
		Currency:    intent.Currency,
		Status:      string(payment.Status),
	}, nil
}

// VerifySignature checks the webhook signature header against the raw body.
// The handler calls this before parsing so forged deliveries are rejected
// with no side effects.
func (s *GatewayPaymentService) VerifySignature(payload []byte, signatureHeader string) error {
	return s.gateway.VerifyWebhookSignature(payload, signatureHeader)
}

// HandleWebhook processes a verified gateway delivery. The method is
// deliberately ack-friendly: duplicates, unknown intents and already settled
// payments all return nil so the gateway stops retrying. Only genuine
// processing failures (storage errors) propagate.
func (s *GatewayPaymentService) HandleWebhook(ctx context.Context, payload []byte) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "gateway_payment", "handle_webhook")
	defer span.End()

	event, err := s.gateway.ParseWebhook(payload)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrEventType, event.Type,
		telemetry.SpanAttrIntentID, event.IntentID,
	)

	claimed := false
	if s.idempotency != nil && event.ID != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, event.ID, webhookIdempotencyTTL)
		if err != nil {
			// Degrade to the domain-level guard rather than failing the ack
			logger.L(ctx).Warn("Webhook idempotency store unavailable", zap.Error(err))
		} else if !fresh {
			logger.L(ctx).Debug("Duplicate webhook event ignored", zap.String("event_id", event.ID))
			return nil
		} else {
			claimed = true
		}
	}

	var procErr error
	switch event.Type {
	case billing.EventPaymentPaid:
		procErr = s.settlePayment(ctx, event)
	case billing.EventPaymentFailed:
		procErr = s.failPayment(ctx, event)
	default:
		logger.L(ctx).Debug("Ignoring webhook event type", zap.String("event_type", event.Type))
		return nil
	}

	// A failed settlement makes the gateway retry with the same event ID,
	// so the claim has to be released or every retry is dropped as a
	// duplicate and the payment is never applied.
	if procErr != nil && claimed {
		if relErr := s.idempotency.Release(ctx, event.ID); relErr != nil {
			logger.L(ctx).Warn("Failed to release webhook idempotency claim",
				zap.String("event_id", event.ID),
				zap.Error(relErr),
			)
		}
	}
	return procErr
}

func (s *GatewayPaymentService) settlePayment(ctx context.Context, event *billing.WebhookEvent) error {
	payment, err := s.paymentRepo.FindByGatewayIntentID(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The intent was never recorded here (test event or another
			// environment). Ack so the gateway stops redelivering.
			logger.L(ctx).Warn("Webhook for unknown payment intent acknowledged",
				zap.String("intent_id", event.IntentID),
			)
			return nil
		}
		return err
	}

	occurredAt := event.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	if err := payment.MarkPaid(event.ReceiptURL, occurredAt); err != nil {
		if errors.Is(err, billing.ErrAlreadyPaid) {
			logger.L(ctx).Debug("Payment already settled, webhook acknowledged",
				zap.String("payment_id", payment.ID.String()),
			)
			return nil
		}
		return err
	}

	// Settle the tenant before persisting the Paid payment row, same order
	// as the manual path. A failed tenant write then leaves the stored
	// payment Pending, so the gateway's retry reprocesses the event in full
	// instead of bouncing off the already-paid guard.
	tenant, err := s.tenantRepo.FindByID(ctx, payment.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Tenant was deleted after the intent was created. The payment
			// record stands on its own for reconciliation.
			logger.L(ctx).Warn("Settled payment has no tenant",
				zap.String("payment_id", payment.ID.String()),
			)
			return s.paymentRepo.Save(ctx, payment)
		}
		return err
	}

	if err := tenant.ApplyPayment(payment.Amount, occurredAt, time.Now()); err != nil {
		return err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return err
	}

	logger.L(ctx).Info("Gateway payment settled",
		zap.String("payment_id", payment.ID.String()),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("billing_status", string(tenant.BillingStatus)),
	)
	return nil
}

func (s *GatewayPaymentService) failPayment(ctx context.Context, event *billing.WebhookEvent) error {
	payment, err := s.paymentRepo.FindByGatewayIntentID(ctx, event.IntentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.L(ctx).Warn("Failure webhook for unknown payment intent acknowledged",
				zap.String("intent_id", event.IntentID),
			)
			return nil
		}
		return err
	}

	if err := payment.MarkFailed(event.FailReason); err != nil {
		if errors.Is(err, billing.ErrAlreadyPaid) {
			// A paid payment never transitions to failed; late failure
			// deliveries are acknowledged and dropped.
			return nil
		}
		return err
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return err
	}

	logger.L(ctx).Info("Gateway payment failed",
		zap.String("payment_id", payment.ID.String()),
		zap.String("reason", event.FailReason),
	)
	return nil
}

// FindPendingIntent returns the pending payment for an intent, if any.
// The portal uses this to poll settlement status.
func (s *GatewayPaymentService) FindPendingIntent(ctx context.Context, intentID string) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByGatewayIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}
