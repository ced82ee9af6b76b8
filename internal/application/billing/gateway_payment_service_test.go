package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leasehold/backend/internal/domain/billing"
	"github.com/leasehold/backend/internal/domain/shared"
)

func newGatewayService(gateway *MockPaymentGateway, paymentRepo *MockPaymentRepository, tenantRepo *MockTenantRepository, idempotency *MockIdempotencyStore) *GatewayPaymentService {
	var store shared.IdempotencyStore
	if idempotency != nil {
		store = idempotency
	}
	return NewGatewayPaymentService(gateway, paymentRepo, tenantRepo, store)
}

func TestGatewayPaymentService_CreateIntent(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	tenant := newBilledTenant(t, "12000", time.Now().Add(10*24*time.Hour))
	amount := decimal.RequireFromString("12000")

	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	gateway.On("CreateIntent", mock.Anything, mock.MatchedBy(func(input billing.CreateIntentInput) bool {
		return input.Amount.Equal(amount) && input.Metadata["tenant_id"] == tenant.ID.String()
	})).Return(&billing.PaymentIntent{
		ID:          "pi_test_123",
		ClientKey:   "pi_test_123_client_abc",
		Status:      "awaiting_payment_method",
		Amount:      1200000,
		AmountMajor: amount,
		Currency:    "PHP",
		CheckoutURL: "https://checkout.example.com/pi_test_123",
		CreatedAt:   time.Now(),
	}, nil)
	paymentRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
		return p.GatewayIntentID == "pi_test_123" &&
			p.Status == billing.PaymentStatusPending &&
			p.Amount.Equal(amount)
	})).Return(nil)

	resp, err := service.CreateIntent(context.Background(), CreateIntentRequest{
		TenantID: tenant.ID,
		Amount:   1200000,
	})

	require.NoError(t, err)
	assert.Equal(t, "pi_test_123", resp.IntentID)
	assert.Equal(t, "pi_test_123_client_abc", resp.ClientKey)
	assert.Equal(t, "PHP", resp.Currency)
	assert.Equal(t, string(billing.PaymentStatusPending), resp.Status)
	gateway.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestGatewayPaymentService_MinorUnitsSettlement(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	tenant := newBilledTenant(t, "12000", time.Now().Add(10*24*time.Hour))
	major := decimal.RequireFromString("5000")

	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	gateway.On("CreateIntent", mock.Anything, mock.MatchedBy(func(input billing.CreateIntentInput) bool {
		return input.Amount.Equal(major)
	})).Return(&billing.PaymentIntent{
		ID:        "pi_minor_1",
		Currency:  "PHP",
		CreatedAt: time.Now(),
	}, nil)

	var stored *billing.Payment
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Payment")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*billing.Payment)
	}).Return(nil)

	// A 500000-centavo intent is stored as a 5000-peso pending payment
	_, err := service.CreateIntent(context.Background(), CreateIntentRequest{
		TenantID: tenant.ID,
		Amount:   500000,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Amount.Equal(major))
	assert.Equal(t, billing.PaymentStatusPending, stored.Status)

	payload := []byte(`{"data":{"id":"evt_minor_1"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:       "evt_minor_1",
		Type:     billing.EventPaymentPaid,
		IntentID: "pi_minor_1",
	}, nil)
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_minor_1").Return(stored, nil)
	tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)

	require.NoError(t, service.HandleWebhook(context.Background(), payload))
	assert.Equal(t, billing.PaymentStatusPaid, stored.Status)
	assert.Equal(t, "7000", tenant.Balance.String())
}

func TestGatewayPaymentService_CreateIntent_ArchivedTenant(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	tenant := newBilledTenant(t, "12000", time.Now())
	require.NoError(t, tenant.Archive())
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	_, err := service.CreateIntent(context.Background(), CreateIntentRequest{
		TenantID: tenant.ID,
		Amount:   1200000,
	})

	assert.ErrorIs(t, err, shared.ErrTenantArchived)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestGatewayPaymentService_CreateIntent_NonPositiveAmount(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	tenant := newBilledTenant(t, "12000", time.Now())
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	_, err := service.CreateIntent(context.Background(), CreateIntentRequest{
		TenantID: tenant.ID,
		Amount:   0,
	})

	assert.ErrorIs(t, err, shared.ErrInvalidAmount)
	gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

func TestGatewayPaymentService_HandleWebhook_PaidSettlesTenant(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	idempotency := new(MockIdempotencyStore)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, idempotency)

	nextDue := time.Now().Add(5 * 24 * time.Hour)
	tenant := newBilledTenant(t, "12000", nextDue)
	amount := decimal.RequireFromString("12000")
	payment, err := billing.NewGatewayPayment(tenant.ID, nil, amount, "pi_test_123", "", time.Now())
	require.NoError(t, err)

	payload := []byte(`{"data":{"id":"evt_1"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:         "evt_1",
		Type:       billing.EventPaymentPaid,
		IntentID:   "pi_test_123",
		ReceiptURL: "https://receipts.example.com/r_1",
		OccurredAt: time.Now(),
	}, nil)
	idempotency.On("MarkProcessed", mock.Anything, "evt_1", webhookIdempotencyTTL).Return(true, nil)
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_test_123").Return(payment, nil)
	paymentRepo.On("Save", mock.Anything, payment).Return(nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)

	err = service.HandleWebhook(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPaid, payment.Status)
	assert.Equal(t, "https://receipts.example.com/r_1", payment.ReceiptURL)
	assert.True(t, tenant.Balance.IsZero())
	assert.Equal(t, nextDue.AddDate(0, 1, 0), tenant.NextDueDate)
	tenantRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestGatewayPaymentService_HandleWebhook_DuplicateEvent(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	idempotency := new(MockIdempotencyStore)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, idempotency)

	payload := []byte(`{"data":{"id":"evt_1"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:       "evt_1",
		Type:     billing.EventPaymentPaid,
		IntentID: "pi_test_123",
	}, nil)
	idempotency.On("MarkProcessed", mock.Anything, "evt_1", webhookIdempotencyTTL).Return(false, nil)

	err := service.HandleWebhook(context.Background(), payload)

	require.NoError(t, err)
	paymentRepo.AssertNotCalled(t, "FindByGatewayIntentID", mock.Anything, mock.Anything)
}

func TestGatewayPaymentService_HandleWebhook_FailedSettlementRetries(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	idempotency := new(MockIdempotencyStore)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, idempotency)

	amount := decimal.RequireFromString("5000")
	firstTenant := newBilledTenant(t, "12000", time.Now().Add(5*24*time.Hour))
	firstPayment, err := billing.NewGatewayPayment(firstTenant.ID, nil, amount, "pi_retry_1", "", time.Now())
	require.NoError(t, err)

	// The retried delivery reloads both rows from storage, where the
	// tenant write never landed and the payment is still Pending.
	secondTenant := newBilledTenant(t, "12000", time.Now().Add(5*24*time.Hour))
	secondTenant.ID = firstTenant.ID
	secondPayment, err := billing.NewGatewayPayment(firstTenant.ID, nil, amount, "pi_retry_1", "", time.Now())
	require.NoError(t, err)

	payload := []byte(`{"data":{"id":"evt_retry_1"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:       "evt_retry_1",
		Type:     billing.EventPaymentPaid,
		IntentID: "pi_retry_1",
	}, nil)
	idempotency.On("MarkProcessed", mock.Anything, "evt_retry_1", webhookIdempotencyTTL).Return(true, nil).Twice()
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_retry_1").Return(firstPayment, nil).Once()
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_retry_1").Return(secondPayment, nil).Once()
	tenantRepo.On("FindByID", mock.Anything, firstTenant.ID).Return(firstTenant, nil).Once()
	tenantRepo.On("FindByID", mock.Anything, firstTenant.ID).Return(secondTenant, nil).Once()

	// Transient storage failure on the first delivery: the claim must be
	// released so the gateway's retry is not dropped as a duplicate.
	tenantRepo.On("SaveWithLock", mock.Anything, firstTenant).Return(errors.New("connection reset")).Once()
	idempotency.On("Release", mock.Anything, "evt_retry_1").Return(nil).Once()

	tenantRepo.On("SaveWithLock", mock.Anything, secondTenant).Return(nil).Once()
	paymentRepo.On("Save", mock.Anything, secondPayment).Return(nil).Once()

	require.Error(t, service.HandleWebhook(context.Background(), payload))
	require.NoError(t, service.HandleWebhook(context.Background(), payload))

	assert.Equal(t, billing.PaymentStatusPaid, secondPayment.Status)
	assert.Equal(t, "7000", secondTenant.Balance.String())
	idempotency.AssertExpectations(t)
	tenantRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestGatewayPaymentService_HandleWebhook_UnknownIntentAcked(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	payload := []byte(`{"data":{"id":"evt_2"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:       "evt_2",
		Type:     billing.EventPaymentPaid,
		IntentID: "pi_unknown",
	}, nil)
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_unknown").Return(nil, shared.ErrNotFound)

	err := service.HandleWebhook(context.Background(), payload)

	assert.NoError(t, err)
	tenantRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestGatewayPaymentService_HandleWebhook_AlreadyPaidAcked(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	payment, err := billing.NewGatewayPayment(uuid.New(), nil, decimal.RequireFromString("12000"), "pi_test_123", "", time.Now())
	require.NoError(t, err)
	require.NoError(t, payment.MarkPaid("", time.Now()))

	payload := []byte(`{"data":{"id":"evt_3"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:       "evt_3",
		Type:     billing.EventPaymentPaid,
		IntentID: "pi_test_123",
	}, nil)
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_test_123").Return(payment, nil)

	err = service.HandleWebhook(context.Background(), payload)

	assert.NoError(t, err)
	paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	tenantRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestGatewayPaymentService_HandleWebhook_IdempotencyStoreDown(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	idempotency := new(MockIdempotencyStore)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, idempotency)

	tenant := newBilledTenant(t, "12000", time.Now().Add(24*time.Hour))
	payment, err := billing.NewGatewayPayment(tenant.ID, nil, decimal.RequireFromString("12000"), "pi_test_123", "", time.Now())
	require.NoError(t, err)

	payload := []byte(`{"data":{"id":"evt_4"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:       "evt_4",
		Type:     billing.EventPaymentPaid,
		IntentID: "pi_test_123",
	}, nil)
	// Store failure must not block settlement; MarkPaid is the fallback guard
	idempotency.On("MarkProcessed", mock.Anything, "evt_4", webhookIdempotencyTTL).Return(false, assert.AnError)
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_test_123").Return(payment, nil)
	paymentRepo.On("Save", mock.Anything, payment).Return(nil)
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)

	err = service.HandleWebhook(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPaid, payment.Status)
}

func TestGatewayPaymentService_HandleWebhook_FailedEvent(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	payment, err := billing.NewGatewayPayment(uuid.New(), nil, decimal.RequireFromString("12000"), "pi_test_123", "", time.Now())
	require.NoError(t, err)

	payload := []byte(`{"data":{"id":"evt_5"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:         "evt_5",
		Type:       billing.EventPaymentFailed,
		IntentID:   "pi_test_123",
		FailReason: "card_declined",
	}, nil)
	paymentRepo.On("FindByGatewayIntentID", mock.Anything, "pi_test_123").Return(payment, nil)
	paymentRepo.On("Save", mock.Anything, payment).Return(nil)

	err = service.HandleWebhook(context.Background(), payload)

	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusFailed, payment.Status)
	assert.Equal(t, "card_declined", payment.Notes)
	tenantRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGatewayPaymentService_HandleWebhook_UnhandledEventType(t *testing.T) {
	gateway := new(MockPaymentGateway)
	paymentRepo := new(MockPaymentRepository)
	tenantRepo := new(MockTenantRepository)
	service := newGatewayService(gateway, paymentRepo, tenantRepo, nil)

	payload := []byte(`{"data":{"id":"evt_6"}}`)
	gateway.On("ParseWebhook", payload).Return(&billing.WebhookEvent{
		ID:       "evt_6",
		Type:     "source.chargeable",
		IntentID: "pi_test_123",
	}, nil)

	err := service.HandleWebhook(context.Background(), payload)

	assert.NoError(t, err)
	paymentRepo.AssertNotCalled(t, "FindByGatewayIntentID", mock.Anything, mock.Anything)
}

func TestGatewayPaymentService_VerifySignature(t *testing.T) {
	gateway := new(MockPaymentGateway)
	service := newGatewayService(gateway, new(MockPaymentRepository), new(MockTenantRepository), nil)

	payload := []byte(`{"data":{}}`)
	gateway.On("VerifyWebhookSignature", payload, "t=1,te=abc").Return(nil)

	assert.NoError(t, service.VerifySignature(payload, "t=1,te=abc"))
	gateway.AssertExpectations(t)
}
