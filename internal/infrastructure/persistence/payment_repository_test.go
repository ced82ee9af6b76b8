package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasehold/backend/internal/domain/billing"
	"github.com/leasehold/backend/internal/domain/shared"
)

func newPaymentRepoWithMock(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock) {
	db, mock, mockDB := mockDatabase(t)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewGormPaymentRepository(db.DB), mock
}

func TestGormPaymentRepository_FindByGatewayIntentID(t *testing.T) {
	t.Run("returns payment correlated with intent", func(t *testing.T) {
		repo, mock := newPaymentRepoWithMock(t)
		id := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "amount", "method", "status", "gateway_intent_id"}).
			AddRow(id, tenantID, "2500.00", "GCash", "Pending", "pi_abc123")

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE gateway_intent_id = \$1 ORDER BY "payments"\."id" LIMIT \$2`).
			WithArgs("pi_abc123", 1).
			WillReturnRows(rows)

		payment, err := repo.FindByGatewayIntentID(context.Background(), "pi_abc123")
		require.NoError(t, err)
		assert.Equal(t, "pi_abc123", payment.GatewayIntentID)
		assert.Equal(t, billing.PaymentStatusPending, payment.Status)
		assert.Equal(t, tenantID, payment.TenantID)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unknown intent to ErrNotFound", func(t *testing.T) {
		repo, mock := newPaymentRepoWithMock(t)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE gateway_intent_id = \$1`).
			WithArgs("pi_unknown", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		payment, err := repo.FindByGatewayIntentID(context.Background(), "pi_unknown")
		assert.Nil(t, payment)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("empty intent short-circuits to ErrNotFound without a query", func(t *testing.T) {
		repo, _ := newPaymentRepoWithMock(t)

		payment, err := repo.FindByGatewayIntentID(context.Background(), "")
		assert.Nil(t, payment)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPaymentRepository_FindByTenant(t *testing.T) {
	t.Run("scopes query to tenant and orders by payment date", func(t *testing.T) {
		repo, mock := newPaymentRepoWithMock(t)
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "amount", "status"}).
			AddRow(uuid.New(), tenantID, "1000.00", "Paid").
			AddRow(uuid.New(), tenantID, "500.00", "Paid")

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
			WithArgs(tenantID, 20).
			WillReturnRows(rows)

		payments, err := repo.FindByTenant(context.Background(), tenantID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.Equal(t, tenantID, payments[0].TenantID)
	})
}

func TestGormPaymentRepository_CountByTenant(t *testing.T) {
	t.Run("counts rows for tenant", func(t *testing.T) {
		repo, mock := newPaymentRepoWithMock(t)
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payments" WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		count, err := repo.CountByTenant(context.Background(), tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
	})
}
