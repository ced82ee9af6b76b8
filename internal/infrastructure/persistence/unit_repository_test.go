package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
)

func newUnitRepoWithMock(t *testing.T) (*GormUnitRepository, sqlmock.Sqlmock) {
	db, mock, mockDB := mockDatabase(t)
	t.Cleanup(func() { _ = mockDB.Close() })
	return NewGormUnitRepository(db.DB), mock
}

func TestGormUnitRepository_SaveWithLock(t *testing.T) {
	t.Run("returns conflict when version does not match", func(t *testing.T) {
		repo, mock := newUnitRepoWithMock(t)

		unit := &leasing.Unit{
			Number:   "12-B",
			Location: "North Tower",
			Status:   leasing.UnitStatusOccupied,
		}
		unit.ID = uuid.New()
		unit.Version = 2

		mock.ExpectExec(`UPDATE "units" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), unit)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
	})

	t.Run("writes the cleared tenant_id when a unit is released", func(t *testing.T) {
		repo, mock := newUnitRepoWithMock(t)

		// Releasing a unit nils tenant_id; the UPDATE must still carry the
		// column or the vacated unit stays linked to its old tenant.
		unit := &leasing.Unit{
			Number:   "12-B",
			Location: "North Tower",
			Status:   leasing.UnitStatusAvailable,
			TenantID: nil,
		}
		unit.ID = uuid.New()
		unit.Version = 3

		mock.ExpectExec(`UPDATE "units" SET .*"status"=.*"tenant_id"=`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), unit)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
