package leasing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
)

func newTestUnit(t *testing.T, number, rent string) *leasing.Unit {
	t.Helper()
	unit, err := leasing.NewUnit(number, "Main Building", decimal.RequireFromString(rent))
	require.NoError(t, err)
	return unit
}

func newTestTenant(t *testing.T, email string) *leasing.Tenant {
	t.Helper()
	tenant, err := leasing.NewTenant("Ana Cruz", email, "+63-917-555-0200")
	require.NoError(t, err)
	return tenant
}

func TestTenantService_Create_WithoutUnit(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	tenantRepo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	tenantRepo.On("Save", mock.Anything, mock.AnythingOfType("*leasing.Tenant")).Return(nil)

	resp, err := service.Create(context.Background(), CreateTenantRequest{
		Name:  "Ana Cruz",
		Email: "ana@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", resp.Email)
	assert.True(t, resp.Balance.IsZero())
	assert.Equal(t, string(leasing.BillingStatusPending), resp.BillingStatus)
	assert.Nil(t, resp.NextDueDate)
	unitRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestTenantService_Create_WithUnit(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	unit := newTestUnit(t, "2B", "15000")
	unitID := unit.ID

	tenantRepo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	unitRepo.On("FindByID", mock.Anything, unitID).Return(unit, nil)
	tenantRepo.On("Save", mock.Anything, mock.AnythingOfType("*leasing.Tenant")).Return(nil)
	unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)

	before := time.Now()
	resp, err := service.Create(context.Background(), CreateTenantRequest{
		Name:      "Ana Cruz",
		Email:     "ana@example.com",
		UnitID:    &unitID,
		Frequency: string(leasing.FrequencyMonthly),
	})

	require.NoError(t, err)
	// Assignment seeds one period of rent and sets the first due date out
	assert.Equal(t, "15000", resp.Balance.String())
	require.NotNil(t, resp.NextDueDate)
	assert.WithinDuration(t, before.AddDate(0, 1, 0), *resp.NextDueDate, 5*time.Second)
	assert.Equal(t, leasing.UnitStatusOccupied, unit.Status)
	require.NotNil(t, unit.TenantID)
	assert.Equal(t, resp.ID, *unit.TenantID)
}

func TestTenantService_Create_DuplicateEmail(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	tenantRepo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(true, nil)

	_, err := service.Create(context.Background(), CreateTenantRequest{
		Name:  "Ana Cruz",
		Email: "ana@example.com",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_EMAIL", domainErr.Code)
	tenantRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTenantService_Create_OccupiedUnitRejected(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	unit := newTestUnit(t, "2B", "15000")
	require.NoError(t, unit.Occupy(uuid.New()))
	unitID := unit.ID

	tenantRepo.On("ExistsByEmail", mock.Anything, "ana@example.com").Return(false, nil)
	unitRepo.On("FindByID", mock.Anything, unitID).Return(unit, nil)

	_, err := service.Create(context.Background(), CreateTenantRequest{
		Name:      "Ana Cruz",
		Email:     "ana@example.com",
		UnitID:    &unitID,
		Frequency: string(leasing.FrequencyMonthly),
	})

	assert.ErrorIs(t, err, shared.ErrUnitOccupied)
	tenantRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTenantService_List_RunsSweepFirst(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	sweeper := new(MockSweeper)
	service := NewTenantService(tenantRepo, unitRepo, sweeper)

	sweeper.On("Sweep", mock.Anything, mock.AnythingOfType("time.Time")).Return(2, nil)
	tenantRepo.On("FindAll", mock.Anything, mock.Anything).Return([]leasing.Tenant{}, nil)
	tenantRepo.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

	_, _, err := service.List(context.Background(), TenantListFilter{})

	require.NoError(t, err)
	sweeper.AssertExpectations(t)
}

func TestTenantService_List_SweepFailureDoesNotBlock(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	sweeper := new(MockSweeper)
	service := NewTenantService(tenantRepo, unitRepo, sweeper)

	tenant := newTestTenant(t, "ana@example.com")

	sweeper.On("Sweep", mock.Anything, mock.AnythingOfType("time.Time")).Return(0, assert.AnError)
	tenantRepo.On("FindAll", mock.Anything, mock.Anything).Return([]leasing.Tenant{*tenant}, nil)
	tenantRepo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)

	responses, total, err := service.List(context.Background(), TenantListFilter{})

	require.NoError(t, err)
	assert.Len(t, responses, 1)
	assert.Equal(t, int64(1), total)
}

func TestTenantService_Update_DuplicateEmail(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	tenant := newTestTenant(t, "ana@example.com")

	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	tenantRepo.On("ExistsByEmail", mock.Anything, "taken@example.com").Return(true, nil)

	_, err := service.Update(context.Background(), tenant.ID, UpdateTenantRequest{
		Name:  "Ana Cruz",
		Email: "taken@example.com",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_EMAIL", domainErr.Code)
}

func TestTenantService_Archive_ReleasesUnit(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	unit := newTestUnit(t, "2B", "15000")
	tenant := newTestTenant(t, "ana@example.com")
	require.NoError(t, tenant.AssignUnit(unit, leasing.FrequencyMonthly, time.Now()))
	require.NoError(t, unit.Occupy(tenant.ID))

	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)
	unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)

	err := service.Archive(context.Background(), tenant.ID)

	require.NoError(t, err)
	assert.True(t, tenant.Archived)
	assert.Nil(t, tenant.UnitID)
	assert.Equal(t, leasing.UnitStatusAvailable, unit.Status)
	assert.Nil(t, unit.TenantID)
}

func TestTenantService_AssignUnit(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	unit := newTestUnit(t, "3C", "18000")
	tenant := newTestTenant(t, "ana@example.com")

	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)
	tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)

	resp, err := service.AssignUnit(context.Background(), tenant.ID, AssignUnitRequest{
		UnitID:    unit.ID,
		Frequency: string(leasing.FrequencyQuarterly),
	})

	require.NoError(t, err)
	assert.Equal(t, "18000", resp.Balance.String())
	assert.Equal(t, string(leasing.FrequencyQuarterly), resp.PaymentFrequency)
	assert.Equal(t, leasing.UnitStatusOccupied, unit.Status)
}

func TestTenantService_AssignUnit_TenantAlreadyHoused(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	firstUnit := newTestUnit(t, "2B", "15000")
	secondUnit := newTestUnit(t, "3C", "18000")
	tenant := newTestTenant(t, "ana@example.com")
	require.NoError(t, tenant.AssignUnit(firstUnit, leasing.FrequencyMonthly, time.Now()))

	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	unitRepo.On("FindByID", mock.Anything, secondUnit.ID).Return(secondUnit, nil)

	_, err := service.AssignUnit(context.Background(), tenant.ID, AssignUnitRequest{
		UnitID:    secondUnit.ID,
		Frequency: string(leasing.FrequencyMonthly),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TENANT_HAS_UNIT", domainErr.Code)
	unitRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestTenantService_RemoveUnit(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	unit := newTestUnit(t, "2B", "15000")
	tenant := newTestTenant(t, "ana@example.com")
	require.NoError(t, tenant.AssignUnit(unit, leasing.FrequencyMonthly, time.Now()))
	require.NoError(t, unit.Occupy(tenant.ID))

	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)
	unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)

	resp, err := service.RemoveUnit(context.Background(), tenant.ID)

	require.NoError(t, err)
	assert.Nil(t, resp.UnitID)
	assert.Equal(t, leasing.UnitStatusAvailable, unit.Status)
}

func TestTenantService_RemoveUnit_NoUnit(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := NewTenantService(tenantRepo, unitRepo, nil)

	tenant := newTestTenant(t, "ana@example.com")
	tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	_, err := service.RemoveUnit(context.Background(), tenant.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TENANT_HAS_NO_UNIT", domainErr.Code)
}
