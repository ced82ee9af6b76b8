package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/notification"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockTenantRepository is a mock implementation of leasing.TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByEmail(ctx context.Context, email string) (*leasing.Tenant, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]leasing.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]leasing.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]leasing.Tenant, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]leasing.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *leasing.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) SaveWithLock(ctx context.Context, tenant *leasing.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTenantRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockUnitRepository is a mock implementation of leasing.UnitRepository
type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindByNumber(ctx context.Context, number, location string) (*leasing.Unit, error) {
	args := m.Called(ctx, number, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]leasing.Unit, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindAvailable(ctx context.Context, filter shared.Filter) ([]leasing.Unit, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *MockUnitRepository) Save(ctx context.Context, unit *leasing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) SaveWithLock(ctx context.Context, unit *leasing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUnitRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUnitRepository) ExistsByNumber(ctx context.Context, number, location string) (bool, error) {
	args := m.Called(ctx, number, location)
	return args.Bool(0), args.Error(1)
}

// MockSweeper is a mock implementation of OverdueSweeper
type MockSweeper struct {
	mock.Mock
}

func (m *MockSweeper) Sweep(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

// MockNotifier is a mock implementation of notification.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, msg notification.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

var (
	_ leasing.TenantRepository = (*MockTenantRepository)(nil)
	_ leasing.UnitRepository   = (*MockUnitRepository)(nil)
	_ OverdueSweeper           = (*MockSweeper)(nil)
	_ notification.Notifier    = (*MockNotifier)(nil)
)
