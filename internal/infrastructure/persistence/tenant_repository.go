package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/persistence/models"
)

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a tenant by email
func (r *GormTenantRepository) FindByEmail(ctx context.Context, email string) (*leasing.Tenant, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var model models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all tenants matching the filter
func (r *GormTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]leasing.Tenant, error) {
	var tenantModels []models.TenantModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TenantModel{}), filter)

	if err := query.Find(&tenantModels).Error; err != nil {
		return nil, err
	}

	tenants := make([]leasing.Tenant, len(tenantModels))
	for i, model := range tenantModels {
		tenants[i] = *model.ToDomain()
	}
	return tenants, nil
}

// FindOverdueCandidates finds active tenants whose due date has passed but
// whose billing status has not yet been flipped to Overdue. Archived tenants
// and tenants with nothing outstanding are excluded.
func (r *GormTenantRepository) FindOverdueCandidates(ctx context.Context, asOf time.Time) ([]leasing.Tenant, error) {
	var tenantModels []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("next_due_date < ? AND billing_status <> ? AND archived = ? AND balance > 0",
			asOf, leasing.BillingStatusOverdue, false).
		Find(&tenantModels).Error; err != nil {
		return nil, err
	}

	tenants := make([]leasing.Tenant, len(tenantModels))
	for i, model := range tenantModels {
		tenants[i] = *model.ToDomain()
	}
	return tenants, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *leasing.Tenant) error {
	model := models.TenantModelFromDomain(tenant)
	return r.db.WithContext(ctx).Save(model).Error
}

// tenantLockedColumns lists every mutable tenant column. A bare struct
// update would skip zero values, silently dropping a reset login counter,
// a cleared lock_until, a consumed reset token or a released unit_id.
var tenantLockedColumns = []string{
	"updated_at", "version", "name", "email", "phone", "unit_id",
	"rent_amount", "payment_frequency", "balance", "next_due_date",
	"last_payment_date", "billing_status", "password_hash",
	"login_attempts", "lock_until", "reset_token", "reset_token_expires",
	"archived",
}

// SaveWithLock saves a tenant with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormTenantRepository) SaveWithLock(ctx context.Context, tenant *leasing.Tenant) error {
	model := models.TenantModelFromDomain(tenant)
	result := r.db.WithContext(ctx).
		Model(model).
		Select(tenantLockedColumns).
		Where("id = ? AND version = ?", tenant.ID, tenant.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The tenant record has been modified by another transaction")
	}
	return nil
}

// Delete deletes a tenant
func (r *GormTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TenantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts tenants matching the filter
func (r *GormTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TenantModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks if a tenant with the given email exists
func (r *GormTenantRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TenantModel{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormTenantRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	orderBy := ValidateSortField(filter.OrderBy, TenantSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" {
		query = query.Order("name ASC")
	} else {
		query = query.Order(orderBy + " " + orderDir)
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTenantRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "billing_status":
			query = query.Where("billing_status = ?", value)
		case "unit_id":
			query = query.Where("unit_id = ?", value)
		case "archived":
			query = query.Where("archived = ?", value)
		case "has_balance":
			if value == true {
				query = query.Where("balance > 0")
			} else {
				query = query.Where("balance = 0")
			}
		}
	}

	// Archived tenants are hidden unless explicitly requested
	if _, ok := filter.Filters["archived"]; !ok {
		query = query.Where("archived = ?", false)
	}

	return query
}

// Ensure GormTenantRepository implements TenantRepository
var _ leasing.TenantRepository = (*GormTenantRepository)(nil)
