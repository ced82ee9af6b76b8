package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/persistence/models"
)

// GormUnitRepository implements UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a unit by its number within a location
func (r *GormUnitRepository) FindByNumber(ctx context.Context, number, location string) (*leasing.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("number = ? AND location = ?", number, location).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all units matching the filter
func (r *GormUnitRepository) FindAll(ctx context.Context, filter shared.Filter) ([]leasing.Unit, error) {
	var unitModels []models.UnitModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.UnitModel{}), filter)

	if err := query.Find(&unitModels).Error; err != nil {
		return nil, err
	}

	units := make([]leasing.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// FindAvailable finds units currently available for assignment
func (r *GormUnitRepository) FindAvailable(ctx context.Context, filter shared.Filter) ([]leasing.Unit, error) {
	var unitModels []models.UnitModel
	query := r.db.WithContext(ctx).
		Model(&models.UnitModel{}).
		Where("status = ?", leasing.UnitStatusAvailable).
		Order("location ASC, number ASC")

	if err := paginate(query, filter).Find(&unitModels).Error; err != nil {
		return nil, err
	}

	units := make([]leasing.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// Save creates or updates a unit
func (r *GormUnitRepository) Save(ctx context.Context, unit *leasing.Unit) error {
	model := models.UnitModelFromDomain(unit)
	return r.db.WithContext(ctx).Save(model).Error
}

// unitLockedColumns lists every mutable unit column so zero values persist;
// releasing a unit sets tenant_id to NULL, which a struct update would skip.
var unitLockedColumns = []string{
	"updated_at", "version", "number", "location", "rent_amount",
	"status", "tenant_id", "notes",
}

// SaveWithLock saves a unit with optimistic locking (version check)
func (r *GormUnitRepository) SaveWithLock(ctx context.Context, unit *leasing.Unit) error {
	model := models.UnitModelFromDomain(unit)
	result := r.db.WithContext(ctx).
		Model(model).
		Select(unitLockedColumns).
		Where("id = ? AND version = ?", unit.ID, unit.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The unit record has been modified by another transaction")
	}
	return nil
}

// Delete deletes a unit
func (r *GormUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.UnitModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts units matching the filter
func (r *GormUnitRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.UnitModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if a unit with the given number exists at a location
func (r *GormUnitRepository) ExistsByNumber(ctx context.Context, number, location string) (bool, error) {
	if number == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UnitModel{}).
		Where("number = ? AND location = ?", number, location).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter options to the query
func (r *GormUnitRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, UnitSortFields, "number")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" {
		query = query.Order("location ASC, number ASC")
	} else {
		query = query.Order(orderBy + " " + orderDir)
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormUnitRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("number ILIKE ? OR location ILIKE ? OR notes ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "location":
			query = query.Where("location = ?", value)
		case "tenant_id":
			query = query.Where("tenant_id = ?", value)
		case "vacant":
			if value == true {
				query = query.Where("tenant_id IS NULL")
			} else {
				query = query.Where("tenant_id IS NOT NULL")
			}
		}
	}

	return query
}

// Ensure GormUnitRepository implements UnitRepository
var _ leasing.UnitRepository = (*GormUnitRepository)(nil)
