package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leasehold/backend/internal/domain/maintenance"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/persistence/models"
)

// GormTicketRepository implements TicketRepository using GORM
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository creates a new GormTicketRepository
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// FindByID finds a ticket by its ID
func (r *GormTicketRepository) FindByID(ctx context.Context, id uuid.UUID) (*maintenance.Ticket, error) {
	var model models.TicketModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all tickets matching the filter
func (r *GormTicketRepository) FindAll(ctx context.Context, filter shared.Filter) ([]maintenance.Ticket, error) {
	var ticketModels []models.TicketModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.TicketModel{}), filter)

	if err := query.Find(&ticketModels).Error; err != nil {
		return nil, err
	}
	return toDomainTickets(ticketModels), nil
}

// FindByTenant finds tickets raised by a tenant
func (r *GormTicketRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]maintenance.Ticket, error) {
	var ticketModels []models.TicketModel
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC")
	if err := paginate(query, filter).Find(&ticketModels).Error; err != nil {
		return nil, err
	}
	return toDomainTickets(ticketModels), nil
}

// FindByUnit finds tickets filed against a unit
func (r *GormTicketRepository) FindByUnit(ctx context.Context, unitID uuid.UUID, filter shared.Filter) ([]maintenance.Ticket, error) {
	var ticketModels []models.TicketModel
	query := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("created_at DESC")
	if err := paginate(query, filter).Find(&ticketModels).Error; err != nil {
		return nil, err
	}
	return toDomainTickets(ticketModels), nil
}

// FindOpen finds tickets that have not been resolved or closed
func (r *GormTicketRepository) FindOpen(ctx context.Context, filter shared.Filter) ([]maintenance.Ticket, error) {
	var ticketModels []models.TicketModel
	query := r.db.WithContext(ctx).
		Where("status IN ?", []maintenance.TicketStatus{
			maintenance.TicketStatusOpen,
			maintenance.TicketStatusInProgress,
		}).
		Order("created_at ASC")
	if err := paginate(query, filter).Find(&ticketModels).Error; err != nil {
		return nil, err
	}
	return toDomainTickets(ticketModels), nil
}

// Save creates or updates a ticket
func (r *GormTicketRepository) Save(ctx context.Context, ticket *maintenance.Ticket) error {
	model := models.TicketModelFromDomain(ticket)
	return r.db.WithContext(ctx).Save(model).Error
}

// ticketLockedColumns lists every mutable ticket column so zero-valued
// fields are written like the rest.
var ticketLockedColumns = []string{
	"updated_at", "version", "tenant_id", "unit_id", "title",
	"description", "priority", "status", "resolution",
}

// SaveWithLock saves a ticket with optimistic locking (version check)
func (r *GormTicketRepository) SaveWithLock(ctx context.Context, ticket *maintenance.Ticket) error {
	model := models.TicketModelFromDomain(ticket)
	result := r.db.WithContext(ctx).
		Model(model).
		Select(ticketLockedColumns).
		Where("id = ? AND version = ?", ticket.ID, ticket.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The ticket record has been modified by another transaction")
	}
	return nil
}

// Delete deletes a ticket
func (r *GormTicketRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TicketModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts tickets matching the filter
func (r *GormTicketRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.TicketModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toDomainTickets(ticketModels []models.TicketModel) []maintenance.Ticket {
	tickets := make([]maintenance.Ticket, len(ticketModels))
	for i, model := range ticketModels {
		tickets[i] = *model.ToDomain()
	}
	return tickets
}

// applyFilter applies filter options to the query
func (r *GormTicketRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, TicketSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormTicketRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "tenant_id":
			query = query.Where("tenant_id = ?", value)
		case "unit_id":
			query = query.Where("unit_id = ?", value)
		}
	}

	return query
}

// Ensure GormTicketRepository implements TicketRepository
var _ maintenance.TicketRepository = (*GormTicketRepository)(nil)
