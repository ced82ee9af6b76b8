package models

import (
	"github.com/google/uuid"

	"github.com/leasehold/backend/internal/domain/maintenance"
)

// TicketModel is the persistence model for the Ticket domain entity.
type TicketModel struct {
	AggregateModel
	TenantID    *uuid.UUID                 `gorm:"type:uuid;index"`
	UnitID      *uuid.UUID                 `gorm:"type:uuid;index"`
	Title       string                     `gorm:"type:varchar(200);not null"`
	Description string                     `gorm:"type:text"`
	Priority    maintenance.TicketPriority `gorm:"type:varchar(20);not null;default:'Medium'"`
	Status      maintenance.TicketStatus   `gorm:"type:varchar(20);not null;default:'Open';index"`
	Resolution  string                     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TicketModel) TableName() string {
	return "maintenance_tickets"
}

// ToDomain converts the persistence model to a domain Ticket entity.
func (m *TicketModel) ToDomain() *maintenance.Ticket {
	return &maintenance.Ticket{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenantID:          m.TenantID,
		UnitID:            m.UnitID,
		Title:             m.Title,
		Description:       m.Description,
		Priority:          m.Priority,
		Status:            m.Status,
		Resolution:        m.Resolution,
	}
}

// FromDomain populates the persistence model from a domain Ticket entity.
func (m *TicketModel) FromDomain(t *maintenance.Ticket) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.TenantID = t.TenantID
	m.UnitID = t.UnitID
	m.Title = t.Title
	m.Description = t.Description
	m.Priority = t.Priority
	m.Status = t.Status
	m.Resolution = t.Resolution
}

// TicketModelFromDomain creates a new persistence model from a domain Ticket entity.
func TicketModelFromDomain(t *maintenance.Ticket) *TicketModel {
	m := &TicketModel{}
	m.FromDomain(t)
	return m
}
