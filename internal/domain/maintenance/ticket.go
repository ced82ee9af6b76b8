package maintenance

import (
	"strings"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
)

// TicketPriority represents how urgent a maintenance ticket is
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Low"
	PriorityMedium TicketPriority = "Medium"
	PriorityHigh   TicketPriority = "High"
	PriorityUrgent TicketPriority = "Urgent"
)

// IsValid returns true if the priority is a known TicketPriority
func (p TicketPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// TicketStatus represents the lifecycle state of a maintenance ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "InProgress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusCancelled  TicketStatus = "Cancelled"
)

// Ticket represents a maintenance request against a unit
type Ticket struct {
	shared.BaseAggregateRoot
	TenantID    *uuid.UUID
	UnitID      *uuid.UUID
	Title       string
	Description string
	Priority    TicketPriority
	Status      TicketStatus
	Resolution  string
}

// NewTicket creates an open maintenance ticket
func NewTicket(tenantID, unitID *uuid.UUID, title, description string, priority TicketPriority) (*Ticket, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Ticket title cannot be empty")
	}
	if !priority.IsValid() {
		priority = PriorityMedium
	}

	return &Ticket{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		UnitID:            unitID,
		Title:             title,
		Description:       description,
		Priority:          priority,
		Status:            TicketStatusOpen,
	}, nil
}

// Start moves the ticket to in-progress
func (t *Ticket) Start() error {
	if t.Status != TicketStatusOpen {
		return shared.NewDomainError("INVALID_TICKET_STATE", "Only open tickets can be started")
	}
	t.Status = TicketStatusInProgress
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Resolve closes the ticket with a resolution note
func (t *Ticket) Resolve(resolution string) error {
	if t.Status != TicketStatusOpen && t.Status != TicketStatusInProgress {
		return shared.NewDomainError("INVALID_TICKET_STATE", "Ticket is already closed")
	}
	t.Status = TicketStatusResolved
	t.Resolution = resolution
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Cancel closes the ticket without work being done
func (t *Ticket) Cancel() error {
	if t.Status == TicketStatusResolved || t.Status == TicketStatusCancelled {
		return shared.NewDomainError("INVALID_TICKET_STATE", "Ticket is already closed")
	}
	t.Status = TicketStatusCancelled
	t.Touch()
	t.IncrementVersion()
	return nil
}

// IsClosed returns true when no further work is expected
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusCancelled
}
