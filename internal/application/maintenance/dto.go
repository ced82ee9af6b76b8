package maintenance

import (
	"time"

	"github.com/google/uuid"

	"github.com/leasehold/backend/internal/domain/maintenance"
)

// CreateTicketRequest is the input for opening a maintenance ticket
type CreateTicketRequest struct {
	TenantID    *uuid.UUID `json:"tenant_id"`
	UnitID      *uuid.UUID `json:"unit_id"`
	Title       string     `json:"title" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	Priority    string     `json:"priority"`
}

// ResolveTicketRequest is the input for resolving a ticket
type ResolveTicketRequest struct {
	Resolution string `json:"resolution" binding:"max=2000"`
}

// TicketResponse is the API representation of a maintenance ticket
type TicketResponse struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    *uuid.UUID `json:"tenant_id,omitempty"`
	UnitID      *uuid.UUID `json:"unit_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Resolution  string     `json:"resolution,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TicketListFilter carries list query options from the handler
type TicketListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   string
	Priority string
	TenantID *uuid.UUID
	UnitID   *uuid.UUID
	OpenOnly bool
}

// ToTicketResponse converts a domain ticket to its API representation
func ToTicketResponse(t *maintenance.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		TenantID:    t.TenantID,
		UnitID:      t.UnitID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		Resolution:  t.Resolution,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// ToTicketResponses converts a slice of domain tickets
func ToTicketResponses(tickets []maintenance.Ticket) []TicketResponse {
	responses := make([]TicketResponse, len(tickets))
	for i := range tickets {
		responses[i] = ToTicketResponse(&tickets[i])
	}
	return responses
}
