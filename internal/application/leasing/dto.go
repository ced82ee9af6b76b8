package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/infrastructure/auth"
)

// CreateTenantRequest is the input for creating a tenant. A unit may be
// assigned at creation time; frequency is required when a unit is given.
type CreateTenantRequest struct {
	Name      string     `json:"name" binding:"required,max=200"`
	Email     string     `json:"email" binding:"required,email"`
	Phone     string     `json:"phone"`
	UnitID    *uuid.UUID `json:"unit_id"`
	Frequency string     `json:"frequency"`
}

// UpdateTenantRequest is the input for updating tenant contact details
type UpdateTenantRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// AssignUnitRequest is the input for placing a tenant into a unit
type AssignUnitRequest struct {
	UnitID    uuid.UUID `json:"unit_id" binding:"required"`
	Frequency string    `json:"frequency" binding:"required"`
}

// TenantResponse is the API representation of a tenant
type TenantResponse struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	UnitID           *uuid.UUID      `json:"unit_id,omitempty"`
	RentAmount       decimal.Decimal `json:"rent_amount"`
	PaymentFrequency string          `json:"payment_frequency,omitempty"`
	Balance          decimal.Decimal `json:"balance"`
	NextDueDate      *time.Time      `json:"next_due_date,omitempty"`
	LastPaymentDate  *time.Time      `json:"last_payment_date,omitempty"`
	BillingStatus    string          `json:"billing_status"`
	HasPortalAccess  bool            `json:"has_portal_access"`
	Archived         bool            `json:"archived"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TenantListFilter carries list query options from the handler
type TenantListFilter struct {
	Page          int
	PageSize      int
	OrderBy       string
	OrderDir      string
	Search        string
	BillingStatus string
	UnitID        *uuid.UUID
	Archived      *bool
}

// CreateUnitRequest is the input for creating a unit
type CreateUnitRequest struct {
	Number     string          `json:"number" binding:"required,max=50"`
	Location   string          `json:"location" binding:"max=200"`
	RentAmount decimal.Decimal `json:"rent_amount" binding:"required"`
	Notes      string          `json:"notes"`
}

// UpdateUnitRequest is the input for updating a unit
type UpdateUnitRequest struct {
	Number     string          `json:"number" binding:"required,max=50"`
	Location   string          `json:"location" binding:"max=200"`
	RentAmount decimal.Decimal `json:"rent_amount" binding:"required"`
	Notes      string          `json:"notes"`
}

// UnitResponse is the API representation of a unit
type UnitResponse struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	Location   string          `json:"location,omitempty"`
	RentAmount decimal.Decimal `json:"rent_amount"`
	Status     string          `json:"status"`
	TenantID   *uuid.UUID      `json:"tenant_id,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// UnitListFilter carries list query options from the handler
type UnitListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Status   string
	Location string
}

// PortalLoginRequest is the input for tenant portal login
type PortalLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// PortalLoginResponse is returned on successful portal login
type PortalLoginResponse struct {
	Tokens *auth.TokenPair `json:"tokens"`
	Tenant TenantResponse  `json:"tenant"`
}

// PasswordResetRequest is the input for requesting a reset token
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// PasswordResetConfirm is the input for completing a password reset
type PasswordResetConfirm struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// SetPasswordRequest is the input for staff-driven portal password setup
type SetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// ToTenantResponse converts a domain tenant to its API representation
func ToTenantResponse(t *leasing.Tenant) TenantResponse {
	resp := TenantResponse{
		ID:               t.ID,
		Name:             t.Name,
		Email:            t.Email,
		Phone:            t.Phone,
		UnitID:           t.UnitID,
		RentAmount:       t.RentAmount,
		PaymentFrequency: string(t.PaymentFrequency),
		Balance:          t.Balance,
		LastPaymentDate:  t.LastPaymentDate,
		BillingStatus:    string(t.BillingStatus),
		HasPortalAccess:  t.HasPortalAccess(),
		Archived:         t.Archived,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	if !t.NextDueDate.IsZero() {
		due := t.NextDueDate
		resp.NextDueDate = &due
	}
	return resp
}

// ToTenantResponses converts a slice of domain tenants
func ToTenantResponses(tenants []leasing.Tenant) []TenantResponse {
	responses := make([]TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = ToTenantResponse(&tenants[i])
	}
	return responses
}

// ToUnitResponse converts a domain unit to its API representation
func ToUnitResponse(u *leasing.Unit) UnitResponse {
	return UnitResponse{
		ID:         u.ID,
		Number:     u.Number,
		Location:   u.Location,
		RentAmount: u.RentAmount,
		Status:     string(u.Status),
		TenantID:   u.TenantID,
		Notes:      u.Notes,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// ToUnitResponses converts a slice of domain units
func ToUnitResponses(units []leasing.Unit) []UnitResponse {
	responses := make([]UnitResponse, len(units))
	for i := range units {
		responses[i] = ToUnitResponse(&units[i])
	}
	return responses
}
