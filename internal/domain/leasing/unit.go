package leasing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitStatus represents the occupancy state of a rental unit
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "Available"
	UnitStatusOccupied    UnitStatus = "Occupied"
	UnitStatusMaintenance UnitStatus = "Maintenance"
)

// Unit represents a rentable unit in a property
type Unit struct {
	shared.BaseAggregateRoot
	Number     string
	Location   string
	RentAmount decimal.Decimal
	Status     UnitStatus
	TenantID   *uuid.UUID
	Notes      string
}

// NewUnit creates a new available unit
func NewUnit(number, location string, rentAmount decimal.Decimal) (*Unit, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_UNIT_NUMBER", "Unit number cannot be empty")
	}
	if rentAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RENT", "Rent amount cannot be negative")
	}

	return &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Location:          strings.TrimSpace(location),
		RentAmount:        rentAmount,
		Status:            UnitStatusAvailable,
	}, nil
}

// Occupy assigns a tenant to the unit. Only available units can be occupied.
func (u *Unit) Occupy(tenantID uuid.UUID) error {
	switch u.Status {
	case UnitStatusOccupied:
		return shared.ErrUnitOccupied
	case UnitStatusMaintenance:
		return shared.NewDomainError("UNIT_IN_MAINTENANCE", "Unit is under maintenance")
	}

	u.Status = UnitStatusOccupied
	u.TenantID = &tenantID
	u.Touch()
	u.IncrementVersion()
	return nil
}

// Release frees the unit from its tenant
func (u *Unit) Release() error {
	if u.Status != UnitStatusOccupied {
		return shared.NewDomainError("UNIT_NOT_OCCUPIED", "Unit has no tenant to release")
	}
	u.Status = UnitStatusAvailable
	u.TenantID = nil
	u.Touch()
	u.IncrementVersion()
	return nil
}

// StartMaintenance takes an available unit out of the rentable pool
func (u *Unit) StartMaintenance() error {
	if u.Status != UnitStatusAvailable {
		return shared.NewDomainError("UNIT_NOT_AVAILABLE", "Only available units can enter maintenance")
	}
	u.Status = UnitStatusMaintenance
	u.Touch()
	u.IncrementVersion()
	return nil
}

// CompleteMaintenance returns a unit to the rentable pool
func (u *Unit) CompleteMaintenance() error {
	if u.Status != UnitStatusMaintenance {
		return shared.NewDomainError("UNIT_NOT_IN_MAINTENANCE", "Unit is not under maintenance")
	}
	u.Status = UnitStatusAvailable
	u.Touch()
	u.IncrementVersion()
	return nil
}

// UpdateDetails updates the unit's descriptive fields and rent.
// Changing rent does not retroactively touch assigned tenants; their rent was
// snapshotted at assignment time.
func (u *Unit) UpdateDetails(number, location string, rentAmount decimal.Decimal, notes string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewDomainError("INVALID_UNIT_NUMBER", "Unit number cannot be empty")
	}
	if rentAmount.IsNegative() {
		return shared.NewDomainError("INVALID_RENT", "Rent amount cannot be negative")
	}
	u.Number = number
	u.Location = strings.TrimSpace(location)
	u.RentAmount = rentAmount
	u.Notes = notes
	u.Touch()
	u.IncrementVersion()
	return nil
}

// IsAvailable returns true when the unit can take a tenant
func (u *Unit) IsAvailable() bool {
	return u.Status == UnitStatusAvailable
}
