package leasing

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// BillingStatus represents the tenant's billing state for the current cycle
type BillingStatus string

const (
	BillingStatusPending BillingStatus = "Pending"
	BillingStatusPartial BillingStatus = "Partial"
	BillingStatusPaid    BillingStatus = "Paid"
	BillingStatusOverdue BillingStatus = "Overdue"
)

// PaymentFrequency represents how often rent falls due
type PaymentFrequency string

const (
	FrequencyMonthly   PaymentFrequency = "Monthly"
	FrequencyQuarterly PaymentFrequency = "Quarterly"
	FrequencyYearly    PaymentFrequency = "Yearly"
)

const bcryptCost = 12

// Tenant represents a renter and their billing state.
// It is the aggregate root for leasing operations; the outstanding balance,
// next due date and billing status all live here and are mutated together.
type Tenant struct {
	shared.BaseAggregateRoot
	Name              string
	Email             string
	Phone             string
	UnitID            *uuid.UUID
	RentAmount        decimal.Decimal
	PaymentFrequency  PaymentFrequency
	Balance           decimal.Decimal
	NextDueDate       time.Time
	LastPaymentDate   *time.Time
	BillingStatus     BillingStatus
	PasswordHash      string
	LoginAttempts     int
	LockUntil         *time.Time
	ResetToken        string
	ResetTokenExpires *time.Time
	Archived          bool
}

// NewTenant creates a new tenant with no unit and a zero balance
func NewTenant(name, email, phone string) (*Tenant, error) {
	if err := validateTenantName(name); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Email:             email,
		Phone:             strings.TrimSpace(phone),
		RentAmount:        decimal.Zero,
		Balance:           decimal.Zero,
		BillingStatus:     BillingStatusPending,
	}, nil
}

// AssignUnit places the tenant into a unit and opens the first billing cycle.
// The unit's rent is snapshotted, the balance is seeded with one period of
// rent and the first due date is one period from now.
func (t *Tenant) AssignUnit(unit *Unit, frequency PaymentFrequency, now time.Time) error {
	if t.Archived {
		return shared.ErrTenantArchived
	}
	if t.UnitID != nil {
		return shared.NewDomainError("TENANT_HAS_UNIT", "Tenant is already assigned to a unit")
	}
	if err := validateFrequency(frequency); err != nil {
		return err
	}

	unitID := unit.ID
	t.UnitID = &unitID
	t.RentAmount = unit.RentAmount
	t.PaymentFrequency = frequency
	t.Balance = unit.RentAmount
	t.NextDueDate = AdvanceDueDate(now, frequency)
	t.BillingStatus = BillingStatusPending
	t.Touch()
	t.IncrementVersion()
	return nil
}

// ReleaseUnit detaches the tenant from their unit
func (t *Tenant) ReleaseUnit() error {
	if t.UnitID == nil {
		return shared.NewDomainError("TENANT_HAS_NO_UNIT", "Tenant is not assigned to a unit")
	}
	t.UnitID = nil
	t.Touch()
	t.IncrementVersion()
	return nil
}

// ApplyPayment applies a payment amount against the outstanding balance and
// resolves the resulting billing status:
//   - the balance never goes below zero, overpayment is absorbed
//   - a cleared balance marks the cycle Paid and advances the due date one period
//   - a remaining balance is Overdue when the due date has passed, Partial otherwise
//
// The balance is not re-seeded with the next cycle's rent here; charging a new
// cycle is a separate bookkeeping action.
func (t *Tenant) ApplyPayment(amount decimal.Decimal, paidAt, now time.Time) error {
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount
	}

	newBalance := t.Balance.Sub(amount)
	if newBalance.IsNegative() {
		newBalance = decimal.Zero
	}
	t.Balance = newBalance

	if newBalance.IsZero() {
		t.BillingStatus = BillingStatusPaid
		t.NextDueDate = AdvanceDueDate(t.NextDueDate, t.PaymentFrequency)
	} else if now.After(t.NextDueDate) {
		t.BillingStatus = BillingStatusOverdue
	} else {
		t.BillingStatus = BillingStatusPartial
	}

	t.LastPaymentDate = &paidAt
	t.Touch()
	t.IncrementVersion()
	return nil
}

// MarkOverdue flips the billing status to Overdue when the due date has
// passed. Returns true if the status changed.
func (t *Tenant) MarkOverdue(now time.Time) bool {
	if t.Archived || t.BillingStatus == BillingStatusOverdue {
		return false
	}
	if !t.Balance.IsPositive() || !now.After(t.NextDueDate) {
		return false
	}
	t.BillingStatus = BillingStatusOverdue
	t.Touch()
	t.IncrementVersion()
	return true
}

// UpdateContact updates the tenant's contact details
func (t *Tenant) UpdateContact(name, email, phone string) error {
	if err := validateTenantName(name); err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	t.Name = strings.TrimSpace(name)
	t.Email = email
	t.Phone = strings.TrimSpace(phone)
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Archive soft-deletes the tenant and drops the unit reference.
// Archived tenants are excluded from the overdue sweep.
func (t *Tenant) Archive() error {
	if t.Archived {
		return shared.NewDomainError("ALREADY_ARCHIVED", "Tenant is already archived")
	}
	t.Archived = true
	t.UnitID = nil
	t.Touch()
	t.IncrementVersion()
	return nil
}

// HasPortalAccess returns true when a portal password has been set
func (t *Tenant) HasPortalAccess() bool {
	return t.PasswordHash != ""
}

// SetPassword hashes and stores a portal password
func (t *Tenant) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	t.PasswordHash = string(hash)
	t.Touch()
	t.IncrementVersion()
	return nil
}

// VerifyPassword checks a portal password against the stored hash
func (t *Tenant) VerifyPassword(password string) bool {
	if t.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(t.PasswordHash), []byte(password)) == nil
}

// IsLocked returns true while a portal login lock is in effect
func (t *Tenant) IsLocked(now time.Time) bool {
	return t.LockUntil != nil && now.Before(*t.LockUntil)
}

// LockRemaining returns how long the portal lock has left to run
func (t *Tenant) LockRemaining(now time.Time) time.Duration {
	if t.LockUntil == nil || !now.Before(*t.LockUntil) {
		return 0
	}
	return t.LockUntil.Sub(now)
}

// RecordLoginFailure records a failed portal login attempt.
// Reaching maxAttempts locks the account for lockDuration and resets the
// counter so the lock expiry starts a fresh window. Returns true if the
// account was locked by this failure.
func (t *Tenant) RecordLoginFailure(maxAttempts int, lockDuration time.Duration, now time.Time) bool {
	t.LoginAttempts++
	t.Touch()
	t.IncrementVersion()

	if t.LoginAttempts >= maxAttempts {
		lockUntil := now.Add(lockDuration)
		t.LockUntil = &lockUntil
		t.LoginAttempts = 0
		return true
	}
	return false
}

// RecordLoginSuccess clears the failure counter and any lock
func (t *Tenant) RecordLoginSuccess() {
	t.LoginAttempts = 0
	t.LockUntil = nil
	t.Touch()
	t.IncrementVersion()
}

// GenerateResetToken creates a password reset token valid for ttl
func (t *Tenant) GenerateResetToken(ttl time.Duration, now time.Time) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expires := now.Add(ttl)
	t.ResetToken = token
	t.ResetTokenExpires = &expires
	t.Touch()
	t.IncrementVersion()
	return token, nil
}

// ConsumeResetToken validates the reset token and sets the new password.
// The token is single-use and cleared on success.
func (t *Tenant) ConsumeResetToken(token, newPassword string, now time.Time) error {
	if t.ResetToken == "" || t.ResetToken != token {
		return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset token is invalid")
	}
	if t.ResetTokenExpires == nil || now.After(*t.ResetTokenExpires) {
		return shared.NewDomainError("RESET_TOKEN_EXPIRED", "Reset token has expired")
	}
	if err := t.SetPassword(newPassword); err != nil {
		return err
	}
	t.ResetToken = ""
	t.ResetTokenExpires = nil
	return nil
}

func validateTenantName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if !strings.Contains(email, "@") || len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func validateFrequency(frequency PaymentFrequency) error {
	switch frequency {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return nil
	default:
		return shared.NewDomainError("INVALID_FREQUENCY", "Payment frequency must be Monthly, Quarterly or Yearly")
	}
}
