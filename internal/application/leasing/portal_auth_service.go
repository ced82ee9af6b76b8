package leasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/leasing"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/auth"
	"github.com/leasehold/backend/internal/infrastructure/config"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/notification"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// PortalRole is the role claim carried by portal tokens
const PortalRole = "tenant"

// ErrInvalidCredentials is returned for any login failure that must not leak
// which part of the credentials was wrong.
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// PortalAuthService handles tenant portal authentication: login with
// lockout, password setup and the reset-token flow.
type PortalAuthService struct {
	tenantRepo leasing.TenantRepository
	jwtService *auth.JWTService
	notifier   notification.Notifier
	config     config.PortalConfig
}

// NewPortalAuthService creates a new PortalAuthService
func NewPortalAuthService(
	tenantRepo leasing.TenantRepository,
	jwtService *auth.JWTService,
	notifier notification.Notifier,
	cfg config.PortalConfig,
) *PortalAuthService {
	if notifier == nil {
		notifier = notification.NopNotifier{}
	}
	return &PortalAuthService{
		tenantRepo: tenantRepo,
		jwtService: jwtService,
		notifier:   notifier,
		config:     cfg,
	}
}

// Login authenticates a tenant against the portal. Repeated failures lock
// the account: reaching the attempt limit locks it for the configured
// duration and a locked account rejects even the correct password until the
// lock expires. Each attempt's counter state is persisted before returning.
func (s *PortalAuthService) Login(ctx context.Context, req PortalLoginRequest) (*PortalLoginResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "portal_auth", "login")
	defer span.End()

	tenant, err := s.tenantRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	if tenant.Archived || !tenant.HasPortalAccess() {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if tenant.IsLocked(now) {
		remaining := tenant.LockRemaining(now).Round(time.Second)
		return nil, shared.NewDomainError("ACCOUNT_LOCKED",
			fmt.Sprintf("Account is locked, try again in %s", remaining))
	}

	if !tenant.VerifyPassword(req.Password) {
		locked := tenant.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration, now)
		if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
			logger.L(ctx).Warn("Failed to persist login failure",
				zap.String("tenant_id", tenant.ID.String()),
				zap.Error(err),
			)
		}
		if locked {
			logger.L(ctx).Warn("Portal account locked after repeated failures",
				zap.String("tenant_id", tenant.ID.String()),
			)
			return nil, shared.NewDomainError("ACCOUNT_LOCKED",
				fmt.Sprintf("Account is locked, try again in %s", s.config.LockDuration))
		}
		return nil, ErrInvalidCredentials
	}

	tenant.RecordLoginSuccess()
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		SubjectID: tenant.ID,
		Username:  tenant.Email,
		Role:      PortalRole,
		Scope:     auth.ScopePortal,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Portal login", zap.String("tenant_id", tenant.ID.String()))

	return &PortalLoginResponse{
		Tokens: tokens,
		Tenant: ToTenantResponse(tenant),
	}, nil
}

// SetPassword sets a tenant's portal password. Staff use this to enable
// portal access for a tenant.
func (s *PortalAuthService) SetPassword(ctx context.Context, tenantID uuid.UUID, password string) error {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if tenant.Archived {
		return shared.ErrTenantArchived
	}
	if err := tenant.SetPassword(password); err != nil {
		return err
	}
	return s.tenantRepo.SaveWithLock(ctx, tenant)
}

// RequestPasswordReset issues a reset token and emails it to the tenant.
// An unknown email returns success so the endpoint cannot be used to probe
// which addresses have accounts.
func (s *PortalAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "portal_auth", "request_password_reset")
	defer span.End()

	tenant, err := s.tenantRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		telemetry.RecordError(span, err)
		return err
	}
	if tenant.Archived {
		return nil
	}

	token, err := tenant.GenerateResetToken(s.config.ResetTokenTTL, time.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	msg := notification.Message{
		To:      tenant.Email,
		Subject: "Password reset",
		Body: "Hi " + tenant.Name + ",\n\n" +
			"Use this code to reset your portal password: " + token + "\n" +
			"It expires in " + s.config.ResetTokenTTL.String() + ". If you did not request a reset, ignore this message.\n",
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		// The token is already stored; delivery failure only delays the tenant
		logger.L(ctx).Warn("Password reset email failed",
			zap.String("tenant_id", tenant.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
// A successful reset also clears any login lock.
func (s *PortalAuthService) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirm) error {
	tenant, err := s.tenantRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_RESET_TOKEN", "Reset token is invalid")
		}
		return err
	}

	if err := tenant.ConsumeResetToken(req.Token, req.NewPassword, time.Now()); err != nil {
		return err
	}
	tenant.RecordLoginSuccess()

	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return err
	}

	logger.L(ctx).Info("Portal password reset", zap.String("tenant_id", tenant.ID.String()))
	return nil
}
