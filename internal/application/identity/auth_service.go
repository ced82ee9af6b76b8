package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leasehold/backend/internal/domain/identity"
	"github.com/leasehold/backend/internal/domain/shared"
	"github.com/leasehold/backend/internal/infrastructure/auth"
	"github.com/leasehold/backend/internal/infrastructure/logger"
	"github.com/leasehold/backend/internal/infrastructure/telemetry"
)

// Staff lockout is stricter on duration than the portal because staff
// accounts carry write access to everything.
const (
	staffMaxLoginAttempts = 5
	staffLockDuration     = 15 * time.Minute
)

// ErrInvalidCredentials is returned for any staff login failure that must
// not leak which part of the credentials was wrong.
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// AuthService handles staff authentication
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.UserRepository, jwtService *auth.JWTService, blacklist auth.TokenBlacklist) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
	}
}

// Login authenticates a staff member and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "auth", "login")
	defer span.End()

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked, try again later")
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(staffMaxLoginAttempts, staffLockDuration, now)
		if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
			logger.L(ctx).Warn("Failed to persist login failure",
				zap.String("username", user.Username),
				zap.Error(err),
			)
		}
		if locked {
			logger.L(ctx).Warn("Staff account locked after repeated failures",
				zap.String("username", user.Username),
			)
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed attempts, account is locked")
		}
		return nil, ErrInvalidCredentials
	}

	user.RecordLoginSuccess(now)
	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		SubjectID: user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		Scope:     auth.ScopeStaff,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.L(ctx).Info("Staff login",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return &LoginResponse{
		Tokens: tokens,
		User:   ToUserResponse(user),
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The user is
// re-checked so deactivated accounts cannot keep refreshing their way in.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	userID, err := uuid.Parse(claims.SubjectID)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	tokens, err := s.jwtService.RefreshTokenPair(refreshToken, user.Username, string(user.Role))
	if err != nil {
		return nil, mapTokenError(err)
	}
	return tokens, nil
}

// Logout blacklists the access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		// An invalid or expired token has nothing left to revoke
		return nil
	}
	if s.blacklist == nil || claims.ID == "" {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		logger.L(ctx).Warn("Failed to blacklist token on logout", zap.Error(err))
		return err
	}
	return nil
}

// ChangePassword changes a staff member's password after verifying the
// current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}

	logger.L(ctx).Info("Staff password changed", zap.String("user_id", user.ID.String()))
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum refresh count exceeded, log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
