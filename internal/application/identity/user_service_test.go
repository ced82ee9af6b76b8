package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leasehold/backend/internal/domain/identity"
	"github.com/leasehold/backend/internal/domain/shared"
)

func TestUserService_Create(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo)

	userRepo.On("ExistsByUsername", mock.Anything, "clerk1").Return(false, nil)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	resp, err := service.Create(context.Background(), CreateUserRequest{
		Username:    "clerk1",
		Email:       "clerk@example.com",
		Password:    "clerk-password-1",
		DisplayName: "Front Desk",
		Role:        string(identity.RoleStaff),
	})

	require.NoError(t, err)
	assert.Equal(t, "clerk1", resp.Username)
	assert.Equal(t, "Front Desk", resp.DisplayName)
	assert.Equal(t, string(identity.UserStatusActive), resp.Status)
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo)

	userRepo.On("ExistsByUsername", mock.Anything, "clerk1").Return(true, nil)

	_, err := service.Create(context.Background(), CreateUserRequest{
		Username: "clerk1",
		Email:    "clerk@example.com",
		Password: "clerk-password-1",
		Role:     string(identity.RoleStaff),
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "DUPLICATE_USERNAME", domainErr.Code)
	userRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUserService_Create_UnknownRole(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo)

	userRepo.On("ExistsByUsername", mock.Anything, "clerk1").Return(false, nil)

	_, err := service.Create(context.Background(), CreateUserRequest{
		Username: "clerk1",
		Email:    "clerk@example.com",
		Password: "clerk-password-1",
		Role:     "superuser",
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestUserService_Update_Role(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo)

	user := newStaffUser(t)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("SaveWithLock", mock.Anything, user).Return(nil)

	resp, err := service.Update(context.Background(), user.ID, UpdateUserRequest{
		Role:        string(identity.RoleAdmin),
		DisplayName: "Building Admin",
	})

	require.NoError(t, err)
	assert.Equal(t, string(identity.RoleAdmin), resp.Role)
	assert.Equal(t, "Building Admin", resp.DisplayName)
}

func TestUserService_DeactivateAndActivate(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo)

	user := newStaffUser(t)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("SaveWithLock", mock.Anything, user).Return(nil)

	require.NoError(t, service.Deactivate(context.Background(), user.ID))
	assert.False(t, user.IsActive())

	require.NoError(t, service.Activate(context.Background(), user.ID))
	assert.True(t, user.IsActive())
}

func TestUserService_Deactivate_AlreadyDeactivated(t *testing.T) {
	userRepo := new(MockUserRepository)
	service := NewUserService(userRepo)

	user := newStaffUser(t)
	require.NoError(t, user.Deactivate())
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	err := service.Deactivate(context.Background(), user.ID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_DEACTIVATED", domainErr.Code)
}
