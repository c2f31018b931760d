package service

import (
	"context"
	"testing"

	"reviewhub/internal/api/apierrors"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestCreateUser_AdminCanSetRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo, testLimits())

	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	resp, err := svc.Create(context.Background(), dto.CreateUserDTO{
		Username: "mod",
		Email:    "mod@example.com",
		Role:     "moderator",
	})

	assert.NoError(t, err)
	assert.Equal(t, "moderator", resp.Role)
	mockUserRepo.AssertExpectations(t)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo, testLimits())

	_, err := svc.Create(context.Background(), dto.CreateUserDTO{
		Username: "bob",
		Email:    "bob@example.com",
		Role:     "overlord",
	})

	assert.ErrorIs(t, err, apierrors.ErrValidation)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo, testLimits())

	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(gorm.ErrDuplicatedKey)

	_, err := svc.Create(context.Background(), dto.CreateUserDTO{
		Username: "bob",
		Email:    "bob@example.com",
	})

	assert.ErrorIs(t, err, apierrors.ErrValidation)
}

// Self-service updates must not escalate: without allowRoleChange the role
// field is read-only and the rest of the patch still applies.
func TestUpdateUser_SelfServiceIgnoresRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo, testLimits())

	stored := &models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByID", mock.Anything, "u-1").Return(stored, nil)
	mockUserRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	role := "admin"
	bio := "hello"
	resp, err := svc.UpdateByID(context.Background(), "u-1", dto.UpdateUserDTO{Role: &role, Bio: &bio}, false)

	assert.NoError(t, err)
	assert.Equal(t, "user", resp.Role)
	assert.Equal(t, "hello", resp.Bio)
}

func TestUpdateUser_AdminChangesRole(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo, testLimits())

	stored := &models.User{ID: "u-1", Username: "alice", Email: "alice@example.com", Role: models.RoleUser}
	mockUserRepo.On("FindByUsername", mock.Anything, "alice").Return(stored, nil)
	mockUserRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	role := "moderator"
	resp, err := svc.Update(context.Background(), "alice", dto.UpdateUserDTO{Role: &role}, true)

	assert.NoError(t, err)
	assert.Equal(t, "moderator", resp.Role)
}

func TestGetUser_NotFound(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	svc := NewUserService(mockUserRepo, testLimits())

	mockUserRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Get(context.Background(), "ghost")

	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}
