package service

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/internal/api/apierrors"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

type UserService interface {
	Create(ctx context.Context, in dto.CreateUserDTO) (*dto.UserResponse, error)
	List(ctx context.Context, page, pageSize int) (*dto.PaginatedUserResponse, error)
	Get(ctx context.Context, username string) (*dto.UserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, username string, in dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error)
	UpdateByID(ctx context.Context, id string, in dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error)
	Delete(ctx context.Context, username string) error
}

type userService struct {
	userRepo repository.UserRepository
	limits   *Limits
}

func NewUserService(userRepo repository.UserRepository, limits *Limits) UserService {
	return &userService{
		userRepo: userRepo,
		limits:   limits,
	}
}

// Create is the admin path for provisioning users directly, including with
// elevated roles.
func (s *userService) Create(ctx context.Context, in dto.CreateUserDTO) (*dto.UserResponse, error) {
	fe := apierrors.FieldErrors{}
	fe = validateUsername(fe, s.limits, in.Username)
	fe = validateEmail(fe, s.limits, in.Email)

	role := models.RoleUser
	if in.Role != "" {
		role = models.Role(in.Role)
		if !role.Valid() {
			fe = fe.Add("role", "must be one of: user, moderator, admin")
		}
	}
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Role:      role,
		Bio:       in.Bio,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.NewFieldError("username", "username or email already in use")
		}
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, page, pageSize int) (*dto.PaginatedUserResponse, error) {
	users, total, err := s.userRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *dto.FromModelToUserResponse(&users[i]))
	}

	return dto.NewPaginatedUserResponse(responses, int(total), page, pageSize), nil
}

func (s *userService) Get(ctx context.Context, username string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, apierrors.ErrNotFound)
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", apierrors.ErrNotFound)
		}
		return nil, err
	}
	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, username string, in dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %q: %w", username, apierrors.ErrNotFound)
		}
		return nil, err
	}
	return s.applyUpdate(ctx, user, in, allowRoleChange)
}

func (s *userService) UpdateByID(ctx context.Context, id string, in dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", apierrors.ErrNotFound)
		}
		return nil, err
	}
	return s.applyUpdate(ctx, user, in, allowRoleChange)
}

func (s *userService) applyUpdate(ctx context.Context, user *models.User, in dto.UpdateUserDTO, allowRoleChange bool) (*dto.UserResponse, error) {
	fe := apierrors.FieldErrors{}
	if in.Email != nil {
		fe = validateEmail(fe, s.limits, *in.Email)
	}
	if in.Role != nil {
		if !allowRoleChange {
			// self-service updates cannot escalate, the role field is
			// silently read-only on /users/me
			in.Role = nil
		} else if !models.Role(*in.Role).Valid() {
			fe = fe.Add("role", "must be one of: user, moderator, admin")
		}
	}
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.Role != nil {
		user.Role = models.Role(*in.Role)
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.NewFieldError("email", "email already in use")
		}
		return nil, err
	}

	return dto.FromModelToUserResponse(user), nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.userRepo.Delete(ctx, username); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %q: %w", username, apierrors.ErrNotFound)
		}
		return err
	}
	return nil
}
