package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"reviewhub/internal/api/apierrors"
	"reviewhub/internal/api/middleware/auth"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"
	"reviewhub/internal/config"

	"gorm.io/gorm"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the identity resolved from a bearer token. Role is the effective
// role, superusers already collapsed to admin at issue time.
type Claims struct {
	UserID   string
	Username string
	Role     models.Role
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) error
	IssueToken(ctx context.Context, username, confirmationCode string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo         repository.UserRepository
	confirmationRepo repository.ConfirmationRepository
	limits           *Limits
	logger           *slog.Logger
	jwtSecret        string
	tokenTTL         time.Duration
	confirmationTTL  time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	confirmationRepo repository.ConfirmationRepository,
	limits *Limits,
	logger *slog.Logger,
	cfg *config.Config,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		confirmationRepo: confirmationRepo,
		limits:           limits,
		logger:           logger,
		jwtSecret:        cfg.JWTSecret,
		tokenTTL:         cfg.TokenTTL,
		confirmationTTL:  cfg.ConfirmationTTL,
	}
}

// Signup registers (or re-confirms) a user and issues a confirmation code.
// Repeating the signup with the same (username, email) pair re-issues a code,
// a collision on either field alone is a validation error.
func (s *authService) Signup(ctx context.Context, username, email string) error {
	fe := apierrors.FieldErrors{}
	fe = validateUsername(fe, s.limits, username)
	fe = validateEmail(fe, s.limits, email)
	if err := fieldErrorsOrNil(fe); err != nil {
		return err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		if user.Email != email {
			return apierrors.NewFieldError("username", "username already taken")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if _, emailErr := s.userRepo.FindByEmail(ctx, email); emailErr == nil {
			return apierrors.NewFieldError("email", "email already registered")
		} else if !errors.Is(emailErr, gorm.ErrRecordNotFound) {
			return emailErr
		}
		user = &models.User{
			Username: username,
			Email:    email,
			Role:     models.RoleUser,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			// lost a race with a concurrent signup on the same username or email
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierrors.NewFieldError("username", "username or email already in use")
			}
			return err
		}
	default:
		return err
	}

	code := uuid.New().String()
	codeHash, err := auth.HashCode(code)
	if err != nil {
		return err
	}
	if err := s.confirmationRepo.Save(ctx, username, codeHash, s.confirmationTTL); err != nil {
		return err
	}

	// Stand-in for the mail collaborator: the code goes to the log instead
	// of an outbound email.
	s.logger.Info("confirmation code issued",
		"username", username,
		"email", email,
		"code", code,
	)
	return nil
}

// IssueToken exchanges a valid confirmation code for a signed JWT.
func (s *authService) IssueToken(ctx context.Context, username, confirmationCode string) (string, error) {
	if err := fieldErrorsOrNil(validateCode(apierrors.FieldErrors{}, s.limits, confirmationCode)); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("user %q: %w", username, apierrors.ErrNotFound)
		}
		return "", err
	}

	codeHash, err := s.confirmationRepo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return "", apierrors.NewFieldError("confirmation_code", "invalid or expired confirmation code")
		}
		return "", err
	}
	if err := auth.VerifyCode(codeHash, confirmationCode); err != nil {
		return "", apierrors.NewFieldError("confirmation_code", "invalid or expired confirmation code")
	}

	// single use
	if err := s.confirmationRepo.Delete(ctx, username); err != nil {
		return "", err
	}

	return s.generateToken(user)
}

func (s *authService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     string(models.RoleOf(user)),
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, _ := mapClaims["user_id"].(string)
	username, _ := mapClaims["username"].(string)
	role, _ := mapClaims["role"].(string)
	if userID == "" || !models.Role(role).Valid() {
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:   userID,
		Username: username,
		Role:     models.Role(role),
	}, nil
}
