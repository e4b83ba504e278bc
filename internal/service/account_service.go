package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/repository"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

// ErrInvalidCredentials is the single login failure outcome.
var ErrInvalidCredentials = apperrors.NewUnauthorized("Invalid credentials")

// AccountService coordinates registration, login and the admin seed.
type AccountService struct {
	users  repository.UserRepository
	hasher auth.Hasher
	logger *zap.Logger
}

// AccountDependencies encapsulates requirements for the account service.
type AccountDependencies struct {
	UserRepo repository.UserRepository
	Hasher   auth.Hasher
	Logger   *zap.Logger
}

// RegisterInput describes a registration candidate.
type RegisterInput struct {
	Email        string
	Password     string
	Role         domain.Role
	FullName     string
	MobileNumber string
}

// NewAccountService builds the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{users: deps.UserRepo, hasher: deps.Hasher, logger: logger}
}

// Register stores a new account. The role defaults to CITIZEN.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, emailTaken(input.Email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if strings.TrimSpace(string(role)) == "" {
		role = domain.RoleCitizen
	}
	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		FullName:     input.FullName,
		MobileNumber: input.MobileNumber,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, emailTaken(input.Email)
		}
		return nil, err
	}
	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login returns the account matching email and password. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error("login lookup failed", zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Warn("stored password hash unusable", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureAdmin creates or refreshes the administrator account named by seed.
// Running it repeatedly yields a single account carrying the latest password.
func (s *AccountService) EnsureAdmin(ctx context.Context, seed config.AdminSeedConfig) (*domain.User, error) {
	if seed.Password == "" || seed.Email == "" {
		s.logger.Warn("admin seed incomplete; skipping admin bootstrap")
		return nil, nil
	}

	hash, err := s.hashPassword(seed.Password)
	if err != nil {
		return nil, err
	}

	admin, err := s.users.GetByEmail(ctx, seed.Email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		admin = &domain.User{Email: seed.Email}
	case err != nil:
		return nil, err
	}

	admin.PasswordHash = hash
	admin.Role = domain.RoleAdmin
	if admin.FullName == "" {
		admin.FullName = seed.FullName
		admin.MobileNumber = seed.MobileNumber
	}

	if admin.ID == 0 {
		err = s.users.Create(ctx, admin)
	} else {
		err = s.users.Update(ctx, admin)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin user ensured", zap.String("email", admin.Email), zap.Int64("user_id", admin.ID))
	return admin, nil
}

func (s *AccountService) hashPassword(password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password exceeds 72 bytes", nil)
	}
	return hash, err
}

func emailTaken(email string) error {
	return apperrors.NewValidationError(repository.ErrDuplicateEmail.Error(), map[string]any{"email": email})
}
