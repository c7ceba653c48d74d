package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	domainErrors "github.com/printflow/printflow/internal/domain/errors"
	"github.com/printflow/printflow/internal/domain/model"
	"github.com/printflow/printflow/internal/domain/repository"
	pkgAuth "github.com/printflow/printflow/internal/pkg/auth"
)

// AuthUseCase handles user lifecycle and token management.
type AuthUseCase struct {
	users  repository.UserRepository
	hasher pkgAuth.PasswordHasher
	tokens pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(users repository.UserRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: strategy}
}

// Register creates a new customer account and returns auth token.
// Public registration never grants staff roles.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.User, string, error) {
	return u.create(ctx, login, password, model.UserRoleCustomer)
}

// CreateStaff registers an account with a staff role on behalf of an admin.
func (u *AuthUseCase) CreateStaff(ctx context.Context, adminID uuid.UUID, login, password string, role model.UserRole) (*model.User, error) {
	if err := u.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	usr, _, err := u.create(ctx, login, password, role)
	return usr, err
}

func (u *AuthUseCase) create(ctx context.Context, login, password string, role model.UserRole) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	usr, err := u.users.Create(ctx, login, hash, role)
	if err != nil {
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.User, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	usr, err := u.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(usr.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(usr.ID)
	if err != nil {
		return nil, "", err
	}

	return usr, token, nil
}

// ParseToken extracts user ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches user by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return u.users.GetByID(ctx, id)
}

func (u *AuthUseCase) requireAdmin(ctx context.Context, userID uuid.UUID) error {
	usr, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if usr.Role != model.UserRoleAdmin {
		return domainErrors.ErrAccessDenied
	}
	return nil
}
