package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/fraudguard/internal/config"
	"github.com/jonathan/fraudguard/internal/store"
	"github.com/jonathan/fraudguard/internal/types"
)

// UserService provides the business logic for accounts and sessions.
type UserService struct {
	store          store.Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a UserService over the given store.
func NewUserService(st store.Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{store: st, passwordConfig: passwordConfig}
}

// Register creates a new user account and marks it as the current session.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*types.User, error) {
	passwordHash, err := s.passwordConfig.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         types.RoleUser,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return nil, &ErrEmailAlreadyExists{Email: email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.store.SetCurrentUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to set current user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and marks it as the current session.
// Unknown emails and wrong passwords both return ErrInvalidCredentials so
// the response never reveals which part was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*types.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	if user.IsBlocked {
		return nil, &ErrAccountBlocked{}
	}

	if err := s.store.SetCurrentUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to set current user: %w", err)
	}
	return user, nil
}

// Logout clears the current session.
func (s *UserService) Logout(ctx context.Context) error {
	return s.store.SetCurrentUser(ctx, nil)
}

// ListUsers returns all accounts, for the admin panel.
func (s *UserService) ListUsers(ctx context.Context) ([]types.User, error) {
	return s.store.ListUsers(ctx)
}

// SetBlocked blocks or unblocks an account. Admin accounts cannot be blocked.
func (s *UserService) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) (*types.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	if user.Role == types.RoleAdmin {
		return nil, &ErrForbidden{Reason: "admin accounts cannot be blocked"}
	}

	user.IsBlocked = blocked
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes an account and all of its records. Admin accounts
// cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return &ErrUserNotFound{UserID: userID}
	}
	if user.Role == types.RoleAdmin {
		return &ErrForbidden{Reason: "admin accounts cannot be deleted"}
	}

	return s.store.DeleteUser(ctx, userID)
}

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
// Safe to call on every startup.
func (s *UserService) SeedAdmin(ctx context.Context, username, email, password string) (*types.User, error) {
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	passwordHash, err := s.passwordConfig.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &types.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         types.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := s.store.CreateUser(ctx, admin); err != nil {
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}
	return admin, nil
}
