package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// AuthService handles registration, login and token refresh.
type AuthService struct {
	users  UserStore
	tokens *crypto.TokenIssuer
	hasher *crypto.PasswordHasher
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *crypto.TokenIssuer, hasher *crypto.PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		hasher: hasher,
	}
}

// Register creates a standard user account and returns a token pair, so the
// new user is logged in without a second round trip.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.TokenPair, error) {
	if err := validateUsername(req.Username); err != nil {
		return model.TokenPair{}, err
	}
	if err := validateEmail(req.Email); err != nil {
		return model.TokenPair{}, err
	}
	if err := validatePassword(req.Password); err != nil {
		return model.TokenPair{}, err
	}

	user, err := s.createUser(ctx, req.Username, req.Email, req.Password, model.RoleStandard)
	if err != nil {
		return model.TokenPair{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return s.tokens.Issue(user)
}

// Login exchanges a username and password for a token pair.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.TokenPair, error) {
	if req.Username == "" {
		return model.TokenPair{}, invalid("username", "this field is required")
	}
	if req.Password == "" {
		return model.TokenPair{}, invalid("password", "this field is required")
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.TokenPair{}, ErrInvalidCredentials
		}
		return model.TokenPair{}, err
	}

	match, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return model.TokenPair{}, err
	}
	if !match {
		return model.TokenPair{}, ErrInvalidCredentials
	}

	return s.tokens.Issue(user)
}

// Refresh exchanges a refresh token for a new access token. The access token
// carries the user's current username and role as stored, not the values in
// the refresh token. Token errors (crypto.ErrInvalidToken,
// crypto.ErrExpiredToken) are returned unchanged; a subject that no longer
// exists is crypto.ErrInvalidToken.
func (s *AuthService) Refresh(ctx context.Context, req model.RefreshRequest) (model.AccessResponse, error) {
	if req.Refresh == "" {
		return model.AccessResponse{}, invalid("refresh", "this field is required")
	}

	userID, err := s.tokens.RefreshSubject(req.Refresh)
	if err != nil {
		return model.AccessResponse{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.AccessResponse{}, crypto.ErrInvalidToken
		}
		return model.AccessResponse{}, err
	}

	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return model.AccessResponse{}, err
	}
	return model.AccessResponse{Access: access}, nil
}

// EnsureAdmin creates an admin account named username unless it already
// exists. An existing admin is left untouched; an existing non-admin with that
// name is never promoted and yields ErrAdminNameTaken.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		if !existing.IsAdmin() {
			slog.Warn("admin bootstrap skipped, username belongs to a non-admin account",
				"user_id", existing.ID, "username", existing.Username)
			return ErrAdminNameTaken
		}
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	user, err := s.createUser(ctx, username, "", password, model.RoleAdmin)
	if err != nil {
		return err
	}
	slog.Info("admin account created", "user_id", user.ID, "username", user.Username)
	return nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password string, role model.Role) (*model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, errUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

var errUsernameTaken = invalid("username", "a user with that username already exists")
