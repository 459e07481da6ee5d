package service

import (
	"context"
	"errors"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// UserService handles reads and updates of user records. A caller may act on
// their own record; admins may act on any. Deletion is refused for everyone.
type UserService struct {
	users  UserStore
	hasher *crypto.PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, hasher *crypto.PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

// List returns every user for an admin, and only the caller's own record otherwise.
func (s *UserService) List(ctx context.Context, caller model.Identity) ([]model.UserResponse, error) {
	if !caller.IsAdmin() {
		user, err := s.get(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		return []model.UserResponse{user.ToResponse()}, nil
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]model.UserResponse, len(users))
	for i := range users {
		result[i] = users[i].ToResponse()
	}
	return result, nil
}

// Get returns user id.
func (s *UserService) Get(ctx context.Context, caller model.Identity, id int64) (model.UserResponse, error) {
	if err := authorizeUserAccess(caller, id); err != nil {
		return model.UserResponse{}, err
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.ToResponse(), nil
}

// Update applies req to user id. With partial false (PUT) username and
// password are required. Only admins may change a role.
func (s *UserService) Update(ctx context.Context, caller model.Identity, id int64, req model.UpdateUserRequest, partial bool) (model.UserResponse, error) {
	if err := authorizeUserAccess(caller, id); err != nil {
		return model.UserResponse{}, err
	}

	if !partial {
		if req.Username == nil {
			return model.UserResponse{}, invalid("username", "this field is required")
		}
		if req.Password == nil {
			return model.UserResponse{}, invalid("password", "this field is required")
		}
	}

	user, err := s.get(ctx, id)
	if err != nil {
		return model.UserResponse{}, err
	}

	if req.Role != nil && *req.Role != user.Role {
		if !caller.IsAdmin() {
			return model.UserResponse{}, ErrForbidden
		}
		if !req.Role.Valid() {
			return model.UserResponse{}, invalid("role", `"`+string(*req.Role)+`" is not a valid choice`)
		}
		user.Role = *req.Role
	}
	if req.Username != nil {
		if err := validateUsername(*req.Username); err != nil {
			return model.UserResponse{}, err
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		if err := validateEmail(*req.Email); err != nil {
			return model.UserResponse{}, err
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return model.UserResponse{}, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return model.UserResponse{}, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return model.UserResponse{}, errUsernameTaken
		case errors.Is(err, repository.ErrUserNotFound):
			return model.UserResponse{}, ErrNotFound
		}
		return model.UserResponse{}, err
	}

	return user.ToResponse(), nil
}

// Delete always fails: user deletion is not available through the API, even to admins.
func (s *UserService) Delete(_ context.Context, _ model.Identity, _ int64) error {
	return ErrUserDeletionDisabled
}

// authorizeUserAccess runs before any lookup, so a standard caller learns
// nothing about other user ids.
func authorizeUserAccess(caller model.Identity, id int64) error {
	if caller.UserID != id && !caller.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

func (s *UserService) get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}
