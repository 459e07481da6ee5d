package service

import (
	"context"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

// UserStore is the credential store. Implemented by repository.UserRepository
// and repository.MemoryUserRepository.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// TaskStore persists tasks. Every method except Create takes the owner id,
// and implementations must treat a row owned by anyone else as missing.
type TaskStore interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]model.Task, error)
	GetByOwner(ctx context.Context, ownerID, id int64) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	UpdateByOwner(ctx context.Context, ownerID int64, task *model.Task) error
	DeleteByOwner(ctx context.Context, ownerID, id int64) error
}
