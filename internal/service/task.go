package service

import (
	"context"
	"errors"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/repository"
)

// TaskService enforces task ownership. Every store call is made with the
// caller's user id as the owner predicate; a task owned by someone else is
// reported as ErrNotFound, exactly like a missing one.
type TaskService struct {
	tasks TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns the caller's tasks.
func (s *TaskService) List(ctx context.Context, caller model.Identity) ([]model.TaskResponse, error) {
	tasks, err := s.tasks.ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return tasksToResponse(tasks), nil
}

// Get returns task id if the caller owns it.
func (s *TaskService) Get(ctx context.Context, caller model.Identity, id int64) (model.TaskResponse, error) {
	task, err := s.get(ctx, caller, id)
	if err != nil {
		return model.TaskResponse{}, err
	}
	return task.ToResponse(), nil
}

// Create stores a new task owned by the caller.
func (s *TaskService) Create(ctx context.Context, caller model.Identity, req model.TaskRequest) (model.TaskResponse, error) {
	if req.Title == nil {
		return model.TaskResponse{}, invalid("title", "this field is required")
	}

	task := &model.Task{
		Status:  model.StatusNew,
		OwnerID: caller.UserID,
	}
	if err := applyTaskRequest(task, req); err != nil {
		return model.TaskResponse{}, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return model.TaskResponse{}, err
	}

	// Read back so owner reflects the stored username, not the token claim.
	created, err := s.tasks.GetByOwner(ctx, caller.UserID, task.ID)
	if err != nil {
		return model.TaskResponse{}, err
	}
	return created.ToResponse(), nil
}

// Update applies req to task id if the caller owns it. With partial false
// (PUT) the title is required; absent fields keep their values either way.
func (s *TaskService) Update(ctx context.Context, caller model.Identity, id int64, req model.TaskRequest, partial bool) (model.TaskResponse, error) {
	task, err := s.get(ctx, caller, id)
	if err != nil {
		return model.TaskResponse{}, err
	}

	if !partial && req.Title == nil {
		return model.TaskResponse{}, invalid("title", "this field is required")
	}
	if err := applyTaskRequest(task, req); err != nil {
		return model.TaskResponse{}, err
	}

	if err := s.tasks.UpdateByOwner(ctx, caller.UserID, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrNotFound
		}
		return model.TaskResponse{}, err
	}
	return task.ToResponse(), nil
}

// Delete removes task id if the caller owns it.
func (s *TaskService) Delete(ctx context.Context, caller model.Identity, id int64) error {
	err := s.tasks.DeleteByOwner(ctx, caller.UserID, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *TaskService) get(ctx context.Context, caller model.Identity, id int64) (*model.Task, error) {
	task, err := s.tasks.GetByOwner(ctx, caller.UserID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// applyTaskRequest copies the present fields of req onto task after validating them.
func applyTaskRequest(task *model.Task, req model.TaskRequest) error {
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return err
		}
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if err := validateStatus(*req.Status); err != nil {
			return err
		}
		task.Status = *req.Status
	}
	return nil
}

// tasksToResponse converts tasks to their wire shape, never returning nil.
func tasksToResponse(tasks []model.Task) []model.TaskResponse {
	result := make([]model.TaskResponse, len(tasks))
	for i := range tasks {
		result[i] = tasks[i].ToResponse()
	}
	return result
}
