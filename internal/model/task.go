package model

import "time"

// TaskStatus is the progress state of a task. Any status may follow any other.
type TaskStatus string

const (
	StatusNew        TaskStatus = "new"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNew, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents a task row. OwnerUsername is filled from the users table on reads.
type Task struct {
	ID            int64
	Title         string
	Description   string
	Status        TaskStatus
	OwnerID       int64
	OwnerUsername string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TaskRequest represents a task create, PUT or PATCH payload.
// It has no owner field; the owner always comes from the caller.
type TaskRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *TaskStatus `json:"status"`
}

// TaskResponse is the wire shape of a task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	Owner       string     `json:"owner"`
}

// ToResponse renders the task with its owner's username.
func (t *Task) ToResponse() TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Owner:       t.OwnerUsername,
	}
}
