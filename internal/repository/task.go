package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// Every task query below is scoped by owner_id. A row owned by someone else
// is indistinguishable from a missing one.
const taskSelect = `SELECT t.id, t.title, t.description, t.status, t.owner_id, u.username, t.created_at, t.updated_at
	FROM tasks t JOIN users u ON u.id = t.owner_id`

// TaskRepository handles task persistence operations.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByOwner retrieves all tasks owned by ownerID, ordered by ID.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, taskSelect+` WHERE t.owner_id = ? ORDER BY t.id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// GetByOwner retrieves task id if and only if it belongs to ownerID.
func (r *TaskRepository) GetByOwner(ctx context.Context, ownerID, id int64) (*model.Task, error) {
	task := &model.Task{}
	err := scanTask(r.db.QueryRowContext(ctx, taskSelect+` WHERE t.id = ? AND t.owner_id = ?`, id, ownerID), task)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Create inserts task and sets its generated ID. OwnerID must already be set.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (title, description, status, owner_id) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, task.Title, task.Description, task.Status, task.OwnerID)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	task.ID = id
	return nil
}

// UpdateByOwner writes title, description and status of task. The owner
// column is never written.
func (r *TaskRepository) UpdateByOwner(ctx context.Context, ownerID int64, task *model.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, status = ? WHERE id = ? AND owner_id = ?`

	result, err := r.db.ExecContext(ctx, query, task.Title, task.Description, task.Status, task.ID, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// DeleteByOwner removes task id if it belongs to ownerID.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func scanTask(s scanner, t *model.Task) error {
	return s.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.OwnerID, &t.OwnerUsername, &t.CreatedAt, &t.UpdatedAt)
}
