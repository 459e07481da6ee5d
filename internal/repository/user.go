package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

const userColumns = `id, username, email, password_hash, role, created_at, updated_at`

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateUsername
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	user.ID = id
	return nil
}

// GetByUsername retrieves a user by their username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// List returns every user ordered by ID.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Update writes the mutable fields of user.
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET username = ?, email = ?, password_hash = ?, role = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role, user.ID)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateUsername
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	user := &model.User{}
	if err := scanUser(r.db.QueryRowContext(ctx, query, arg), user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner, u *model.User) error {
	return s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}
