package repository

import (
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestNewRepositoriesWithNilDB(t *testing.T) {
	users := NewUserRepository(nil)
	if users == nil || users.db != nil {
		t.Fatal("expected UserRepository with nil db")
	}
	tasks := NewTaskRepository(nil)
	if tasks == nil || tasks.db != nil {
		t.Fatal("expected TaskRepository with nil db")
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUserNotFound, "user not found"},
		{ErrDuplicateUsername, "username already exists"},
		{ErrTaskNotFound, "task not found"},
	}
	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
		}
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'username'"}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "sentinel", err: ErrUserNotFound, want: false},
		{name: "other mysql error", err: &mysql.MySQLError{Number: 1146}, want: false},
		{name: "duplicate entry", err: dup, want: true},
		{name: "wrapped duplicate entry", err: fmt.Errorf("insert: %w", dup), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDuplicateEntryError(tt.err); got != tt.want {
				t.Errorf("isDuplicateEntryError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDBInvalidDSN(t *testing.T) {
	if _, err := NewDB("not-a-dsn"); err == nil {
		t.Error("NewDB() expected error for malformed dsn")
	}
}
