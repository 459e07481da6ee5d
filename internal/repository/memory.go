package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
)

// MemoryStore keeps users and tasks in process memory. It backs STORAGE=memory
// and the test suites, and honours the same ownership scoping as MySQL.
type MemoryStore struct {
	mu         sync.RWMutex
	users      map[int64]model.User
	tasks      map[int64]model.Task
	nextUserID int64
	nextTaskID int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[int64]model.User),
		tasks: make(map[int64]model.Task),
	}
}

// Users returns the user repository view of the store.
func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{s: s}
}

// Tasks returns the task repository view of the store.
func (s *MemoryStore) Tasks() *MemoryTaskRepository {
	return &MemoryTaskRepository{s: s}
}

// MemoryUserRepository is the in-memory counterpart of UserRepository.
type MemoryUserRepository struct {
	s *MemoryStore
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.usernameTaken(user.Username, 0) {
		return ErrDuplicateUsername
	}

	r.s.nextUserID++
	now := time.Now().UTC()
	user.ID = r.s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryUserRepository) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if r.s.usernameTaken(user.Username, user.ID) {
		return ErrDuplicateUsername
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	r.s.users[user.ID] = *user
	return nil
}

// usernameTaken must be called with mu held.
func (s *MemoryStore) usernameTaken(username string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && u.Username == username {
			return true
		}
	}
	return false
}

// MemoryTaskRepository is the in-memory counterpart of TaskRepository.
type MemoryTaskRepository struct {
	s *MemoryStore
}

func (r *MemoryTaskRepository) ListByOwner(_ context.Context, ownerID int64) ([]model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var tasks []model.Task
	for _, t := range r.s.tasks {
		if t.OwnerID == ownerID {
			tasks = append(tasks, r.s.withOwner(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (r *MemoryTaskRepository) GetByOwner(_ context.Context, ownerID, id int64) (*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, ErrTaskNotFound
	}
	t = r.s.withOwner(t)
	return &t, nil
}

func (r *MemoryTaskRepository) Create(_ context.Context, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.nextTaskID++
	now := time.Now().UTC()
	task.ID = r.s.nextTaskID
	task.CreatedAt = now
	task.UpdatedAt = now
	r.s.tasks[task.ID] = *task
	return nil
}

func (r *MemoryTaskRepository) UpdateByOwner(_ context.Context, ownerID int64, task *model.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok || existing.OwnerID != ownerID {
		return ErrTaskNotFound
	}

	existing.Title = task.Title
	existing.Description = task.Description
	existing.Status = task.Status
	existing.UpdatedAt = time.Now().UTC()
	r.s.tasks[task.ID] = existing
	return nil
}

func (r *MemoryTaskRepository) DeleteByOwner(_ context.Context, ownerID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	return nil
}

// withOwner fills OwnerUsername the way the SQL join does. Must be called with mu held.
func (s *MemoryStore) withOwner(t model.Task) model.Task {
	t.OwnerUsername = s.users[t.OwnerID].Username
	return t
}
