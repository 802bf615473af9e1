package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryRepository is an in-memory Repository for tests and local development.
// Ids are monotonically assigned, mirroring the BIGSERIAL column in Postgres.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]Task
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[int64]Task)}
}

// Create persists a finished draft and returns the assigned id.
func (r *MemoryRepository) Create(_ context.Context, d Draft) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t := Task{
		ID:          r.nextID,
		ChatID:      d.ChatID,
		Title:       d.Title,
		Description: d.Description,
		Deadline:    d.Deadline,
		Executor:    d.Executor,
		Status:      StatusNew,
		Photos:      append([]string(nil), d.Photos...),
		CreatedAt:   time.Now(),
	}
	r.byID[t.ID] = t
	return t.ID, nil
}

// List returns every task ordered by deadline.
func (r *MemoryRepository) List(_ context.Context) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(Task) bool { return true }), nil
}

// ListByExecutor returns tasks assigned to one executor, ordered by deadline.
func (r *MemoryRepository) ListByExecutor(_ context.Context, executor string) ([]Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(t Task) bool { return t.Executor == executor }), nil
}

// UpdateStatus overwrites the status label of one task.
func (r *MemoryRepository) UpdateStatus(_ context.Context, id int64, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	t.Status = status
	r.byID[id] = t
	return nil
}

// Delete removes a task permanently.
func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) collect(keep func(Task) bool) []Task {
	list := make([]Task, 0, len(r.byID))
	for _, t := range r.byID {
		if !keep(t) {
			continue
		}
		t.Photos = append([]string(nil), t.Photos...)
		list = append(list, t)
	}
	sortByDeadline(list)
	return list
}
