package tasks

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrNotFound is returned when a mutation targets a task that no longer exists.
var ErrNotFound = errors.New("task not found")

// Repository persists task records. Listings are ordered chronologically by
// deadline, earliest first, with the task id breaking ties.
type Repository interface {
	Create(ctx context.Context, d Draft) (int64, error)
	List(ctx context.Context) ([]Task, error)
	ListByExecutor(ctx context.Context, executor string) ([]Task, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

// sortByDeadline orders tasks chronologically by parsed deadline. Tasks with
// an unparseable deadline sort last.
func sortByDeadline(list []Task) {
	key := func(t Task) (time.Time, bool) {
		d, err := time.Parse(DeadlineLayout, t.Deadline)
		return d, err == nil
	}
	sort.SliceStable(list, func(i, j int) bool {
		di, oki := key(list[i])
		dj, okj := key(list[j])
		if oki != okj {
			return oki
		}
		if oki && !di.Equal(dj) {
			return di.Before(dj)
		}
		return list[i].ID < list[j].ID
	})
}
