package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"taskbot/core/logger"
	"log/slog"
)

// PostgresRepository stores tasks in PostgreSQL via sqlx.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository wraps an established sqlx connection.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, chat_id, title, description, deadline, executor, status, photos, created_at`

// Deadlines are stored as DD.MM.YYYY text, so ordering goes through to_date
// to stay chronological rather than lexicographic.
const orderByDeadline = `ORDER BY to_date(deadline, 'DD.MM.YYYY'), id`

// Create persists a finished draft and returns the assigned id.
func (r *PostgresRepository) Create(ctx context.Context, d Draft) (int64, error) {
	start := time.Now()
	var id int64
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO tasks (chat_id, title, description, deadline, executor, status, photos)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		d.ChatID, d.Title, d.Description, d.Deadline, d.Executor, StatusNew, pq.Array(d.Photos),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	logger.SVCTasks.Debug("task created",
		slog.String("event", "task.create"),
		slog.Int64("task_id", id),
		slog.String("executor", d.Executor),
		slog.Int("photos", len(d.Photos)),
		slog.Duration("duration", logger.Took(start)),
	)
	return id, nil
}

// List returns every task ordered by deadline.
func (r *PostgresRepository) List(ctx context.Context) ([]Task, error) {
	var list []Task
	q := fmt.Sprintf(`SELECT %s FROM tasks %s`, taskColumns, orderByDeadline)
	if err := r.db.SelectContext(ctx, &list, q); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

// ListByExecutor returns tasks assigned to one executor, ordered by deadline.
func (r *PostgresRepository) ListByExecutor(ctx context.Context, executor string) ([]Task, error) {
	var list []Task
	q := fmt.Sprintf(`SELECT %s FROM tasks WHERE executor = $1 %s`, taskColumns, orderByDeadline)
	if err := r.db.SelectContext(ctx, &list, q, executor); err != nil {
		return nil, fmt.Errorf("list tasks by executor: %w", err)
	}
	return list, nil
}

// UpdateStatus overwrites the status label of one task.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return checkAffected(res, id)
}

// Delete removes a task permanently.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
