package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Matrix-I/todo-backend/domain"
	"github.com/Matrix-I/todo-backend/repository"
)

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
	SELECT id, title, notes, is_completed, priority, due_date, has_time, has_alarm, alarm_offset_minutes, created_at, last_modified_at
	FROM tasks
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	// Creation order is the canonical stored order; views reorder in memory.
	const query = `
	SELECT id, title, notes, is_completed, priority, due_date, has_time, has_alarm, alarm_offset_minutes, created_at, last_modified_at
	FROM tasks
	ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, title, notes, is_completed, priority, due_date, has_time, has_alarm, alarm_offset_minutes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING created_at, last_modified_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Notes,
		task.IsCompleted,
		task.Priority,
		nullTime(task.DueDate),
		task.HasTime,
		task.HasAlarm,
		task.AlarmOffsetMinutes,
	).Scan(&task.CreatedAt, &task.LastModifiedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		notes = $3,
		is_completed = $4,
		priority = $5,
		due_date = $6,
		has_time = $7,
		has_alarm = $8,
		alarm_offset_minutes = $9,
		last_modified_at = NOW()
	WHERE id = $1
	RETURNING last_modified_at
	`

	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Notes,
		task.IsCompleted,
		task.Priority,
		nullTime(task.DueDate),
		task.HasTime,
		task.HasAlarm,
		task.AlarmOffsetMinutes,
	).Scan(&task.LastModifiedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) DeleteCompleted(ctx context.Context) ([]string, error) {
	const query = `DELETE FROM tasks WHERE is_completed RETURNING id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var due *time.Time

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Notes,
		&task.IsCompleted,
		&task.Priority,
		&due,
		&task.HasTime,
		&task.HasAlarm,
		&task.AlarmOffsetMinutes,
		&task.CreatedAt,
		&task.LastModifiedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.DueDate = due

	// Rows written by older builds may carry values outside the current
	// option sets; loading repairs them.
	task.Normalize()

	return &task, nil
}
