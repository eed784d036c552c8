package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tonynouhra/taskmanager/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "story_id", "title", "description", "status", "priority",
	"assignee_id", "reporter_id", "estimated_hours", "actual_hours",
	"due_date", "completed_at", "created_at", "updated_at",
}

// TaskRepository handles database operations for tasks.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.StoryID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.AssigneeID,
		&task.ReporterID,
		&task.EstimatedHours,
		&task.ActualHours,
		&task.DueDate,
		&task.CompletedAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &task, nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	query, args, err := psql.
		Insert("tasks").
		Columns("story_id", "title", "description", "status", "priority",
			"assignee_id", "reporter_id", "estimated_hours", "actual_hours",
			"due_date", "completed_at").
		Values(task.StoryID, task.Title, task.Description, task.Status, task.Priority,
			task.AssigneeID, task.ReporterID, task.EstimatedHours, task.ActualHours,
			task.DueDate, task.CompletedAt).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	return task, nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task: %w", err)
	}

	return scanTask(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a task by ID with FOR UPDATE lock (within transaction).
func (r *TaskRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, taskID string) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for task %s: %w", taskID, err)
	}

	return scanTask(tx.QueryRow(ctx, query, args...))
}

// Status returns only the persisted status of a task. Used by the
// transition detector's before-write lookup.
func (r *TaskRepository) Status(ctx context.Context, taskID string) (domain.Status, error) {
	query, args, err := psql.
		Select("status").
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build Status query for task: %w", err)
	}

	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrTaskNotFound
		}
		return "", fmt.Errorf("query task status: %w", err)
	}
	return status, nil
}

// Update writes all mutable fields of a task within a transaction.
func (r *TaskRepository) Update(ctx context.Context, tx pgx.Tx, task *domain.Task) error {
	query, args, err := psql.
		Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("status", task.Status).
		Set("priority", task.Priority).
		Set("assignee_id", task.AssigneeID).
		Set("reporter_id", task.ReporterID).
		Set("estimated_hours", task.EstimatedHours).
		Set("actual_hours", task.ActualHours).
		Set("due_date", task.DueDate).
		Set("completed_at", task.CompletedAt).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": task.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for task %s: %w", task.ID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// TaskListFilters holds the supported filters for task listing.
type TaskListFilters struct {
	StoryID    *string
	Statuses   []string
	Priorities []string
	AssigneeID *string
	Limit      int
	Offset     int
}

// List retrieves tasks with filters and pagination, newest first.
func (r *TaskRepository) List(ctx context.Context, filters TaskListFilters) ([]*domain.Task, int, error) {
	applyFilters := func(qb sq.SelectBuilder) sq.SelectBuilder {
		if filters.StoryID != nil {
			qb = qb.Where(sq.Eq{"story_id": *filters.StoryID})
		}
		if len(filters.Statuses) > 0 {
			qb = qb.Where(sq.Eq{"status": filters.Statuses})
		}
		if len(filters.Priorities) > 0 {
			qb = qb.Where(sq.Eq{"priority": filters.Priorities})
		}
		if filters.AssigneeID != nil {
			qb = qb.Where(sq.Eq{"assignee_id": *filters.AssigneeID})
		}
		return qb
	}

	qb := applyFilters(psql.Select(taskColumns...).From("tasks")).
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query for tasks: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query tasks: %w", err)
	}

	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := applyFilters(psql.Select("COUNT(*)").From("tasks")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query for tasks: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	return tasks, total, nil
}

// FindOverdue finds open tasks whose due date has passed. DONE and
// CANCELLED tasks are excluded; tasks without a due date never match.
func (r *TaskRepository) FindOverdue(ctx context.Context) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where("due_date < NOW()").
		Where(sq.Eq{"status": []domain.Status{
			domain.StatusTodo,
			domain.StatusInProgress,
			domain.StatusBlocked,
		}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build FindOverdue query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query overdue tasks: %w", err)
	}

	return scanTasks(rows)
}
