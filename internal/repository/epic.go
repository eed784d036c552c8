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

// epicColumns is the shared list of columns for epic queries.
var epicColumns = []string{
	"id", "title", "description", "status", "priority", "owner_id", "reporter_id",
	"start_date", "due_date", "created_at", "updated_at",
}

// EpicRepository handles database operations for epics.
type EpicRepository struct {
	pool *pgxpool.Pool
}

// NewEpicRepository creates a new EpicRepository.
func NewEpicRepository(pool *pgxpool.Pool) *EpicRepository {
	return &EpicRepository{pool: pool}
}

// scanEpic scans a single row into an Epic struct.
func scanEpic(row pgx.Row) (*domain.Epic, error) {
	var epic domain.Epic
	err := row.Scan(
		&epic.ID,
		&epic.Title,
		&epic.Description,
		&epic.Status,
		&epic.Priority,
		&epic.OwnerID,
		&epic.ReporterID,
		&epic.StartDate,
		&epic.DueDate,
		&epic.CreatedAt,
		&epic.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEpicNotFound
		}
		return nil, fmt.Errorf("scan epic: %w", err)
	}
	return &epic, nil
}

// scanEpics scans multiple rows into a slice of Epic structs.
func scanEpics(rows pgx.Rows) ([]*domain.Epic, error) {
	defer rows.Close()

	var epics []*domain.Epic
	for rows.Next() {
		epic, err := scanEpic(rows)
		if err != nil {
			return nil, err
		}
		epics = append(epics, epic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return epics, nil
}

// Create inserts a new epic.
func (r *EpicRepository) Create(ctx context.Context, epic *domain.Epic) (*domain.Epic, error) {
	query, args, err := psql.
		Insert("epics").
		Columns("title", "description", "status", "priority", "owner_id", "reporter_id", "start_date", "due_date").
		Values(epic.Title, epic.Description, epic.Status, epic.Priority, epic.OwnerID, epic.ReporterID, epic.StartDate, epic.DueDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for epic: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&epic.ID, &epic.CreatedAt, &epic.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create epic: %w", err)
	}

	return epic, nil
}

// GetByID retrieves an epic by ID.
func (r *EpicRepository) GetByID(ctx context.Context, epicID string) (*domain.Epic, error) {
	query, args, err := psql.
		Select(epicColumns...).
		From("epics").
		Where(sq.Eq{"id": epicID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for epic: %w", err)
	}

	return scanEpic(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves an epic by ID with FOR UPDATE lock (within transaction).
func (r *EpicRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, epicID string) (*domain.Epic, error) {
	query, args, err := psql.
		Select(epicColumns...).
		From("epics").
		Where(sq.Eq{"id": epicID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for epic %s: %w", epicID, err)
	}

	return scanEpic(tx.QueryRow(ctx, query, args...))
}

// Status returns only the persisted status of an epic. Used by the
// transition detector's before-write lookup.
func (r *EpicRepository) Status(ctx context.Context, epicID string) (domain.Status, error) {
	query, args, err := psql.
		Select("status").
		From("epics").
		Where(sq.Eq{"id": epicID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build Status query for epic: %w", err)
	}

	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrEpicNotFound
		}
		return "", fmt.Errorf("query epic status: %w", err)
	}
	return status, nil
}

// Update writes all mutable fields of an epic within a transaction.
func (r *EpicRepository) Update(ctx context.Context, tx pgx.Tx, epic *domain.Epic) error {
	query, args, err := psql.
		Update("epics").
		Set("title", epic.Title).
		Set("description", epic.Description).
		Set("status", epic.Status).
		Set("priority", epic.Priority).
		Set("reporter_id", epic.ReporterID).
		Set("start_date", epic.StartDate).
		Set("due_date", epic.DueDate).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": epic.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for epic %s: %w", epic.ID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update epic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEpicNotFound
	}

	return nil
}

// Delete removes an epic. Child user stories and their tasks cascade.
func (r *EpicRepository) Delete(ctx context.Context, epicID string) error {
	query, args, err := psql.
		Delete("epics").
		Where(sq.Eq{"id": epicID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for epic: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete epic: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEpicNotFound
	}

	return nil
}

// EpicListFilters holds the supported filters for epic listing.
type EpicListFilters struct {
	Statuses   []string
	Priorities []string
	OwnerID    *string
	Limit      int
	Offset     int
}

// List retrieves epics with filters and pagination, newest first.
func (r *EpicRepository) List(ctx context.Context, filters EpicListFilters) ([]*domain.Epic, int, error) {
	applyFilters := func(qb sq.SelectBuilder) sq.SelectBuilder {
		if len(filters.Statuses) > 0 {
			qb = qb.Where(sq.Eq{"status": filters.Statuses})
		}
		if len(filters.Priorities) > 0 {
			qb = qb.Where(sq.Eq{"priority": filters.Priorities})
		}
		if filters.OwnerID != nil {
			qb = qb.Where(sq.Eq{"owner_id": *filters.OwnerID})
		}
		return qb
	}

	qb := applyFilters(psql.Select(epicColumns...).From("epics")).
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query for epics: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query epics: %w", err)
	}

	epics, err := scanEpics(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := applyFilters(psql.Select("COUNT(*)").From("epics")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query for epics: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count epics: %w", err)
	}

	return epics, total, nil
}

// Progress holds child counts used for completion percentages.
type Progress struct {
	Total int
	Done  int
}

// CompletionPercentage computes the completed share, 0 when there are no children.
func (p Progress) CompletionPercentage() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total) * 100
}

// StoryProgress returns the user story counts for an epic.
func (r *EpicRepository) StoryProgress(ctx context.Context, epicID string) (Progress, error) {
	var p Progress
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'DONE')
		FROM user_stories
		WHERE epic_id = $1
	`, epicID).Scan(&p.Total, &p.Done)
	if err != nil {
		return Progress{}, fmt.Errorf("query story progress for epic %s: %w", epicID, err)
	}
	return p, nil
}
