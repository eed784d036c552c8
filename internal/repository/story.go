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

// storyColumns is the shared list of columns for user story queries.
var storyColumns = []string{
	"id", "epic_id", "title", "description", "as_a", "i_want", "so_that",
	"status", "priority", "assignee_id", "reporter_id", "story_points",
	"start_date", "due_date", "created_at", "updated_at",
}

// StoryRepository handles database operations for user stories.
type StoryRepository struct {
	pool *pgxpool.Pool
}

// NewStoryRepository creates a new StoryRepository.
func NewStoryRepository(pool *pgxpool.Pool) *StoryRepository {
	return &StoryRepository{pool: pool}
}

// scanStory scans a single row into a UserStory struct.
func scanStory(row pgx.Row) (*domain.UserStory, error) {
	var story domain.UserStory
	err := row.Scan(
		&story.ID,
		&story.EpicID,
		&story.Title,
		&story.Description,
		&story.AsA,
		&story.IWant,
		&story.SoThat,
		&story.Status,
		&story.Priority,
		&story.AssigneeID,
		&story.ReporterID,
		&story.StoryPoints,
		&story.StartDate,
		&story.DueDate,
		&story.CreatedAt,
		&story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("scan user story: %w", err)
	}
	return &story, nil
}

// scanStories scans multiple rows into a slice of UserStory structs.
func scanStories(rows pgx.Rows) ([]*domain.UserStory, error) {
	defer rows.Close()

	var stories []*domain.UserStory
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return stories, nil
}

// Create inserts a new user story.
func (r *StoryRepository) Create(ctx context.Context, story *domain.UserStory) (*domain.UserStory, error) {
	query, args, err := psql.
		Insert("user_stories").
		Columns("epic_id", "title", "description", "as_a", "i_want", "so_that",
			"status", "priority", "assignee_id", "reporter_id", "story_points",
			"start_date", "due_date").
		Values(story.EpicID, story.Title, story.Description, story.AsA, story.IWant, story.SoThat,
			story.Status, story.Priority, story.AssigneeID, story.ReporterID, story.StoryPoints,
			story.StartDate, story.DueDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for user story: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&story.ID, &story.CreatedAt, &story.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create user story: %w", err)
	}

	return story, nil
}

// GetByID retrieves a user story by ID.
func (r *StoryRepository) GetByID(ctx context.Context, storyID string) (*domain.UserStory, error) {
	query, args, err := psql.
		Select(storyColumns...).
		From("user_stories").
		Where(sq.Eq{"id": storyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for user story: %w", err)
	}

	return scanStory(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a user story by ID with FOR UPDATE lock (within transaction).
func (r *StoryRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, storyID string) (*domain.UserStory, error) {
	query, args, err := psql.
		Select(storyColumns...).
		From("user_stories").
		Where(sq.Eq{"id": storyID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for user story %s: %w", storyID, err)
	}

	return scanStory(tx.QueryRow(ctx, query, args...))
}

// Status returns only the persisted status of a user story. Used by the
// transition detector's before-write lookup.
func (r *StoryRepository) Status(ctx context.Context, storyID string) (domain.Status, error) {
	query, args, err := psql.
		Select("status").
		From("user_stories").
		Where(sq.Eq{"id": storyID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build Status query for user story: %w", err)
	}

	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrStoryNotFound
		}
		return "", fmt.Errorf("query user story status: %w", err)
	}
	return status, nil
}

// Update writes all mutable fields of a user story within a transaction.
func (r *StoryRepository) Update(ctx context.Context, tx pgx.Tx, story *domain.UserStory) error {
	query, args, err := psql.
		Update("user_stories").
		Set("title", story.Title).
		Set("description", story.Description).
		Set("as_a", story.AsA).
		Set("i_want", story.IWant).
		Set("so_that", story.SoThat).
		Set("status", story.Status).
		Set("priority", story.Priority).
		Set("assignee_id", story.AssigneeID).
		Set("reporter_id", story.ReporterID).
		Set("story_points", story.StoryPoints).
		Set("start_date", story.StartDate).
		Set("due_date", story.DueDate).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": story.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Update query for user story %s: %w", story.ID, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStoryNotFound
	}

	return nil
}

// Delete removes a user story. Child tasks cascade.
func (r *StoryRepository) Delete(ctx context.Context, storyID string) error {
	query, args, err := psql.
		Delete("user_stories").
		Where(sq.Eq{"id": storyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for user story: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete user story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStoryNotFound
	}

	return nil
}

// StoryListFilters holds the supported filters for user story listing.
type StoryListFilters struct {
	EpicID     *string
	Statuses   []string
	Priorities []string
	AssigneeID *string
	Limit      int
	Offset     int
}

// List retrieves user stories with filters and pagination, newest first.
func (r *StoryRepository) List(ctx context.Context, filters StoryListFilters) ([]*domain.UserStory, int, error) {
	applyFilters := func(qb sq.SelectBuilder) sq.SelectBuilder {
		if filters.EpicID != nil {
			qb = qb.Where(sq.Eq{"epic_id": *filters.EpicID})
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

	qb := applyFilters(psql.Select(storyColumns...).From("user_stories")).
		OrderBy("created_at DESC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query for user stories: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query user stories: %w", err)
	}

	stories, err := scanStories(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery, countArgs, err := applyFilters(psql.Select("COUNT(*)").From("user_stories")).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query for user stories: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count user stories: %w", err)
	}

	return stories, total, nil
}

// TaskProgress returns the task counts for a user story.
func (r *StoryRepository) TaskProgress(ctx context.Context, storyID string) (Progress, error) {
	var p Progress
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'DONE')
		FROM tasks
		WHERE story_id = $1
	`, storyID).Scan(&p.Total, &p.Done)
	if err != nil {
		return Progress{}, fmt.Errorf("query task progress for story %s: %w", storyID, err)
	}
	return p, nil
}
