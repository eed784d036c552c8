package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/tonynouhra/taskmanager/internal/domain"
)

// TaskStatsFilters narrows statistics to a subtree or assignee.
type TaskStatsFilters struct {
	StoryID    *string
	EpicID     *string
	AssigneeID *string
}

// TaskStatsResult holds aggregated task counts.
type TaskStatsResult struct {
	Total      int
	ByStatus   map[domain.Status]int
	ByPriority map[domain.Priority]int
	Overdue    int
}

// statusBreakdown counts rows grouped by status for the given table.
func (r *TaskRepository) statusBreakdown(ctx context.Context, qb sq.SelectBuilder) (map[domain.Status]int, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status breakdown query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query status breakdown: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status domain.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status rows: %w", err)
	}
	return counts, nil
}

// taskStatsBase builds the filtered FROM clause shared by all task stats queries.
func taskStatsBase(filters TaskStatsFilters, columns ...string) sq.SelectBuilder {
	qb := psql.Select(columns...).From("tasks t")
	if filters.EpicID != nil {
		qb = qb.Join("user_stories s ON s.id = t.story_id").
			Where(sq.Eq{"s.epic_id": *filters.EpicID})
	}
	if filters.StoryID != nil {
		qb = qb.Where(sq.Eq{"t.story_id": *filters.StoryID})
	}
	if filters.AssigneeID != nil {
		qb = qb.Where(sq.Eq{"t.assignee_id": *filters.AssigneeID})
	}
	return qb
}

// GetTaskStats aggregates task counts by status and priority, plus the
// overdue count, optionally scoped to a story, epic, or assignee.
func (r *TaskRepository) GetTaskStats(ctx context.Context, filters TaskStatsFilters) (*TaskStatsResult, error) {
	byStatus, err := r.statusBreakdown(ctx, taskStatsBase(filters, "t.status", "COUNT(*)").GroupBy("t.status"))
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range byStatus {
		total += count
	}

	byPriority := make(map[domain.Priority]int)
	query, args, err := taskStatsBase(filters, "t.priority", "COUNT(*)").GroupBy("t.priority").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build priority breakdown query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query priority breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var priority domain.Priority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		byPriority[priority] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priority rows: %w", err)
	}

	overdueQb := taskStatsBase(filters, "COUNT(*)").
		Where("t.due_date < NOW()").
		Where(sq.Eq{"t.status": []domain.Status{
			domain.StatusTodo,
			domain.StatusInProgress,
			domain.StatusBlocked,
		}})
	overdueQuery, overdueArgs, err := overdueQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overdue count query: %w", err)
	}

	var overdue int
	if err := r.pool.QueryRow(ctx, overdueQuery, overdueArgs...).Scan(&overdue); err != nil {
		return nil, fmt.Errorf("count overdue tasks: %w", err)
	}

	return &TaskStatsResult{
		Total:      total,
		ByStatus:   byStatus,
		ByPriority: byPriority,
		Overdue:    overdue,
	}, nil
}

// kindTables maps work item kinds to their backing tables.
var kindTables = map[domain.Kind]string{
	domain.KindEpic:      "epics",
	domain.KindUserStory: "user_stories",
	domain.KindTask:      "tasks",
}

// GetStatusCounts returns the status breakdown for a single work item kind.
func (r *TaskRepository) GetStatusCounts(ctx context.Context, kind domain.Kind) (map[domain.Status]int, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, domain.ErrInvalidKind
	}

	return r.statusBreakdown(ctx, psql.Select("status", "COUNT(*)").From(table).GroupBy("status"))
}
