package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tonynouhra/taskmanager/internal/domain"
)

// WorkItemDirectory provides kind-generic point lookups across the three
// work item tables. It backs the transition detector's before-write status
// fetch and the notification worker's re-fetch.
type WorkItemDirectory struct {
	pool    *pgxpool.Pool
	epics   *EpicRepository
	stories *StoryRepository
	tasks   *TaskRepository
}

// NewWorkItemDirectory creates a new WorkItemDirectory.
func NewWorkItemDirectory(pool *pgxpool.Pool, epics *EpicRepository, stories *StoryRepository, tasks *TaskRepository) *WorkItemDirectory {
	return &WorkItemDirectory{pool: pool, epics: epics, stories: stories, tasks: tasks}
}

// Status returns the persisted status of the work item identified by kind and id.
func (d *WorkItemDirectory) Status(ctx context.Context, kind domain.Kind, id string) (domain.Status, error) {
	switch kind {
	case domain.KindEpic:
		return d.epics.Status(ctx, id)
	case domain.KindUserStory:
		return d.stories.Status(ctx, id)
	case domain.KindTask:
		return d.tasks.Status(ctx, id)
	default:
		return "", domain.ErrInvalidKind
	}
}

// notFoundFor maps a kind to its not-found sentinel.
func notFoundFor(kind domain.Kind) error {
	switch kind {
	case domain.KindEpic:
		return domain.ErrEpicNotFound
	case domain.KindUserStory:
		return domain.ErrStoryNotFound
	default:
		return domain.ErrTaskNotFound
	}
}

// targetQueries joins each work item table against users to resolve the
// primary actor's and reporter's email in a single lookup. Epic's primary
// actor is its owner; stories and tasks use the assignee.
var targetQueries = map[domain.Kind]string{
	domain.KindEpic: `
		SELECT e.id, e.title, e.priority, e.status,
		       COALESCE(p.email, ''), COALESCE(rep.email, '')
		FROM epics e
		LEFT JOIN users p ON p.id = e.owner_id
		LEFT JOIN users rep ON rep.id = e.reporter_id
		WHERE e.id = $1`,
	domain.KindUserStory: `
		SELECT s.id, s.title, s.priority, s.status,
		       COALESCE(p.email, ''), COALESCE(rep.email, '')
		FROM user_stories s
		LEFT JOIN users p ON p.id = s.assignee_id
		LEFT JOIN users rep ON rep.id = s.reporter_id
		WHERE s.id = $1`,
	domain.KindTask: `
		SELECT t.id, t.title, t.priority, t.status,
		       COALESCE(p.email, ''), COALESCE(rep.email, '')
		FROM tasks t
		LEFT JOIN users p ON p.id = t.assignee_id
		LEFT JOIN users rep ON rep.id = t.reporter_id
		WHERE t.id = $1`,
}

// NotificationTarget fetches the notification projection for a work item.
func (d *WorkItemDirectory) NotificationTarget(ctx context.Context, kind domain.Kind, id string) (*domain.NotificationTarget, error) {
	query, ok := targetQueries[kind]
	if !ok {
		return nil, domain.ErrInvalidKind
	}

	target := domain.NotificationTarget{Kind: kind}
	err := d.pool.QueryRow(ctx, query, id).Scan(
		&target.ID,
		&target.Title,
		&target.Priority,
		&target.Status,
		&target.PrimaryEmail,
		&target.ReporterEmail,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundFor(kind)
		}
		return nil, fmt.Errorf("query notification target for %s %s: %w", kind, id, err)
	}

	return &target, nil
}
