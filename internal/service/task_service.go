package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/notify"
	"github.com/tonynouhra/taskmanager/internal/repository"
)

// TaskService coordinates task operations.
type TaskService struct {
	pool      *pgxpool.Pool
	taskRepo  *repository.TaskRepository
	storyRepo *repository.StoryRepository
	detector  *notify.Detector
	validator *Validator
	now       func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	storyRepo *repository.StoryRepository,
	detector *notify.Detector,
) *TaskService {
	return &TaskService{
		pool:      pool,
		taskRepo:  taskRepo,
		storyRepo: storyRepo,
		detector:  detector,
		validator: NewValidator(),
		now:       time.Now,
	}
}

// CreateTask validates and persists a new task under an existing user
// story. Creation never produces a status change notification.
func (s *TaskService) CreateTask(ctx context.Context, task *domain.Task, creatorID string) (*domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.ReporterID == nil {
		reporter := creatorID
		task.ReporterID = &reporter
	}

	if err := s.validator.CheckTitle(task.Title); err != nil {
		return nil, err
	}
	if err := s.validator.CheckParent(task.StoryID); err != nil {
		return nil, err
	}
	if err := s.validator.CheckStatus(domain.KindTask, task.Status); err != nil {
		return nil, err
	}
	if err := s.validator.CheckPriority(task.Priority); err != nil {
		return nil, err
	}
	if err := s.validator.CheckReporterNotAssignee(task.AssigneeID, task.ReporterID); err != nil {
		return nil, err
	}

	if _, err := s.storyRepo.GetByID(ctx, task.StoryID); err != nil {
		return nil, err
	}

	if task.Status == domain.StatusDone && task.CompletedAt == nil {
		now := s.now()
		task.CompletedAt = &now
	}

	created, err := s.taskRepo.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	slog.Info("task created", "task_id", created.ID, "story_id", created.StoryID)

	return created, nil
}

// GetTask fetches a single task.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.taskRepo.GetByID(ctx, taskID)
}

// ListTasks returns a filtered page of tasks with the total count.
func (s *TaskService) ListTasks(ctx context.Context, filters repository.TaskListFilters) ([]*domain.Task, int, error) {
	return s.taskRepo.List(ctx, filters)
}

// ListOverdueTasks returns every open task past its due date.
func (s *TaskService) ListOverdueTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.taskRepo.FindOverdue(ctx)
}

// TaskStats computes aggregate task counts for the given scope.
func (s *TaskService) TaskStats(ctx context.Context, filters repository.TaskStatsFilters) (*repository.TaskStatsResult, error) {
	return s.taskRepo.GetTaskStats(ctx, filters)
}

// StatusCounts returns the per-status breakdown for one work item kind.
func (s *TaskService) StatusCounts(ctx context.Context, kind domain.Kind) (map[domain.Status]int, error) {
	if !kind.IsValid() {
		return nil, domain.ErrInvalidKind
	}
	return s.taskRepo.GetStatusCounts(ctx, kind)
}

// TaskUpdate carries the fields of a partial task update. Nil means
// "leave unchanged".
type TaskUpdate struct {
	Title          *string
	Description    *string
	Status         *domain.Status
	Priority       *domain.Priority
	AssigneeID     *string
	ReporterID     *string
	EstimatedHours *float64
	ActualHours    *float64
	DueDate        *time.Time
}

// UpdateTask applies a partial update under a row lock. Completion time
// tracks the DONE status: set on entry, cleared on exit. When the write
// changes the status field, exactly one status change notification is
// submitted after the transaction commits.
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, upd TaskUpdate) (*domain.Task, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	change := s.detector.Begin(ctx, domain.KindTask, taskID)

	oldStatus := task.Status

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		task.Status = *upd.Status
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.AssigneeID != nil {
		task.AssigneeID = upd.AssigneeID
	}
	if upd.ReporterID != nil {
		task.ReporterID = upd.ReporterID
	}
	if upd.EstimatedHours != nil {
		task.EstimatedHours = upd.EstimatedHours
	}
	if upd.ActualHours != nil {
		task.ActualHours = upd.ActualHours
	}
	if upd.DueDate != nil {
		task.DueDate = upd.DueDate
	}

	if err := s.validator.CheckTitle(task.Title); err != nil {
		return nil, err
	}
	if err := s.validator.CheckStatus(domain.KindTask, task.Status); err != nil {
		return nil, err
	}
	if err := s.validator.CheckPriority(task.Priority); err != nil {
		return nil, err
	}
	if err := s.validator.CheckReporterNotAssignee(task.AssigneeID, task.ReporterID); err != nil {
		return nil, err
	}

	if task.Status == domain.StatusDone && oldStatus != domain.StatusDone {
		now := s.now()
		task.CompletedAt = &now
	}
	if task.Status != domain.StatusDone && oldStatus == domain.StatusDone {
		task.CompletedAt = nil
	}

	if err := s.taskRepo.Update(ctx, tx, task); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.detector.Finish(change, task.Status)

	slog.Info("task updated", "task_id", task.ID, "status", task.Status)

	return task, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}
	slog.Info("task deleted", "task_id", taskID)
	return nil
}
