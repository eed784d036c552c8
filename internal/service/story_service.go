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

// StoryService coordinates user story operations.
type StoryService struct {
	pool      *pgxpool.Pool
	storyRepo *repository.StoryRepository
	epicRepo  *repository.EpicRepository
	detector  *notify.Detector
	validator *Validator
}

// NewStoryService creates a new StoryService.
func NewStoryService(
	pool *pgxpool.Pool,
	storyRepo *repository.StoryRepository,
	epicRepo *repository.EpicRepository,
	detector *notify.Detector,
) *StoryService {
	return &StoryService{
		pool:      pool,
		storyRepo: storyRepo,
		epicRepo:  epicRepo,
		detector:  detector,
		validator: NewValidator(),
	}
}

// CreateStory validates and persists a new user story under an existing
// epic. Creation never produces a status change notification.
func (s *StoryService) CreateStory(ctx context.Context, story *domain.UserStory, creatorID string) (*domain.UserStory, error) {
	if story.Status == "" {
		story.Status = domain.StatusTodo
	}
	if story.Priority == "" {
		story.Priority = domain.PriorityMedium
	}
	if story.ReporterID == nil {
		reporter := creatorID
		story.ReporterID = &reporter
	}

	if err := s.validator.CheckTitle(story.Title); err != nil {
		return nil, err
	}
	if err := s.validator.CheckParent(story.EpicID); err != nil {
		return nil, err
	}
	if err := s.validator.CheckStatus(domain.KindUserStory, story.Status); err != nil {
		return nil, err
	}
	if err := s.validator.CheckPriority(story.Priority); err != nil {
		return nil, err
	}
	if err := s.validator.CheckReporterNotAssignee(story.AssigneeID, story.ReporterID); err != nil {
		return nil, err
	}

	if _, err := s.epicRepo.GetByID(ctx, story.EpicID); err != nil {
		return nil, err
	}

	created, err := s.storyRepo.Create(ctx, story)
	if err != nil {
		return nil, err
	}

	slog.Info("user story created", "story_id", created.ID, "epic_id", created.EpicID)

	return created, nil
}

// GetStory fetches a single user story.
func (s *StoryService) GetStory(ctx context.Context, storyID string) (*domain.UserStory, error) {
	return s.storyRepo.GetByID(ctx, storyID)
}

// ListStories returns a filtered page of user stories with the total count.
func (s *StoryService) ListStories(ctx context.Context, filters repository.StoryListFilters) ([]*domain.UserStory, int, error) {
	return s.storyRepo.List(ctx, filters)
}

// StoryProgress computes the story's completion from its tasks.
func (s *StoryService) StoryProgress(ctx context.Context, storyID string) (repository.Progress, error) {
	if _, err := s.storyRepo.GetByID(ctx, storyID); err != nil {
		return repository.Progress{}, err
	}
	return s.storyRepo.TaskProgress(ctx, storyID)
}

// StoryUpdate carries the fields of a partial user story update. Nil means
// "leave unchanged".
type StoryUpdate struct {
	Title       *string
	Description *string
	AsA         *string
	IWant       *string
	SoThat      *string
	Status      *domain.Status
	Priority    *domain.Priority
	AssigneeID  *string
	ReporterID  *string
	StoryPoints *int
	StartDate   *time.Time
	DueDate     *time.Time
}

// UpdateStory applies a partial update under a row lock. When the write
// changes the status field, exactly one status change notification is
// submitted after the transaction commits.
func (s *StoryService) UpdateStory(ctx context.Context, storyID string, upd StoryUpdate) (*domain.UserStory, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	story, err := s.storyRepo.GetByIDForUpdate(ctx, tx, storyID)
	if err != nil {
		return nil, err
	}

	change := s.detector.Begin(ctx, domain.KindUserStory, storyID)

	if upd.Title != nil {
		story.Title = *upd.Title
	}
	if upd.Description != nil {
		story.Description = *upd.Description
	}
	if upd.AsA != nil {
		story.AsA = *upd.AsA
	}
	if upd.IWant != nil {
		story.IWant = *upd.IWant
	}
	if upd.SoThat != nil {
		story.SoThat = *upd.SoThat
	}
	if upd.Status != nil {
		story.Status = *upd.Status
	}
	if upd.Priority != nil {
		story.Priority = *upd.Priority
	}
	if upd.AssigneeID != nil {
		story.AssigneeID = upd.AssigneeID
	}
	if upd.ReporterID != nil {
		story.ReporterID = upd.ReporterID
	}
	if upd.StoryPoints != nil {
		story.StoryPoints = upd.StoryPoints
	}
	if upd.StartDate != nil {
		story.StartDate = upd.StartDate
	}
	if upd.DueDate != nil {
		story.DueDate = upd.DueDate
	}

	if err := s.validator.CheckTitle(story.Title); err != nil {
		return nil, err
	}
	if err := s.validator.CheckStatus(domain.KindUserStory, story.Status); err != nil {
		return nil, err
	}
	if err := s.validator.CheckPriority(story.Priority); err != nil {
		return nil, err
	}
	if err := s.validator.CheckReporterNotAssignee(story.AssigneeID, story.ReporterID); err != nil {
		return nil, err
	}

	if err := s.storyRepo.Update(ctx, tx, story); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.detector.Finish(change, story.Status)

	slog.Info("user story updated", "story_id", story.ID, "status", story.Status)

	return story, nil
}

// DeleteStory removes a user story and its tasks.
func (s *StoryService) DeleteStory(ctx context.Context, storyID string) error {
	if err := s.storyRepo.Delete(ctx, storyID); err != nil {
		return err
	}
	slog.Info("user story deleted", "story_id", storyID)
	return nil
}
