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

// EpicService coordinates epic operations.
type EpicService struct {
	pool      *pgxpool.Pool
	epicRepo  *repository.EpicRepository
	detector  *notify.Detector
	validator *Validator
}

// NewEpicService creates a new EpicService.
func NewEpicService(pool *pgxpool.Pool, epicRepo *repository.EpicRepository, detector *notify.Detector) *EpicService {
	return &EpicService{
		pool:      pool,
		epicRepo:  epicRepo,
		detector:  detector,
		validator: NewValidator(),
	}
}

// CreateEpic validates and persists a new epic. Creation never produces a
// status change notification.
func (s *EpicService) CreateEpic(ctx context.Context, epic *domain.Epic) (*domain.Epic, error) {
	if epic.Status == "" {
		epic.Status = domain.StatusTodo
	}
	if epic.Priority == "" {
		epic.Priority = domain.PriorityMedium
	}
	if epic.ReporterID == nil {
		reporter := epic.OwnerID
		epic.ReporterID = &reporter
	}

	if err := s.validator.CheckTitle(epic.Title); err != nil {
		return nil, err
	}
	if err := s.validator.CheckStatus(domain.KindEpic, epic.Status); err != nil {
		return nil, err
	}
	if err := s.validator.CheckPriority(epic.Priority); err != nil {
		return nil, err
	}

	created, err := s.epicRepo.Create(ctx, epic)
	if err != nil {
		return nil, err
	}

	slog.Info("epic created", "epic_id", created.ID, "owner_id", created.OwnerID)

	return created, nil
}

// GetEpic fetches a single epic.
func (s *EpicService) GetEpic(ctx context.Context, epicID string) (*domain.Epic, error) {
	return s.epicRepo.GetByID(ctx, epicID)
}

// ListEpics returns a filtered page of epics with the total count.
func (s *EpicService) ListEpics(ctx context.Context, filters repository.EpicListFilters) ([]*domain.Epic, int, error) {
	return s.epicRepo.List(ctx, filters)
}

// EpicProgress computes the epic's completion from its user stories.
func (s *EpicService) EpicProgress(ctx context.Context, epicID string) (repository.Progress, error) {
	if _, err := s.epicRepo.GetByID(ctx, epicID); err != nil {
		return repository.Progress{}, err
	}
	return s.epicRepo.StoryProgress(ctx, epicID)
}

// EpicUpdate carries the fields of a partial epic update. Nil means
// "leave unchanged".
type EpicUpdate struct {
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	ReporterID  *string
	StartDate   *time.Time
	DueDate     *time.Time
}

// UpdateEpic applies a partial update under a row lock. When the write
// changes the status field, exactly one status change notification is
// submitted after the transaction commits.
func (s *EpicService) UpdateEpic(ctx context.Context, epicID string, upd EpicUpdate) (*domain.Epic, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	epic, err := s.epicRepo.GetByIDForUpdate(ctx, tx, epicID)
	if err != nil {
		return nil, err
	}

	change := s.detector.Begin(ctx, domain.KindEpic, epicID)

	if upd.Title != nil {
		epic.Title = *upd.Title
	}
	if upd.Description != nil {
		epic.Description = *upd.Description
	}
	if upd.Status != nil {
		epic.Status = *upd.Status
	}
	if upd.Priority != nil {
		epic.Priority = *upd.Priority
	}
	if upd.ReporterID != nil {
		epic.ReporterID = upd.ReporterID
	}
	if upd.StartDate != nil {
		epic.StartDate = upd.StartDate
	}
	if upd.DueDate != nil {
		epic.DueDate = upd.DueDate
	}

	if err := s.validator.CheckTitle(epic.Title); err != nil {
		return nil, err
	}
	if err := s.validator.CheckStatus(domain.KindEpic, epic.Status); err != nil {
		return nil, err
	}
	if err := s.validator.CheckPriority(epic.Priority); err != nil {
		return nil, err
	}

	if err := s.epicRepo.Update(ctx, tx, epic); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.detector.Finish(change, epic.Status)

	slog.Info("epic updated", "epic_id", epic.ID, "status", epic.Status)

	return epic, nil
}

// DeleteEpic removes an epic. Its user stories and their tasks go with it.
func (s *EpicService) DeleteEpic(ctx context.Context, epicID string) error {
	if err := s.epicRepo.Delete(ctx, epicID); err != nil {
		return err
	}
	slog.Info("epic deleted", "epic_id", epicID)
	return nil
}
