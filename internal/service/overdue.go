package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/notify"
)

// OverdueSource lists the open tasks past their due date.
type OverdueSource interface {
	FindOverdue(ctx context.Context) ([]*domain.Task, error)
}

// ReminderService produces the daily overdue reminders: one notification
// job per overdue task per run. A task stays in the scan until it is
// completed, cancelled, or its due date moves.
type ReminderService struct {
	overdue OverdueSource
	queue   notify.Queue
}

// NewReminderService creates a new ReminderService.
func NewReminderService(overdue OverdueSource, queue notify.Queue) *ReminderService {
	return &ReminderService{overdue: overdue, queue: queue}
}

// RemindOverdue scans for overdue tasks and submits a reminder job for
// each. Returns the number of jobs submitted. Enqueue failures are logged
// and counted, and do not stop the scan.
func (s *ReminderService) RemindOverdue(ctx context.Context) (int, error) {
	tasks, err := s.overdue.FindOverdue(ctx)
	if err != nil {
		return 0, fmt.Errorf("find overdue tasks: %w", err)
	}

	if len(tasks) == 0 {
		slog.Info("no overdue tasks found")
		return 0, nil
	}

	submitted := 0
	dropped := 0
	for _, task := range tasks {
		err := s.queue.Enqueue(notify.Job{
			Reason:   notify.ReasonReminder,
			Kind:     domain.KindTask,
			EntityID: task.ID,
		})
		if err != nil {
			slog.Error("failed to enqueue overdue reminder",
				"task_id", task.ID,
				"error", err,
			)
			dropped++
			continue
		}
		submitted++
	}

	slog.Info("overdue reminder scan finished",
		"total", len(tasks),
		"submitted", submitted,
		"dropped", dropped,
	)

	return submitted, nil
}
