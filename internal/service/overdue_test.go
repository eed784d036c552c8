package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/notify"
	"github.com/tonynouhra/taskmanager/internal/service"
)

type fakeOverdueSource struct {
	tasks []*domain.Task
	err   error
}

func (f *fakeOverdueSource) FindOverdue(context.Context) ([]*domain.Task, error) {
	return f.tasks, f.err
}

func overdueTask(id string) *domain.Task {
	due := time.Now().Add(-24 * time.Hour)
	return &domain.Task{
		ID:      id,
		StoryID: "story-1",
		Title:   "Overdue " + id,
		Status:  domain.StatusInProgress,
		DueDate: &due,
	}
}

func TestRemindOverdueSubmitsOneJobPerTask(t *testing.T) {
	source := &fakeOverdueSource{tasks: []*domain.Task{overdueTask("task-1"), overdueTask("task-2")}}
	queue := &notify.SyncQueue{}
	svc := service.NewReminderService(source, queue)

	count, err := svc.RemindOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, queue.Jobs, 2)
	for i, job := range queue.Jobs {
		assert.Equal(t, notify.ReasonReminder, job.Reason)
		assert.Equal(t, domain.KindTask, job.Kind)
		assert.Empty(t, job.OldStatus)
		assert.Empty(t, job.NewStatus)
		assert.Equal(t, source.tasks[i].ID, job.EntityID)
	}
}

func TestRemindOverdueNothingDue(t *testing.T) {
	queue := &notify.SyncQueue{}
	svc := service.NewReminderService(&fakeOverdueSource{}, queue)

	count, err := svc.RemindOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, queue.Jobs)
}

func TestRemindOverdueScanFailure(t *testing.T) {
	source := &fakeOverdueSource{err: errors.New("connection refused")}
	svc := service.NewReminderService(source, &notify.SyncQueue{})

	_, err := svc.RemindOverdue(context.Background())
	assert.Error(t, err)
}

type rejectingQueue struct{ calls int }

func (q *rejectingQueue) Enqueue(notify.Job) error {
	q.calls++
	return notify.ErrQueueFull
}

func TestRemindOverdueContinuesPastEnqueueFailures(t *testing.T) {
	source := &fakeOverdueSource{tasks: []*domain.Task{overdueTask("task-1"), overdueTask("task-2")}}
	queue := &rejectingQueue{}
	svc := service.NewReminderService(source, queue)

	count, err := svc.RemindOverdue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 2, queue.calls, "every task must still be attempted")
}
