package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonynouhra/taskmanager/internal/domain"
)

// fakeStatusSource serves persisted statuses from a map and can be forced
// to fail to simulate an unavailable store.
type fakeStatusSource struct {
	statuses map[string]domain.Status
	err      error
}

func (f *fakeStatusSource) Status(_ context.Context, _ domain.Kind, id string) (domain.Status, error) {
	if f.err != nil {
		return "", f.err
	}
	status, ok := f.statuses[id]
	if !ok {
		return "", domain.ErrTaskNotFound
	}
	return status, nil
}

// failingQueue rejects every job.
type failingQueue struct{}

func (failingQueue) Enqueue(Job) error { return ErrQueueFull }

func TestDetectorNoEventOnCreation(t *testing.T) {
	source := &fakeStatusSource{statuses: map[string]domain.Status{}}
	queue := &SyncQueue{}
	detector := NewDetector(source, queue)

	for _, kind := range []domain.Kind{domain.KindEpic, domain.KindUserStory, domain.KindTask} {
		ch := detector.Begin(context.Background(), kind, "new-id")
		detector.Finish(ch, domain.StatusTodo)
	}

	assert.Empty(t, queue.Jobs, "creating an entity must not produce a transition event")
}

func TestDetectorNoEventOnUnchangedStatus(t *testing.T) {
	source := &fakeStatusSource{statuses: map[string]domain.Status{"task-1": domain.StatusTodo}}
	queue := &SyncQueue{}
	detector := NewDetector(source, queue)

	ch := detector.Begin(context.Background(), domain.KindTask, "task-1")
	detector.Finish(ch, domain.StatusTodo)

	assert.Empty(t, queue.Jobs, "a save that keeps the status must stay silent")
}

func TestDetectorEventOnStatusChange(t *testing.T) {
	source := &fakeStatusSource{statuses: map[string]domain.Status{"task-1": domain.StatusTodo}}
	queue := &SyncQueue{}
	detector := NewDetector(source, queue)

	ch := detector.Begin(context.Background(), domain.KindTask, "task-1")
	detector.Finish(ch, domain.StatusInProgress)

	require.Len(t, queue.Jobs, 1)
	job := queue.Jobs[0]
	assert.Equal(t, ReasonStatusChanged, job.Reason)
	assert.Equal(t, domain.KindTask, job.Kind)
	assert.Equal(t, "task-1", job.EntityID)
	assert.Equal(t, domain.StatusTodo, job.OldStatus)
	assert.Equal(t, domain.StatusInProgress, job.NewStatus)
}

func TestDetectorOneEventPerWrite(t *testing.T) {
	source := &fakeStatusSource{statuses: map[string]domain.Status{"epic-1": domain.StatusTodo}}
	queue := &SyncQueue{}
	detector := NewDetector(source, queue)

	ch := detector.Begin(context.Background(), domain.KindEpic, "epic-1")
	detector.Finish(ch, domain.StatusInProgress)

	source.statuses["epic-1"] = domain.StatusInProgress
	ch = detector.Begin(context.Background(), domain.KindEpic, "epic-1")
	detector.Finish(ch, domain.StatusDone)

	require.Len(t, queue.Jobs, 2)
	assert.Equal(t, domain.StatusTodo, queue.Jobs[0].OldStatus)
	assert.Equal(t, domain.StatusInProgress, queue.Jobs[0].NewStatus)
	assert.Equal(t, domain.StatusInProgress, queue.Jobs[1].OldStatus)
	assert.Equal(t, domain.StatusDone, queue.Jobs[1].NewStatus)
}

func TestDetectorSuppressesOnLookupFailure(t *testing.T) {
	source := &fakeStatusSource{err: errors.New("connection refused")}
	queue := &SyncQueue{}
	detector := NewDetector(source, queue)

	// The write path must survive a broken store lookup; the only loss is
	// the notification.
	ch := detector.Begin(context.Background(), domain.KindUserStory, "story-1")
	detector.Finish(ch, domain.StatusDone)

	assert.Empty(t, queue.Jobs)
}

func TestDetectorDropsEventOnEnqueueFailure(t *testing.T) {
	source := &fakeStatusSource{statuses: map[string]domain.Status{"task-1": domain.StatusTodo}}
	detector := NewDetector(source, failingQueue{})

	ch := detector.Begin(context.Background(), domain.KindTask, "task-1")

	// Must not panic or surface the error to the write path.
	detector.Finish(ch, domain.StatusDone)
}
