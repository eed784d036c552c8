package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tonynouhra/taskmanager/internal/domain"
)

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)

	open := domain.Task{Status: domain.StatusInProgress, DueDate: &past}
	assert.True(t, open.IsOverdue(now))

	blocked := domain.Task{Status: domain.StatusBlocked, DueDate: &past}
	assert.True(t, blocked.IsOverdue(now))

	notYetDue := domain.Task{Status: domain.StatusTodo, DueDate: &future}
	assert.False(t, notYetDue.IsOverdue(now))

	noDueDate := domain.Task{Status: domain.StatusTodo}
	assert.False(t, noDueDate.IsOverdue(now))

	// Terminal statuses are never overdue, however late they finished.
	done := domain.Task{Status: domain.StatusDone, DueDate: &past}
	assert.False(t, done.IsOverdue(now))

	cancelled := domain.Task{Status: domain.StatusCancelled, DueDate: &past}
	assert.False(t, cancelled.IsOverdue(now))
}
