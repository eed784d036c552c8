package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/service"
)

func TestCheckTitle(t *testing.T) {
	v := service.NewValidator()

	assert.NoError(t, v.CheckTitle("Implement login"))
	assert.ErrorIs(t, v.CheckTitle(""), domain.ErrTitleRequired)
	assert.ErrorIs(t, v.CheckTitle("   "), domain.ErrTitleRequired)
}

func TestCheckStatusPerKind(t *testing.T) {
	v := service.NewValidator()

	for _, kind := range []domain.Kind{domain.KindEpic, domain.KindUserStory, domain.KindTask} {
		assert.NoError(t, v.CheckStatus(kind, domain.StatusTodo))
		assert.NoError(t, v.CheckStatus(kind, domain.StatusInProgress))
		assert.NoError(t, v.CheckStatus(kind, domain.StatusDone))
		assert.NoError(t, v.CheckStatus(kind, domain.StatusCancelled))
		assert.ErrorIs(t, v.CheckStatus(kind, domain.Status("ARCHIVED")), domain.ErrInvalidStatus)
	}

	// BLOCKED exists only for tasks.
	assert.NoError(t, v.CheckStatus(domain.KindTask, domain.StatusBlocked))
	assert.ErrorIs(t, v.CheckStatus(domain.KindEpic, domain.StatusBlocked), domain.ErrInvalidStatus)
	assert.ErrorIs(t, v.CheckStatus(domain.KindUserStory, domain.StatusBlocked), domain.ErrInvalidStatus)
}

func TestCheckPriority(t *testing.T) {
	v := service.NewValidator()

	assert.NoError(t, v.CheckPriority(domain.PriorityLow))
	assert.NoError(t, v.CheckPriority(domain.PriorityCritical))
	assert.ErrorIs(t, v.CheckPriority(domain.Priority("URGENT")), domain.ErrInvalidPriority)
}

func TestCheckReporterNotAssignee(t *testing.T) {
	v := service.NewValidator()

	alice := "user-alice"
	bob := "user-bob"

	assert.NoError(t, v.CheckReporterNotAssignee(&alice, &bob))
	assert.NoError(t, v.CheckReporterNotAssignee(nil, &bob))
	assert.NoError(t, v.CheckReporterNotAssignee(&alice, nil))
	assert.ErrorIs(t, v.CheckReporterNotAssignee(&alice, &alice), domain.ErrReporterIsAssignee)
}

func TestCheckParent(t *testing.T) {
	v := service.NewValidator()

	assert.NoError(t, v.CheckParent("epic-1"))
	assert.ErrorIs(t, v.CheckParent(""), domain.ErrParentRequired)
}
