package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonynouhra/taskmanager/internal/domain"
)

// fakeTargetSource serves notification targets from a map.
type fakeTargetSource struct {
	targets map[string]*domain.NotificationTarget
}

func (f *fakeTargetSource) NotificationTarget(_ context.Context, kind domain.Kind, id string) (*domain.NotificationTarget, error) {
	target, ok := f.targets[id]
	if !ok {
		switch kind {
		case domain.KindEpic:
			return nil, domain.ErrEpicNotFound
		case domain.KindUserStory:
			return nil, domain.ErrStoryNotFound
		default:
			return nil, domain.ErrTaskNotFound
		}
	}
	return target, nil
}

// sentMail records a single Send call.
type sentMail struct {
	Subject    string
	Body       string
	Recipients []string
}

// fakeMailer records sends and can be forced to fail.
type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, subject, body string, recipients []string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{Subject: subject, Body: body, Recipients: recipients})
	return nil
}

func taskTarget() *domain.NotificationTarget {
	return &domain.NotificationTarget{
		Kind:          domain.KindTask,
		ID:            "task-1",
		Title:         "Write unit tests",
		Priority:      domain.PriorityHigh,
		Status:        domain.StatusInProgress,
		PrimaryEmail:  "assignee@example.com",
		ReporterEmail: "reporter@example.com",
	}
}

func statusChangeJob() Job {
	return Job{
		Reason:    ReasonStatusChanged,
		Kind:      domain.KindTask,
		EntityID:  "task-1",
		OldStatus: domain.StatusTodo,
		NewStatus: domain.StatusInProgress,
	}
}

func TestNotifierSendsStatusChangeMail(t *testing.T) {
	targets := &fakeTargetSource{targets: map[string]*domain.NotificationTarget{"task-1": taskTarget()}}
	mailer := &fakeMailer{}
	notifier := NewNotifier(targets, mailer)

	outcome := notifier.Handle(context.Background(), statusChangeJob())

	assert.Equal(t, "email sent to assignee@example.com, reporter@example.com", outcome)
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, "Task Status Changed: Write unit tests", mail.Subject)
	assert.Contains(t, mail.Body, "Previous Status: TODO")
	assert.Contains(t, mail.Body, "New Status: IN_PROGRESS")
	assert.Contains(t, mail.Body, "Priority: HIGH")
	assert.Equal(t, []string{"assignee@example.com", "reporter@example.com"}, mail.Recipients)
}

func TestNotifierNoRecipients(t *testing.T) {
	target := taskTarget()
	target.PrimaryEmail = ""
	target.ReporterEmail = ""
	targets := &fakeTargetSource{targets: map[string]*domain.NotificationTarget{"task-1": target}}
	mailer := &fakeMailer{}
	notifier := NewNotifier(targets, mailer)

	outcome := notifier.Handle(context.Background(), statusChangeJob())

	assert.Equal(t, "no recipients with a valid email address", outcome)
	assert.Empty(t, mailer.sent, "mail transport must not be called without recipients")
}

func TestNotifierEntityVanished(t *testing.T) {
	targets := &fakeTargetSource{targets: map[string]*domain.NotificationTarget{}}
	mailer := &fakeMailer{}
	notifier := NewNotifier(targets, mailer)

	outcome := notifier.Handle(context.Background(), statusChangeJob())

	assert.Equal(t, "Task with id task-1 not found", outcome)
	assert.Empty(t, mailer.sent)
}

func TestNotifierIdempotentAcrossRedelivery(t *testing.T) {
	targets := &fakeTargetSource{targets: map[string]*domain.NotificationTarget{"task-1": taskTarget()}}
	mailer := &fakeMailer{}
	notifier := NewNotifier(targets, mailer)

	job := statusChangeJob()
	first := notifier.Handle(context.Background(), job)
	second := notifier.Handle(context.Background(), job)

	// At-least-once delivery means duplicates happen; the handler sends
	// twice rather than failing.
	assert.Equal(t, first, second)
	assert.Len(t, mailer.sent, 2)
}

func TestNotifierTransportFailureIsTerminal(t *testing.T) {
	targets := &fakeTargetSource{targets: map[string]*domain.NotificationTarget{"task-1": taskTarget()}}
	mailer := &fakeMailer{err: errors.New("smtp unreachable")}
	notifier := NewNotifier(targets, mailer)

	outcome := notifier.Handle(context.Background(), statusChangeJob())

	assert.Equal(t, "failed to send email: smtp unreachable", outcome)
}

func TestNotifierReminderMessage(t *testing.T) {
	targets := &fakeTargetSource{targets: map[string]*domain.NotificationTarget{"task-1": taskTarget()}}
	mailer := &fakeMailer{}
	notifier := NewNotifier(targets, mailer)

	outcome := notifier.Handle(context.Background(), Job{
		Reason:   ReasonReminder,
		Kind:     domain.KindTask,
		EntityID: "task-1",
	})

	assert.Equal(t, "email sent to assignee@example.com, reporter@example.com", outcome)
	require.Len(t, mailer.sent, 1)

	mail := mailer.sent[0]
	assert.Equal(t, "Task Overdue Reminder: Write unit tests", mail.Subject)
	assert.Contains(t, mail.Body, "past its due date")
	assert.Contains(t, mail.Body, "Current Status: IN_PROGRESS")
	assert.NotContains(t, mail.Body, "Previous Status")
}
