package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/tonynouhra/taskmanager/internal/domain"
)

// TargetSource is the re-fetch the notification handler performs at
// execution time. The entity may have changed, or vanished, since the job
// was enqueued; recipients reflect the state at execution time.
type TargetSource interface {
	NotificationTarget(ctx context.Context, kind domain.Kind, id string) (*domain.NotificationTarget, error)
}

// Notifier executes notification jobs: re-fetch the work item, resolve
// recipients, compose the message, and hand it to the mail transport.
// Every outcome, including transport failure, is reported as a string and
// is terminal for the attempt; nothing here triggers queue-level retries,
// and running the same job twice just sends the mail twice.
type Notifier struct {
	targets TargetSource
	mailer  Mailer
}

// NewNotifier creates a Notifier.
func NewNotifier(targets TargetSource, mailer Mailer) *Notifier {
	return &Notifier{targets: targets, mailer: mailer}
}

// Handle implements JobHandler.
func (n *Notifier) Handle(ctx context.Context, job Job) string {
	target, err := n.targets.NotificationTarget(ctx, job.Kind, job.EntityID)
	if err != nil {
		if domain.IsNotFound(err) {
			return fmt.Sprintf("%s with id %s not found", job.Kind, job.EntityID)
		}
		return fmt.Sprintf("failed to load %s %s: %v", job.Kind, job.EntityID, err)
	}

	recipients := Recipients(target)
	if len(recipients) == 0 {
		return "no recipients with a valid email address"
	}

	subject, body := composeMessage(job, target)

	if err := n.mailer.Send(ctx, subject, body, recipients); err != nil {
		return fmt.Sprintf("failed to send email: %v", err)
	}

	return fmt.Sprintf("email sent to %s", strings.Join(recipients, ", "))
}

// composeMessage builds the subject and plain-text body for a job. Status
// changes report the old/new pair captured at submit time; reminders
// report the current status and that the item is overdue.
func composeMessage(job Job, target *domain.NotificationTarget) (subject, body string) {
	var b strings.Builder

	switch job.Reason {
	case ReasonReminder:
		subject = fmt.Sprintf("%s Overdue Reminder: %s", target.Kind, target.Title)
		fmt.Fprintf(&b, "Hello,\n\nThe %s %q is past its due date and still open.\n\n", target.Kind, target.Title)
		fmt.Fprintf(&b, "Current Status: %s\n", target.Status)
	default:
		subject = fmt.Sprintf("%s Status Changed: %s", target.Kind, target.Title)
		fmt.Fprintf(&b, "Hello,\n\nThe status of %s %q has been changed:\n\n", target.Kind, target.Title)
		fmt.Fprintf(&b, "Previous Status: %s\nNew Status: %s\n", job.OldStatus, job.NewStatus)
	}

	fmt.Fprintf(&b, "\n%s Details:\n- Title: %s\n- Priority: %s\n", target.Kind, target.Title, target.Priority)
	b.WriteString("\nBest regards,\nTask Manager System\n")

	return subject, b.String()
}
