package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tonynouhra/taskmanager/internal/domain"
)

func TestRecipientsBothAddresses(t *testing.T) {
	target := &domain.NotificationTarget{
		PrimaryEmail:  "assignee@example.com",
		ReporterEmail: "reporter@example.com",
	}

	assert.Equal(t, []string{"assignee@example.com", "reporter@example.com"}, Recipients(target))
}

func TestRecipientsDeduplicates(t *testing.T) {
	target := &domain.NotificationTarget{
		PrimaryEmail:  "same@example.com",
		ReporterEmail: "same@example.com",
	}

	assert.Equal(t, []string{"same@example.com"}, Recipients(target))
}

func TestRecipientsSkipsEmptyAddresses(t *testing.T) {
	assert.Empty(t, Recipients(&domain.NotificationTarget{}))

	onlyReporter := &domain.NotificationTarget{ReporterEmail: "reporter@example.com"}
	assert.Equal(t, []string{"reporter@example.com"}, Recipients(onlyReporter))
}
