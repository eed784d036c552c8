package notify

import (
	"sort"

	"github.com/tonynouhra/taskmanager/internal/domain"
)

// Recipients resolves the notification addresses for a work item: the
// primary actor (owner for epics, assignee for stories and tasks) and the
// reporter, each included only when set with a non-empty email. Duplicates
// collapse to one entry; the result is sorted for determinism.
func Recipients(target *domain.NotificationTarget) []string {
	seen := make(map[string]struct{}, 2)
	for _, email := range []string{target.PrimaryEmail, target.ReporterEmail} {
		if email == "" {
			continue
		}
		seen[email] = struct{}{}
	}

	recipients := make([]string, 0, len(seen))
	for email := range seen {
		recipients = append(recipients, email)
	}
	sort.Strings(recipients)

	return recipients
}
