package domain

import "time"

// Epic is the top-level work item. It groups user stories and is the
// only kind whose primary actor is called "owner" rather than "assignee".
type Epic struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	OwnerID     string
	ReporterID  *string
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
