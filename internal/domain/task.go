package domain

import "time"

// Task is the lowest-level work item belonging to a UserStory.
type Task struct {
	ID             string
	StoryID        string
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	AssigneeID     *string
	ReporterID     *string
	EstimatedHours *float64
	ActualHours    *float64
	DueDate        *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsOverdue reports whether the task is past its due date and still open.
// Tasks without a due date are never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status.IsTerminal() {
		return false
	}
	return now.After(*t.DueDate)
}
