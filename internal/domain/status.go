package domain

// Status represents the workflow state of a work item.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusBlocked    Status = "BLOCKED"
	StatusCancelled  Status = "CANCELLED"
)

// IsTerminal returns true if no further work is expected in this status.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled
}

// Kind identifies the work item variant in the Epic -> UserStory -> Task hierarchy.
type Kind string

const (
	KindEpic      Kind = "Epic"
	KindUserStory Kind = "UserStory"
	KindTask      Kind = "Task"
)

// IsValid checks if the kind is one of the known variants.
func (k Kind) IsValid() bool {
	switch k {
	case KindEpic, KindUserStory, KindTask:
		return true
	default:
		return false
	}
}

// AllowsStatus reports whether the status belongs to this kind's closed set.
// BLOCKED exists only for tasks.
func (k Kind) AllowsStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusCancelled:
		return true
	case StatusBlocked:
		return k == KindTask
	default:
		return false
	}
}

// Priority represents the urgency of a work item.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

// IsValid checks if the priority is one of the allowed values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	default:
		return false
	}
}
