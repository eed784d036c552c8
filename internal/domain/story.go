package domain

import "time"

// UserStory is the mid-level work item belonging to an Epic.
type UserStory struct {
	ID          string
	EpicID      string
	Title       string
	Description string

	// Agile framing: "As a [AsA], I want [IWant], so that [SoThat]".
	AsA    string
	IWant  string
	SoThat string

	Status      Status
	Priority    Priority
	AssigneeID  *string
	ReporterID  *string
	StoryPoints *int
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullStory returns the formatted agile sentence when all three parts
// are present, falling back to the free-form description.
func (s *UserStory) FullStory() string {
	if s.AsA != "" && s.IWant != "" && s.SoThat != "" {
		return "As a " + s.AsA + ", I want " + s.IWant + ", so that " + s.SoThat
	}
	return s.Description
}
