package service

import (
	"fmt"
	"strings"

	"github.com/tonynouhra/taskmanager/internal/domain"
)

// Validator handles field and cross-field validation for work item writes.
// All checks are pure: they look only at the values passed in.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// CheckTitle validates that a title is present and non-blank.
func (v *Validator) CheckTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return domain.ErrTitleRequired
	}
	return nil
}

// CheckStatus validates the status against the kind's closed set.
// BLOCKED belongs to tasks only.
func (v *Validator) CheckStatus(kind domain.Kind, status domain.Status) error {
	if !kind.AllowsStatus(status) {
		return fmt.Errorf("%w: %q is not a valid %s status", domain.ErrInvalidStatus, status, kind)
	}
	return nil
}

// CheckPriority validates the priority value.
func (v *Validator) CheckPriority(priority domain.Priority) error {
	if !priority.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPriority, priority)
	}
	return nil
}

// CheckReporterNotAssignee enforces the reporter/assignee separation on
// user stories and tasks. Epics are exempt: the owner may report their
// own epic.
func (v *Validator) CheckReporterNotAssignee(assigneeID, reporterID *string) error {
	if assigneeID == nil || reporterID == nil {
		return nil
	}
	if *assigneeID == *reporterID {
		return fmt.Errorf("%w: reporter %s cannot also be the assignee", domain.ErrReporterIsAssignee, *reporterID)
	}
	return nil
}

// CheckParent validates that a required parent reference is present.
func (v *Validator) CheckParent(parentID string) error {
	if strings.TrimSpace(parentID) == "" {
		return domain.ErrParentRequired
	}
	return nil
}
