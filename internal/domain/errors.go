package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Work item errors
	ErrEpicNotFound  = errors.New("epic not found")
	ErrStoryNotFound = errors.New("user story not found")
	ErrTaskNotFound  = errors.New("task not found")
	ErrStaleWrite    = errors.New("work item was modified concurrently")

	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid authentication token")

	// Validation errors
	ErrInvalidKind         = errors.New("invalid work item kind")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrReporterIsAssignee  = errors.New("reporter cannot be the same as the assigned user")
	ErrTitleRequired       = errors.New("title is required")
	ErrParentRequired      = errors.New("parent reference is required")
)

// IsNotFound reports whether the error is any of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEpicNotFound) ||
		errors.Is(err, ErrStoryNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
