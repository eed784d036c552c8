package dto

import "time"

// RegisterRequest represents the request body for POST /auth/register.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Age         *int   `json:"age,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// LoginRequest represents the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest represents the request body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest represents the request body for PATCH /auth/profile.
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Age         *int    `json:"age,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// CreateEpicRequest represents the request body for POST /epics.
type CreateEpicRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	ReporterID  *string    `json:"reporter_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateEpicRequest represents the request body for PATCH /epics/{id}.
// Absent fields are left unchanged.
type UpdateEpicRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	ReporterID  *string    `json:"reporter_id,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// CreateStoryRequest represents the request body for POST /stories.
type CreateStoryRequest struct {
	EpicID      string     `json:"epic_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AsA         string     `json:"as_a,omitempty"`
	IWant       string     `json:"i_want,omitempty"`
	SoThat      string     `json:"so_that,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	ReporterID  *string    `json:"reporter_id,omitempty"`
	StoryPoints *int       `json:"story_points,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateStoryRequest represents the request body for PATCH /stories/{id}.
// Absent fields are left unchanged.
type UpdateStoryRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	AsA         *string    `json:"as_a,omitempty"`
	IWant       *string    `json:"i_want,omitempty"`
	SoThat      *string    `json:"so_that,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	ReporterID  *string    `json:"reporter_id,omitempty"`
	StoryPoints *int       `json:"story_points,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// CreateTaskRequest represents the request body for POST /tasks.
type CreateTaskRequest struct {
	StoryID        string     `json:"story_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	ReporterID     *string    `json:"reporter_id,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest represents the request body for PATCH /tasks/{id}.
// Absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	AssigneeID     *string    `json:"assignee_id,omitempty"`
	ReporterID     *string    `json:"reporter_id,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}
