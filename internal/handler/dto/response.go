package dto

import (
	"time"

	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/repository"
)

// UserResponse represents a user profile.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Age         *int      `json:"age"`
	PhoneNumber string    `json:"phone_number"`
	Bio         string    `json:"bio"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewUserResponse converts a domain user. The password hash never leaves
// the server.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Age:         user.Age,
		PhoneNumber: user.PhoneNumber,
		Bio:         user.Bio,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// TokenPairResponse represents the response for login and refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RegisterResponse represents the response for POST /auth/register.
type RegisterResponse struct {
	User   UserResponse      `json:"user"`
	Tokens TokenPairResponse `json:"tokens"`
}

// EpicResponse represents an epic.
type EpicResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	OwnerID     string     `json:"owner_id"`
	ReporterID  *string    `json:"reporter_id"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewEpicResponse converts a domain epic.
func NewEpicResponse(epic *domain.Epic) EpicResponse {
	return EpicResponse{
		ID:          epic.ID,
		Title:       epic.Title,
		Description: epic.Description,
		Status:      string(epic.Status),
		Priority:    string(epic.Priority),
		OwnerID:     epic.OwnerID,
		ReporterID:  epic.ReporterID,
		StartDate:   epic.StartDate,
		DueDate:     epic.DueDate,
		CreatedAt:   epic.CreatedAt,
		UpdatedAt:   epic.UpdatedAt,
	}
}

// EpicsListResponse represents the response for GET /epics.
type EpicsListResponse struct {
	Epics  []EpicResponse `json:"epics"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// StoryResponse represents a user story.
type StoryResponse struct {
	ID          string     `json:"id"`
	EpicID      string     `json:"epic_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AsA         string     `json:"as_a"`
	IWant       string     `json:"i_want"`
	SoThat      string     `json:"so_that"`
	FullStory   string     `json:"full_story"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assignee_id"`
	ReporterID  *string    `json:"reporter_id"`
	StoryPoints *int       `json:"story_points"`
	StartDate   *time.Time `json:"start_date"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewStoryResponse converts a domain user story.
func NewStoryResponse(story *domain.UserStory) StoryResponse {
	return StoryResponse{
		ID:          story.ID,
		EpicID:      story.EpicID,
		Title:       story.Title,
		Description: story.Description,
		AsA:         story.AsA,
		IWant:       story.IWant,
		SoThat:      story.SoThat,
		FullStory:   story.FullStory(),
		Status:      string(story.Status),
		Priority:    string(story.Priority),
		AssigneeID:  story.AssigneeID,
		ReporterID:  story.ReporterID,
		StoryPoints: story.StoryPoints,
		StartDate:   story.StartDate,
		DueDate:     story.DueDate,
		CreatedAt:   story.CreatedAt,
		UpdatedAt:   story.UpdatedAt,
	}
}

// StoriesListResponse represents the response for GET /stories.
type StoriesListResponse struct {
	Stories []StoryResponse `json:"stories"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// TaskResponse represents a task.
type TaskResponse struct {
	ID             string     `json:"id"`
	StoryID        string     `json:"story_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssigneeID     *string    `json:"assignee_id"`
	ReporterID     *string    `json:"reporter_id"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	DueDate        *time.Time `json:"due_date"`
	CompletedAt    *time.Time `json:"completed_at"`
	IsOverdue      bool       `json:"is_overdue"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewTaskResponse converts a domain task.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:             task.ID,
		StoryID:        task.StoryID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         string(task.Status),
		Priority:       string(task.Priority),
		AssigneeID:     task.AssigneeID,
		ReporterID:     task.ReporterID,
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		DueDate:        task.DueDate,
		CompletedAt:    task.CompletedAt,
		IsOverdue:      task.IsOverdue(time.Now()),
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// ProgressResponse represents the completion of a parent from its children.
type ProgressResponse struct {
	Total                int     `json:"total"`
	Done                 int     `json:"done"`
	CompletionPercentage float64 `json:"completion_percentage"`
}

// NewProgressResponse converts a repository progress pair.
func NewProgressResponse(p repository.Progress) ProgressResponse {
	return ProgressResponse{
		Total:                p.Total,
		Done:                 p.Done,
		CompletionPercentage: p.CompletionPercentage(),
	}
}

// TaskStatsResponse represents aggregate task statistics.
type TaskStatsResponse struct {
	Total          int                `json:"total"`
	ByStatus       map[string]int     `json:"by_status"`
	ByPriority     map[string]int     `json:"by_priority"`
	Overdue        int                `json:"overdue"`
	CompletionRate float64            `json:"completion_rate"`
	Percentages    map[string]float64 `json:"percentages"`
}

// NewTaskStatsResponse converts a repository stats result, deriving the
// completion rate and per-status percentages.
func NewTaskStatsResponse(stats *repository.TaskStatsResult) TaskStatsResponse {
	resp := TaskStatsResponse{
		Total:       stats.Total,
		ByStatus:    make(map[string]int, len(stats.ByStatus)),
		ByPriority:  make(map[string]int, len(stats.ByPriority)),
		Overdue:     stats.Overdue,
		Percentages: make(map[string]float64, len(stats.ByStatus)),
	}

	for status, count := range stats.ByStatus {
		resp.ByStatus[string(status)] = count
	}
	for priority, count := range stats.ByPriority {
		resp.ByPriority[string(priority)] = count
	}

	if stats.Total > 0 {
		resp.CompletionRate = float64(stats.ByStatus[domain.StatusDone]) / float64(stats.Total) * 100
		for status, count := range stats.ByStatus {
			resp.Percentages[string(status)] = float64(count) / float64(stats.Total) * 100
		}
	}

	return resp
}

// StatusCountsResponse represents the per-status breakdown of one kind.
type StatusCountsResponse struct {
	Kind     string         `json:"kind"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// NewStatusCountsResponse converts a per-status count map.
func NewStatusCountsResponse(kind domain.Kind, counts map[domain.Status]int) StatusCountsResponse {
	resp := StatusCountsResponse{
		Kind:     string(kind),
		ByStatus: make(map[string]int, len(counts)),
	}
	for status, count := range counts {
		resp.ByStatus[string(status)] = count
		resp.Total += count
	}
	return resp
}
