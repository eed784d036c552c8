package handler

import (
	"net/http"

	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/handler/dto"
	"github.com/tonynouhra/taskmanager/internal/repository"
	"github.com/tonynouhra/taskmanager/internal/service"
)

// handleCreateStory creates a user story under an existing epic. The
// authenticated user becomes the reporter unless one is given.
// @Summary Create a new user story
// @Description Creates a user story under an existing epic. Reporter defaults to the caller.
// @Tags user-stories
// @Accept json
// @Produce json
// @Param request body dto.CreateStoryRequest true "User story creation request"
// @Success 201 {object} dto.StoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /user-stories [post]
func (h *Handler) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	claims, ok := authClaims(w, r)
	if !ok {
		return
	}

	var req dto.CreateStoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	story, err := h.storyService.CreateStory(r.Context(), &domain.UserStory{
		EpicID:      req.EpicID,
		Title:       req.Title,
		Description: req.Description,
		AsA:         req.AsA,
		IWant:       req.IWant,
		SoThat:      req.SoThat,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		AssigneeID:  req.AssigneeID,
		ReporterID:  req.ReporterID,
		StoryPoints: req.StoryPoints,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}, claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewStoryResponse(story))
}

// handleGetStory returns a single user story.
// @Summary Get user story details
// @Tags user-stories
// @Produce json
// @Param id path string true "User story ID"
// @Success 200 {object} dto.StoryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /user-stories/{id} [get]
func (h *Handler) handleGetStory(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	story, err := h.storyService.GetStory(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewStoryResponse(story))
}

// handleListStories returns a filtered page of user stories.
// @Summary List user stories
// @Tags user-stories
// @Produce json
// @Param epic_id query string false "Filter by epic UUID"
// @Param assignee_id query string false "Filter by assignee UUID"
// @Param status query string false "Comma-separated statuses: TODO,IN_PROGRESS"
// @Param priority query string false "Comma-separated priorities: HIGH,CRITICAL"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.StoriesListResponse
// @Security BearerAuth
// @Router /user-stories [get]
func (h *Handler) handleListStories(w http.ResponseWriter, r *http.Request) {
	epicID, ok := optionalUUIDParam(w, r, "epic_id")
	if !ok {
		return
	}
	assigneeID, ok := optionalUUIDParam(w, r, "assignee_id")
	if !ok {
		return
	}

	limit, offset := parsePage(r)
	filters := repository.StoryListFilters{
		EpicID:     epicID,
		Statuses:   parseCSV(r.URL.Query().Get("status")),
		Priorities: parseCSV(r.URL.Query().Get("priority")),
		AssigneeID: assigneeID,
		Limit:      limit,
		Offset:     offset,
	}

	stories, total, err := h.storyService.ListStories(r.Context(), filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.StoriesListResponse{
		Stories: make([]dto.StoryResponse, 0, len(stories)),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}
	for _, story := range stories {
		resp.Stories = append(resp.Stories, dto.NewStoryResponse(story))
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleUpdateStory applies a partial update to a user story.
// @Summary Update a user story
// @Description Partial update. Omitted fields keep their current values.
// @Tags user-stories
// @Accept json
// @Produce json
// @Param id path string true "User story ID"
// @Param request body dto.UpdateStoryRequest true "User story update request"
// @Success 200 {object} dto.StoryResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /user-stories/{id} [patch]
func (h *Handler) handleUpdateStory(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := service.StoryUpdate{
		Title:       req.Title,
		Description: req.Description,
		AsA:         req.AsA,
		IWant:       req.IWant,
		SoThat:      req.SoThat,
		AssigneeID:  req.AssigneeID,
		ReporterID:  req.ReporterID,
		StoryPoints: req.StoryPoints,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		upd.Status = &status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		upd.Priority = &priority
	}

	story, err := h.storyService.UpdateStory(r.Context(), id, upd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewStoryResponse(story))
}

// handleDeleteStory deletes a user story together with its tasks.
// @Summary Delete a user story
// @Tags user-stories
// @Param id path string true "User story ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /user-stories/{id} [delete]
func (h *Handler) handleDeleteStory(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if err := h.storyService.DeleteStory(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListStoryTasks returns the tasks belonging to a user story.
// @Summary List a user story's tasks
// @Tags user-stories
// @Produce json
// @Param id path string true "User story ID"
// @Param status query string false "Comma-separated statuses: TODO,BLOCKED"
// @Param priority query string false "Comma-separated priorities: HIGH,CRITICAL"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.TasksListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /user-stories/{id}/tasks [get]
func (h *Handler) handleListStoryTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if _, err := h.storyService.GetStory(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	limit, offset := parsePage(r)
	tasks, total, err := h.taskService.ListTasks(r.Context(), repository.TaskListFilters{
		StoryID:    &id,
		Statuses:   parseCSV(r.URL.Query().Get("status")),
		Priorities: parseCSV(r.URL.Query().Get("priority")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.TasksListResponse{
		Tasks:  make([]dto.TaskResponse, 0, len(tasks)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, dto.NewTaskResponse(task))
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleStoryProgress returns the story's completion from its tasks.
// @Summary Get user story progress
// @Description Completion percentage computed from the story's tasks.
// @Tags user-stories
// @Produce json
// @Param id path string true "User story ID"
// @Success 200 {object} dto.ProgressResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /user-stories/{id}/progress [get]
func (h *Handler) handleStoryProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	progress, err := h.storyService.StoryProgress(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProgressResponse(progress))
}
