package handler

import (
	"net/http"

	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/handler/dto"
	"github.com/tonynouhra/taskmanager/internal/repository"
	"github.com/tonynouhra/taskmanager/internal/service"
)

// handleCreateTask creates a task under an existing user story. The
// authenticated user becomes the reporter unless one is given.
// @Summary Create a new task
// @Description Creates a task under an existing user story. Reporter defaults to the caller.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	claims, ok := authClaims(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), &domain.Task{
		StoryID:        req.StoryID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.Status(req.Status),
		Priority:       domain.Priority(req.Priority),
		AssigneeID:     req.AssigneeID,
		ReporterID:     req.ReporterID,
		EstimatedHours: req.EstimatedHours,
		DueDate:        req.DueDate,
	}, claims.UserID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewTaskResponse(task))
}

// handleGetTask returns a single task.
// @Summary Get task details
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// handleListTasks returns a filtered page of tasks.
// @Summary List tasks
// @Tags tasks
// @Produce json
// @Param story_id query string false "Filter by user story UUID"
// @Param assignee_id query string false "Filter by assignee UUID"
// @Param status query string false "Comma-separated statuses: TODO,BLOCKED"
// @Param priority query string false "Comma-separated priorities: HIGH,CRITICAL"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	storyID, ok := optionalUUIDParam(w, r, "story_id")
	if !ok {
		return
	}
	assigneeID, ok := optionalUUIDParam(w, r, "assignee_id")
	if !ok {
		return
	}

	limit, offset := parsePage(r)
	filters := repository.TaskListFilters{
		StoryID:    storyID,
		Statuses:   parseCSV(r.URL.Query().Get("status")),
		Priorities: parseCSV(r.URL.Query().Get("priority")),
		AssigneeID: assigneeID,
		Limit:      limit,
		Offset:     offset,
	}

	tasks, total, err := h.taskService.ListTasks(r.Context(), filters)
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

// handleListOverdueTasks returns every open task past its due date.
// @Summary List overdue tasks
// @Description Tasks with a due date in the past that are not DONE or CANCELLED.
// @Tags tasks
// @Produce json
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /tasks/overdue [get]
func (h *Handler) handleListOverdueTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskService.ListOverdueTasks(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.TasksListResponse{
		Tasks: make([]dto.TaskResponse, 0, len(tasks)),
		Total: len(tasks),
		Limit: len(tasks),
	}
	for _, task := range tasks {
		resp.Tasks = append(resp.Tasks, dto.NewTaskResponse(task))
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleUpdateTask applies a partial update to a task.
// @Summary Update a task
// @Description Partial update. Omitted fields keep their current values.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Task update request"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [patch]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := service.TaskUpdate{
		Title:          req.Title,
		Description:    req.Description,
		AssigneeID:     req.AssigneeID,
		ReporterID:     req.ReporterID,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		DueDate:        req.DueDate,
	}
	if req.Status != nil {
		status := domain.Status(*req.Status)
		upd.Status = &status
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		upd.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(r.Context(), id, upd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskResponse(task))
}

// handleDeleteTask deletes a task.
// @Summary Delete a task
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
