package handler

import (
	"net/http"

	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/handler/dto"
	"github.com/tonynouhra/taskmanager/internal/repository"
	"github.com/tonynouhra/taskmanager/internal/service"
)

// handleCreateEpic creates an epic owned by the authenticated user.
// @Summary Create a new epic
// @Description Creates an epic owned by the caller. Reporter defaults to the caller when omitted.
// @Tags epics
// @Accept json
// @Produce json
// @Param request body dto.CreateEpicRequest true "Epic creation request"
// @Success 201 {object} dto.EpicResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /epics [post]
func (h *Handler) handleCreateEpic(w http.ResponseWriter, r *http.Request) {
	claims, ok := authClaims(w, r)
	if !ok {
		return
	}

	var req dto.CreateEpicRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	epic, err := h.epicService.CreateEpic(r.Context(), &domain.Epic{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		OwnerID:     claims.UserID,
		ReporterID:  req.ReporterID,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewEpicResponse(epic))
}

// handleGetEpic returns a single epic.
// @Summary Get epic details
// @Tags epics
// @Produce json
// @Param id path string true "Epic ID"
// @Success 200 {object} dto.EpicResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /epics/{id} [get]
func (h *Handler) handleGetEpic(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	epic, err := h.epicService.GetEpic(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewEpicResponse(epic))
}

// handleListEpics returns a filtered page of epics.
// @Summary List epics
// @Tags epics
// @Produce json
// @Param status query string false "Comma-separated statuses: TODO,IN_PROGRESS"
// @Param priority query string false "Comma-separated priorities: HIGH,CRITICAL"
// @Param owner_id query string false "Filter by owner UUID"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.EpicsListResponse
// @Security BearerAuth
// @Router /epics [get]
func (h *Handler) handleListEpics(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := optionalUUIDParam(w, r, "owner_id")
	if !ok {
		return
	}

	limit, offset := parsePage(r)
	filters := repository.EpicListFilters{
		Statuses:   parseCSV(r.URL.Query().Get("status")),
		Priorities: parseCSV(r.URL.Query().Get("priority")),
		OwnerID:    ownerID,
		Limit:      limit,
		Offset:     offset,
	}

	epics, total, err := h.epicService.ListEpics(r.Context(), filters)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.EpicsListResponse{
		Epics:  make([]dto.EpicResponse, 0, len(epics)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, epic := range epics {
		resp.Epics = append(resp.Epics, dto.NewEpicResponse(epic))
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleUpdateEpic applies a partial update to an epic.
// @Summary Update an epic
// @Description Partial update. Omitted fields keep their current values.
// @Tags epics
// @Accept json
// @Produce json
// @Param id path string true "Epic ID"
// @Param request body dto.UpdateEpicRequest true "Epic update request"
// @Success 200 {object} dto.EpicResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /epics/{id} [patch]
func (h *Handler) handleUpdateEpic(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateEpicRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	upd := service.EpicUpdate{
		Title:       req.Title,
		Description: req.Description,
		ReporterID:  req.ReporterID,
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

	epic, err := h.epicService.UpdateEpic(r.Context(), id, upd)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewEpicResponse(epic))
}

// handleDeleteEpic deletes an epic together with its stories and tasks.
// @Summary Delete an epic
// @Tags epics
// @Param id path string true "Epic ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /epics/{id} [delete]
func (h *Handler) handleDeleteEpic(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if err := h.epicService.DeleteEpic(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListEpicStories returns the user stories belonging to an epic.
// @Summary List an epic's user stories
// @Tags epics
// @Produce json
// @Param id path string true "Epic ID"
// @Param status query string false "Comma-separated statuses: TODO,IN_PROGRESS"
// @Param priority query string false "Comma-separated priorities: HIGH,CRITICAL"
// @Param limit query int false "Page size (1-200, default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} dto.StoriesListResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /epics/{id}/user-stories [get]
func (h *Handler) handleListEpicStories(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	if _, err := h.epicService.GetEpic(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}

	limit, offset := parsePage(r)
	stories, total, err := h.storyService.ListStories(r.Context(), repository.StoryListFilters{
		EpicID:     &id,
		Statuses:   parseCSV(r.URL.Query().Get("status")),
		Priorities: parseCSV(r.URL.Query().Get("priority")),
		Limit:      limit,
		Offset:     offset,
	})
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

// handleEpicProgress returns the epic's completion from its user stories.
// @Summary Get epic progress
// @Description Completion percentage computed from the epic's user stories.
// @Tags epics
// @Produce json
// @Param id path string true "Epic ID"
// @Success 200 {object} dto.ProgressResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /epics/{id}/progress [get]
func (h *Handler) handleEpicProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := extractID(w, r)
	if !ok {
		return
	}

	progress, err := h.epicService.EpicProgress(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewProgressResponse(progress))
}
