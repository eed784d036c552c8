package handler

import (
	"net/http"

	"github.com/tonynouhra/taskmanager/internal/domain"
	"github.com/tonynouhra/taskmanager/internal/handler/dto"
	"github.com/tonynouhra/taskmanager/internal/repository"
)

// handleTaskStats returns aggregate task statistics, optionally scoped to
// one story, one epic, or one assignee.
// @Summary Get task statistics
// @Description Totals, per-status and per-priority breakdowns, completion rate, and overdue count.
// @Tags statistics
// @Produce json
// @Param story_id query string false "Scope to one user story UUID"
// @Param epic_id query string false "Scope to one epic UUID"
// @Param assignee_id query string false "Scope to one assignee UUID"
// @Success 200 {object} dto.TaskStatsResponse
// @Security BearerAuth
// @Router /tasks/statistics [get]
func (h *Handler) handleTaskStats(w http.ResponseWriter, r *http.Request) {
	storyID, ok := optionalUUIDParam(w, r, "story_id")
	if !ok {
		return
	}
	epicID, ok := optionalUUIDParam(w, r, "epic_id")
	if !ok {
		return
	}
	assigneeID, ok := optionalUUIDParam(w, r, "assignee_id")
	if !ok {
		return
	}

	stats, err := h.taskService.TaskStats(r.Context(), repository.TaskStatsFilters{
		StoryID:    storyID,
		EpicID:     epicID,
		AssigneeID: assigneeID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewTaskStatsResponse(stats))
}

// handleStatusCounts returns the per-status breakdown for one work item
// kind, selected with ?type=epic|user_story|task. Defaults to task.
// @Summary Get status counts
// @Tags statistics
// @Produce json
// @Param type query string false "Work item kind: epic, user_story, task (default task)"
// @Success 200 {object} dto.StatusCountsResponse
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /statistics [get]
func (h *Handler) handleStatusCounts(w http.ResponseWriter, r *http.Request) {
	kind := domain.KindTask
	switch r.URL.Query().Get("type") {
	case "", "task":
		kind = domain.KindTask
	case "epic":
		kind = domain.KindEpic
	case "user_story", "story":
		kind = domain.KindUserStory
	default:
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "type must be one of epic, user_story, task")
		return
	}

	counts, err := h.taskService.StatusCounts(r.Context(), kind)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewStatusCountsResponse(kind, counts))
}
