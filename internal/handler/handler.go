package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tonynouhra/taskmanager/internal/handler/dto"
	"github.com/tonynouhra/taskmanager/internal/middleware"
	"github.com/tonynouhra/taskmanager/internal/notify"
	"github.com/tonynouhra/taskmanager/internal/repository"
	"github.com/tonynouhra/taskmanager/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool         *pgxpool.Pool
	userRepo     *repository.UserRepository
	epicService  *service.EpicService
	storyService *service.StoryService
	taskService  *service.TaskService
	tokens       *middleware.TokenManager
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, tokens *middleware.TokenManager, queue notify.Queue) *Handler {
	// Create repositories
	userRepo := repository.NewUserRepository(pool)
	epicRepo := repository.NewEpicRepository(pool)
	storyRepo := repository.NewStoryRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	directory := repository.NewWorkItemDirectory(pool, epicRepo, storyRepo, taskRepo)

	// Create services
	detector := notify.NewDetector(directory, queue)
	epicService := service.NewEpicService(pool, epicRepo, detector)
	storyService := service.NewStoryService(pool, storyRepo, epicRepo, detector)
	taskService := service.NewTaskService(pool, taskRepo, storyRepo, detector)

	return &Handler{
		pool:         pool,
		userRepo:     userRepo,
		epicService:  epicService,
		storyService: storyService,
		taskService:  taskService,
		tokens:       tokens,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Authentication
	mux.HandleFunc("POST /api/v1/auth/register", h.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/refresh", h.handleRefresh)
	mux.Handle("GET /api/v1/auth/profile", h.authed(h.handleGetProfile))
	mux.Handle("PUT /api/v1/auth/profile", h.authed(h.handleUpdateProfile))
	mux.Handle("PATCH /api/v1/auth/profile", h.authed(h.handleUpdateProfile))

	// Epics
	mux.Handle("GET /api/v1/epics", h.authed(h.handleListEpics))
	mux.Handle("POST /api/v1/epics", h.authed(h.handleCreateEpic))
	mux.Handle("GET /api/v1/epics/{id}", h.authed(h.handleGetEpic))
	mux.Handle("PATCH /api/v1/epics/{id}", h.authed(h.handleUpdateEpic))
	mux.Handle("DELETE /api/v1/epics/{id}", h.authed(h.handleDeleteEpic))
	mux.Handle("GET /api/v1/epics/{id}/progress", h.authed(h.handleEpicProgress))
	mux.Handle("GET /api/v1/epics/{id}/user-stories", h.authed(h.handleListEpicStories))

	// User stories
	mux.Handle("GET /api/v1/user-stories", h.authed(h.handleListStories))
	mux.Handle("POST /api/v1/user-stories", h.authed(h.handleCreateStory))
	mux.Handle("GET /api/v1/user-stories/{id}", h.authed(h.handleGetStory))
	mux.Handle("PATCH /api/v1/user-stories/{id}", h.authed(h.handleUpdateStory))
	mux.Handle("DELETE /api/v1/user-stories/{id}", h.authed(h.handleDeleteStory))
	mux.Handle("GET /api/v1/user-stories/{id}/progress", h.authed(h.handleStoryProgress))
	mux.Handle("GET /api/v1/user-stories/{id}/tasks", h.authed(h.handleListStoryTasks))

	// Tasks
	mux.Handle("GET /api/v1/tasks", h.authed(h.handleListTasks))
	mux.Handle("POST /api/v1/tasks", h.authed(h.handleCreateTask))
	mux.Handle("GET /api/v1/tasks/overdue", h.authed(h.handleListOverdueTasks))
	mux.Handle("GET /api/v1/tasks/statistics", h.authed(h.handleTaskStats))
	mux.Handle("GET /api/v1/tasks/{id}", h.authed(h.handleGetTask))
	mux.Handle("PATCH /api/v1/tasks/{id}", h.authed(h.handleUpdateTask))
	mux.Handle("DELETE /api/v1/tasks/{id}", h.authed(h.handleDeleteTask))

	// Cross-kind statistics
	mux.Handle("GET /api/v1/statistics", h.authed(h.handleStatusCounts))
}

func (h *Handler) authed(fn http.HandlerFunc) http.Handler {
	return h.tokens.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.pool.Ping(r.Context()); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// decodeJSON decodes the request body into dst.
// Returns false if decoding failed (error already sent to client).
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "request body must be valid JSON")
		return false
	}
	return true
}

// extractID extracts and validates the {id} path parameter.
// Returns ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return "", false
	}

	return id, true
}

// authClaims returns the claims stashed by the auth middleware.
func authClaims(w http.ResponseWriter, r *http.Request) (*middleware.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "authentication required")
		return nil, false
	}
	return claims, true
}

// parseCSV parses a comma-separated filter value into uppercased parts.
func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, strings.ToUpper(p))
		}
	}
	return parts
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// parsePage parses limit/offset query parameters with defaults and caps.
func parsePage(r *http.Request) (limit, offset int) {
	limit = defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = min(n, maxListLimit)
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// optionalUUIDParam reads a query parameter that must be a UUID when present.
// The bool is false when the parameter is present but malformed.
func optionalUUIDParam(w http.ResponseWriter, r *http.Request, name string) (*string, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	if _, err := uuid.Parse(raw); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a valid UUID")
		return nil, false
	}
	return &raw, true
}
