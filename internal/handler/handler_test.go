package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"

	"github.com/tonynouhra/taskmanager/internal/database"
	"github.com/tonynouhra/taskmanager/internal/handler"
	"github.com/tonynouhra/taskmanager/internal/handler/dto"
	"github.com/tonynouhra/taskmanager/internal/middleware"
	"github.com/tonynouhra/taskmanager/internal/notify"
)

// HandlerTestSuite exercises the HTTP API end to end against a real
// database. It needs DATABASE_URL and is skipped without one.
type HandlerTestSuite struct {
	suite.Suite
	pool  *pgxpool.Pool
	mux   *http.ServeMux
	queue *notify.SyncQueue

	// Test fixtures
	aliceToken string
	bobID      string
}

func (s *HandlerTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set, skipping database-backed tests")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL)
	s.Require().NoError(err)
	s.pool = db.Pool()

	err = database.RunMigrations(ctx, s.pool)
	s.Require().NoError(err)
}

func (s *HandlerTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *HandlerTestSuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, "TRUNCATE users, epics, user_stories, tasks CASCADE")
	s.Require().NoError(err)

	s.queue = &notify.SyncQueue{}
	tokens := middleware.NewTokenManager("handler-test-secret")
	h := handler.New(s.pool, tokens, s.queue)
	s.mux = http.NewServeMux()
	h.RegisterRoutes(s.mux)

	// Register two users through the API itself.
	var reg struct {
		User   dto.UserResponse      `json:"user"`
		Tokens dto.TokenPairResponse `json:"tokens"`
	}
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.decode(rec, &reg)
	s.aliceToken = reg.Tokens.AccessToken

	rec = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "password123",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.decode(rec, &reg)
	s.bobID = reg.User.ID
}

// do performs a request against the mux and returns the recorder.
func (s *HandlerTestSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerTestSuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), dst))
}

func (s *HandlerTestSuite) createEpic() dto.EpicResponse {
	rec := s.do(http.MethodPost, "/api/v1/epics", s.aliceToken, map[string]any{
		"title": "Checkout flow",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var epic dto.EpicResponse
	s.decode(rec, &epic)
	return epic
}

func (s *HandlerTestSuite) createStory(epicID string) dto.StoryResponse {
	rec := s.do(http.MethodPost, "/api/v1/user-stories", s.aliceToken, map[string]any{
		"epic_id": epicID,
		"title":   "Pay by card",
		"as_a":    "shopper",
		"i_want":  "to pay by card",
		"so_that": "I can complete my order",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var story dto.StoryResponse
	s.decode(rec, &story)
	return story
}

func (s *HandlerTestSuite) createTask(storyID string) dto.TaskResponse {
	rec := s.do(http.MethodPost, "/api/v1/tasks", s.aliceToken, map[string]any{
		"story_id":    storyID,
		"title":       "Integrate payment gateway",
		"assignee_id": s.bobID,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var task dto.TaskResponse
	s.decode(rec, &task)
	return task
}

func (s *HandlerTestSuite) TestLoginAndProfile() {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var tokens dto.TokenPairResponse
	s.decode(rec, &tokens)

	rec = s.do(http.MethodGet, "/api/v1/auth/profile", tokens.AccessToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var profile dto.UserResponse
	s.decode(rec, &profile)
	s.Equal("alice", profile.Username)
}

func (s *HandlerTestSuite) TestLoginWrongPassword() {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerTestSuite) TestRefreshFlow() {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice",
		"password": "password123",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var tokens dto.TokenPairResponse
	s.decode(rec, &tokens)

	rec = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": tokens.RefreshToken,
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var fresh dto.TokenPairResponse
	s.decode(rec, &fresh)
	s.NotEmpty(fresh.AccessToken)

	// The access token is not accepted as a refresh token.
	rec = s.do(http.MethodPost, "/api/v1/auth/refresh", "", map[string]any{
		"refresh_token": tokens.AccessToken,
	})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerTestSuite) TestRegisterDuplicateUsername() {
	rec := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "alice",
		"email":    "alice2@example.com",
		"password": "password123",
	})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerTestSuite) TestUnauthenticatedRequestsRejected() {
	rec := s.do(http.MethodGet, "/api/v1/epics", "", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerTestSuite) TestEpicCRUD() {
	epic := s.createEpic()
	s.Equal("TODO", epic.Status)
	s.Equal("MEDIUM", epic.Priority)

	rec := s.do(http.MethodGet, "/api/v1/epics/"+epic.ID, s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodPatch, "/api/v1/epics/"+epic.ID, s.aliceToken, map[string]any{
		"status": "IN_PROGRESS",
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	var updated dto.EpicResponse
	s.decode(rec, &updated)
	s.Equal("IN_PROGRESS", updated.Status)

	rec = s.do(http.MethodDelete, "/api/v1/epics/"+epic.ID, s.aliceToken, nil)
	s.Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/epics/"+epic.ID, s.aliceToken, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerTestSuite) TestStatusChangeEmitsNotificationJob() {
	task := s.createTask(s.createStory(s.createEpic().ID).ID)
	s.queue.Jobs = nil

	rec := s.do(http.MethodPatch, "/api/v1/tasks/"+task.ID, s.aliceToken, map[string]any{
		"status": "IN_PROGRESS",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	s.Require().Len(s.queue.Jobs, 1)
	s.Equal(notify.ReasonStatusChanged, s.queue.Jobs[0].Reason)
	s.Equal(task.ID, s.queue.Jobs[0].EntityID)
}

func (s *HandlerTestSuite) TestBlockedStatusRejectedForEpic() {
	epic := s.createEpic()

	rec := s.do(http.MethodPatch, "/api/v1/epics/"+epic.ID, s.aliceToken, map[string]any{
		"status": "BLOCKED",
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerTestSuite) TestReporterCannotBeAssignee() {
	story := s.createStory(s.createEpic().ID)

	rec := s.do(http.MethodPost, "/api/v1/tasks", s.aliceToken, map[string]any{
		"story_id":    story.ID,
		"title":       "Self-assigned",
		"assignee_id": s.bobID,
		"reporter_id": s.bobID,
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code)
}

func (s *HandlerTestSuite) TestInvalidUUIDPathParam() {
	rec := s.do(http.MethodGet, "/api/v1/tasks/not-a-uuid", s.aliceToken, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerTestSuite) TestListTasksFilteredByStatus() {
	story := s.createStory(s.createEpic().ID)
	first := s.createTask(story.ID)
	s.createTask(story.ID)

	rec := s.do(http.MethodPatch, "/api/v1/tasks/"+first.ID, s.aliceToken, map[string]any{
		"status": "DONE",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/tasks?status=DONE", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var list dto.TasksListResponse
	s.decode(rec, &list)
	s.Equal(1, list.Total)
	s.Require().Len(list.Tasks, 1)
	s.Equal(first.ID, list.Tasks[0].ID)
}

func (s *HandlerTestSuite) TestOverdueTasksEndpoint() {
	story := s.createStory(s.createEpic().ID)
	pastDue := time.Now().Add(-48 * time.Hour).Format(time.RFC3339)

	open := s.createTask(story.ID)
	rec := s.do(http.MethodPatch, "/api/v1/tasks/"+open.ID, s.aliceToken, map[string]any{
		"status":   "IN_PROGRESS",
		"due_date": pastDue,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	finished := s.createTask(story.ID)
	rec = s.do(http.MethodPatch, "/api/v1/tasks/"+finished.ID, s.aliceToken, map[string]any{
		"status":   "DONE",
		"due_date": pastDue,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/v1/tasks/overdue", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var list dto.TasksListResponse
	s.decode(rec, &list)
	s.Require().Len(list.Tasks, 1, "a DONE task past its due date is not overdue")
	s.Equal(open.ID, list.Tasks[0].ID)
	s.True(list.Tasks[0].IsOverdue)
}

func (s *HandlerTestSuite) TestLoginWithEmail() {
	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"username": "alice@example.com",
		"password": "password123",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var tokens dto.TokenPairResponse
	s.decode(rec, &tokens)
	s.NotEmpty(tokens.AccessToken)
}

func (s *HandlerTestSuite) TestTaskStatistics() {
	story := s.createStory(s.createEpic().ID)
	done := s.createTask(story.ID)
	s.createTask(story.ID)

	rec := s.do(http.MethodPatch, "/api/v1/tasks/"+done.ID, s.aliceToken, map[string]any{
		"status": "DONE",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/v1/tasks/statistics?story_id=%s", story.ID), s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var stats dto.TaskStatsResponse
	s.decode(rec, &stats)
	s.Equal(2, stats.Total)
	s.Equal(1, stats.ByStatus["DONE"])
	s.InDelta(50.0, stats.CompletionRate, 0.01)
}

func (s *HandlerTestSuite) TestEpicProgressEndpoint() {
	epic := s.createEpic()
	story := s.createStory(epic.ID)
	s.createStory(epic.ID)

	rec := s.do(http.MethodPatch, "/api/v1/user-stories/"+story.ID, s.aliceToken, map[string]any{
		"status": "DONE",
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/epics/"+epic.ID+"/progress", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var progress dto.ProgressResponse
	s.decode(rec, &progress)
	s.Equal(2, progress.Total)
	s.Equal(1, progress.Done)
	s.InDelta(50.0, progress.CompletionPercentage, 0.01)
}

func (s *HandlerTestSuite) TestNestedListings() {
	epic := s.createEpic()
	story := s.createStory(epic.ID)
	s.createTask(story.ID)
	s.createTask(story.ID)

	rec := s.do(http.MethodGet, "/api/v1/epics/"+epic.ID+"/user-stories", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var stories dto.StoriesListResponse
	s.decode(rec, &stories)
	s.Equal(1, stories.Total)

	rec = s.do(http.MethodGet, "/api/v1/user-stories/"+story.ID+"/tasks", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var tasks dto.TasksListResponse
	s.decode(rec, &tasks)
	s.Equal(2, tasks.Total)
}

func (s *HandlerTestSuite) TestStatusCountsEndpoint() {
	epic := s.createEpic()
	s.createStory(epic.ID)

	rec := s.do(http.MethodGet, "/api/v1/statistics?type=epic", s.aliceToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var counts dto.StatusCountsResponse
	s.decode(rec, &counts)
	s.Equal("Epic", counts.Kind)
	s.Equal(1, counts.ByStatus["TODO"])
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}
