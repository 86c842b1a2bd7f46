package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/services"
	"github.com/learnhub/assignment-service/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAttemptService returns canned results per method.
type stubAttemptService struct {
	startResult  *services.StartAttemptResult
	statusResult *services.TimeStatusResult
	submitResult *services.SubmitResult
	err          error
}

func (s *stubAttemptService) Start(ctx context.Context, assignmentID, userID string) (*services.StartAttemptResult, error) {
	return s.startResult, s.err
}

func (s *stubAttemptService) TimeStatus(ctx context.Context, assignmentID, userID string) (*services.TimeStatusResult, error) {
	return s.statusResult, s.err
}

func (s *stubAttemptService) Submit(ctx context.Context, assignmentID, userID string, answers []int) (*services.SubmitResult, error) {
	return s.submitResult, s.err
}

func newAttemptRouter(service services.AttemptService, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAttemptHandler(service, utils.NewDevelopmentLogger())

	inject := func(c *gin.Context) {
		if authenticated {
			c.Set("user_id", "user-1")
		}
		c.Next()
	}
	router.POST("/assignments/:assignment_id/start", inject, handler.StartAttempt)
	router.GET("/assignments/:assignment_id/time-status", inject, handler.GetTimeStatus)
	router.POST("/assignments/:assignment_id/submit", inject, handler.SubmitAssignment)
	return router
}

func TestStartAttemptReturnsWindow(t *testing.T) {
	startedAt := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	service := &stubAttemptService{
		startResult: &services.StartAttemptResult{
			StartedAt:     startedAt,
			ExpiresAt:     startedAt.Add(2 * time.Hour),
			TimeRemaining: models.DefaultTimeLimit,
		},
	}
	router := newAttemptRouter(service, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assignments/asgn-1/start", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body services.StartAttemptResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.StartedAt.Equal(startedAt))
	assert.EqualValues(t, models.DefaultTimeLimit, body.TimeRemaining)
}

func TestStartAttemptRequiresAuthentication(t *testing.T) {
	router := newAttemptRouter(&stubAttemptService{}, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assignments/asgn-1/start", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStartAttemptUnknownAssignment(t *testing.T) {
	router := newAttemptRouter(&stubAttemptService{err: services.ErrAssignmentNotFound}, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assignments/missing/start", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubmitPastExpiryFlagsExpired(t *testing.T) {
	router := newAttemptRouter(&stubAttemptService{err: services.ErrAttemptTimeExpired}, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assignments/asgn-1/submit",
		strings.NewReader(`{"answers":[0,1,2,3]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Expired)
	assert.NotEmpty(t, body.Message)
}

func TestSubmitReturnsGrade(t *testing.T) {
	service := &stubAttemptService{
		submitResult: &services.SubmitResult{
			SubmissionID:   "sub-1",
			Grade:          75,
			TotalQuestions: 4,
			CorrectAnswers: 3,
		},
	}
	router := newAttemptRouter(service, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assignments/asgn-1/submit",
		strings.NewReader(`{"answers":[0,1,2,0]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body services.SubmitResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 75, body.Grade)
	assert.Equal(t, 3, body.CorrectAnswers)
}

func TestSubmitRejectsMalformedPayload(t *testing.T) {
	router := newAttemptRouter(&stubAttemptService{}, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/assignments/asgn-1/submit",
		strings.NewReader(`{"answers":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimeStatusNotStarted(t *testing.T) {
	service := &stubAttemptService{
		statusResult: &services.TimeStatusResult{
			Started: false,
			State:   models.StateNotStarted,
		},
	}
	router := newAttemptRouter(service, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/assignments/asgn-1/time-status", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["started"])
	// Optional fields stay absent before the attempt starts.
	assert.NotContains(t, body, "timeRemaining")
	assert.NotContains(t, body, "expired")
}
