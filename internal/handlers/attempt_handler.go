package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/assignment-service/internal/services"
	"github.com/learnhub/assignment-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

type SubmitAssignmentRequest struct {
	Answers []int `json:"answers"`
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt opens (or re-reads) the caller's attempt window.
// Idempotent: repeated calls return the original window.
// @Router /assignments/{assignment_id}/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	assignmentID := ParseStringIDParam(c, "assignment_id")
	if assignmentID == "" {
		return
	}
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Starting attempt", "assignment_id", assignmentID)

	result, err := h.attemptService.Start(c.Request.Context(), assignmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTimeStatus reports the caller's attempt window as observed now.
// @Router /assignments/{assignment_id}/time-status [get]
func (h *AttemptHandler) GetTimeStatus(c *gin.Context) {
	assignmentID := ParseStringIDParam(c, "assignment_id")
	if assignmentID == "" {
		return
	}
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	result, err := h.attemptService.TimeStatus(c.Request.Context(), assignmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitAssignment grades the caller's answers. Past the attempt window
// the response is 400 with expired=true.
// @Router /assignments/{assignment_id}/submit [post]
func (h *AttemptHandler) SubmitAssignment(c *gin.Context) {
	assignmentID := ParseStringIDParam(c, "assignment_id")
	if assignmentID == "" {
		return
	}
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	var req SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting assignment",
		"assignment_id", assignmentID,
		"answers_count", len(req.Answers))

	result, err := h.attemptService.Submit(c.Request.Context(), assignmentID, userID, req.Answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
