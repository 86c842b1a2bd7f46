package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/assignment-service/internal/services"
	"github.com/learnhub/assignment-service/internal/utils"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// GetSubmissions lists an assignment's graded submissions for the
// course instructor.
// @Router /assignments/{assignment_id}/submissions [get]
func (h *SubmissionHandler) GetSubmissions(c *gin.Context) {
	assignmentID := ParseStringIDParam(c, "assignment_id")
	if assignmentID == "" {
		return
	}
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	submissions, err := h.submissionService.GetByAssignment(c.Request.Context(), assignmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// ExportGradeReport streams the assignment's grades as an XLSX
// attachment.
// @Router /assignments/{assignment_id}/submissions/export [get]
func (h *SubmissionHandler) ExportGradeReport(c *gin.Context) {
	assignmentID := ParseStringIDParam(c, "assignment_id")
	if assignmentID == "" {
		return
	}
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Exporting grade report", "assignment_id", assignmentID)

	report, err := h.submissionService.ExportGradeReport(c.Request.Context(), assignmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("grades-%s.xlsx", assignmentID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		report)
}
