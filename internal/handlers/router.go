package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/assignment-service/internal/middleware"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/services"
	"github.com/learnhub/assignment-service/internal/utils"
)

type HandlerManager struct {
	assignmentHandler *AssignmentHandler
	attemptHandler    *AttemptHandler
	submissionHandler *SubmissionHandler
}

func NewHandlerManager(
	assignmentService services.AssignmentService,
	attemptService services.AttemptService,
	submissionService services.SubmissionService,
	validator *utils.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		assignmentHandler: NewAssignmentHandler(assignmentService, validator, logger),
		attemptHandler:    NewAttemptHandler(attemptService, logger),
		submissionHandler: NewSubmissionHandler(submissionService, logger),
	}
}

// SetupRoutes registers the API surface. Everything under /api/v1 runs
// behind the supplied auth middleware; /health stays open.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "assignment-service",
		})
	})

	v1 := router.Group("/api/v1", auth)
	{
		instructorOnly := middleware.RoleMiddleware(models.RoleInstructor)

		assignments := v1.Group("/assignments")
		{
			assignments.POST("", instructorOnly, hm.assignmentHandler.CreateAssignment)
			assignments.GET("/course/:course_id", hm.assignmentHandler.GetAssignmentsByCourse)
			assignments.GET("/:assignment_id", hm.assignmentHandler.GetAssignment)

			// Attempt lifecycle
			assignments.POST("/:assignment_id/start", hm.attemptHandler.StartAttempt)
			assignments.GET("/:assignment_id/time-status", hm.attemptHandler.GetTimeStatus)
			assignments.POST("/:assignment_id/submit", hm.attemptHandler.SubmitAssignment)

			// Instructor views; the services re-check course ownership.
			assignments.GET("/:assignment_id/submissions", instructorOnly, hm.submissionHandler.GetSubmissions)
			assignments.GET("/:assignment_id/submissions/export", instructorOnly, hm.submissionHandler.ExportGradeReport)
		}
	}
}
