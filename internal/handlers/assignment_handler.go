package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/services"
	"github.com/learnhub/assignment-service/internal/utils"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
	validator         *utils.Validator
}

func NewAssignmentHandler(
	assignmentService services.AssignmentService,
	validator *utils.Validator,
	logger utils.Logger,
) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
		validator:         validator,
	}
}

// AssignmentView is the student-facing shape of an assignment: the
// correct answers never leave the server on read paths.
type AssignmentView struct {
	ID        string         `json:"id"`
	CourseID  string         `json:"courseId"`
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
	TimeLimit int64          `json:"timeLimit"`
	CreatedAt time.Time      `json:"createdAt"`
}

type QuestionView struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

func toAssignmentView(assignment *models.Assignment) *AssignmentView {
	questions := assignment.QuestionList()
	views := make([]QuestionView, 0, len(questions))
	for _, question := range questions {
		views = append(views, QuestionView{Text: question.Text, Options: question.Options})
	}
	return &AssignmentView{
		ID:        assignment.ID,
		CourseID:  assignment.CourseID,
		Title:     assignment.Title,
		Questions: views,
		TimeLimit: assignment.TimeLimit,
		CreatedAt: assignment.CreatedAt,
	}
}

// CreateAssignment creates a timed assignment for a course the
// requesting instructor owns.
// @Router /assignments [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Creating assignment")

	var req services.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// GetAssignment returns one assignment without correct answers.
// @Router /assignments/{assignment_id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignmentID := ParseStringIDParam(c, "assignment_id")
	if assignmentID == "" {
		return
	}

	assignment, err := h.assignmentService.GetByID(c.Request.Context(), assignmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAssignmentView(assignment))
}

// GetAssignmentsByCourse lists a course's assignments without correct
// answers.
// @Router /assignments/course/{course_id} [get]
func (h *AssignmentHandler) GetAssignmentsByCourse(c *gin.Context) {
	courseID := ParseStringIDParam(c, "course_id")
	if courseID == "" {
		return
	}

	assignments, err := h.assignmentService.GetByCourse(c.Request.Context(), courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	views := make([]*AssignmentView, 0, len(assignments))
	for _, assignment := range assignments {
		views = append(views, toAssignmentView(assignment))
	}
	c.JSON(http.StatusOK, views)
}
