package services

import (
	"context"
	"time"

	"github.com/learnhub/assignment-service/internal/models"
)

// AssignmentService covers the collaborator CRUD surface the attempt
// lifecycle depends on: instructors create assignments, students fetch
// them.
type AssignmentService interface {
	Create(ctx context.Context, req *CreateAssignmentRequest, instructorID string) (*models.Assignment, error)
	GetByID(ctx context.Context, assignmentID string) (*models.Assignment, error)
	GetByCourse(ctx context.Context, courseID string) ([]*models.Assignment, error)
}

// AttemptService is the attempt lifecycle manager: it gates access to
// assignment time windows and routes valid submissions to grading.
type AttemptService interface {
	Start(ctx context.Context, assignmentID, userID string) (*StartAttemptResult, error)
	TimeStatus(ctx context.Context, assignmentID, userID string) (*TimeStatusResult, error)
	Submit(ctx context.Context, assignmentID, userID string, answers []int) (*SubmitResult, error)
}

// SubmissionService exposes graded submissions to instructors, including
// the spreadsheet export.
type SubmissionService interface {
	GetByAssignment(ctx context.Context, assignmentID, requesterID string) ([]*models.Submission, error)
	ExportGradeReport(ctx context.Context, assignmentID, requesterID string) ([]byte, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type CreateAssignmentRequest struct {
	CourseID  string            `json:"courseId" validate:"required"`
	Title     string            `json:"title" validate:"required,max=200"`
	Questions []models.Question `json:"questions" validate:"required,min=1,dive"`
	TimeLimit int64             `json:"timeLimit" validate:"omitempty,min=1"` // milliseconds
}

// StartAttemptResult reports the attempt window. TimeRemaining is in
// milliseconds, matching the wire format the countdown consumes.
type StartAttemptResult struct {
	StartedAt     time.Time `json:"startedAt"`
	ExpiresAt     time.Time `json:"expiresAt"`
	TimeRemaining int64     `json:"timeRemaining"`
}

// TimeStatusResult reports the attempt window as observed now. The
// optional fields are only present once the attempt has started.
type TimeStatusResult struct {
	Started       bool                `json:"started"`
	StartedAt     *time.Time          `json:"startedAt,omitempty"`
	ExpiresAt     *time.Time          `json:"expiresAt,omitempty"`
	TimeRemaining *int64              `json:"timeRemaining,omitempty"`
	Expired       *bool               `json:"expired,omitempty"`
	Completed     *bool               `json:"completed,omitempty"`
	State         models.AttemptState `json:"state"`
}

type SubmitResult struct {
	SubmissionID   string  `json:"submissionId"`
	Grade          float64 `json:"grade"`
	TotalQuestions int     `json:"totalQuestions"`
	CorrectAnswers int     `json:"correctAnswers"`
}
