package models

import (
	"time"

	"gorm.io/datatypes"
)

// GradedAnswer is one question's scoring outcome within a submission.
// QuestionIndex is the position in the assignment's question list.
type GradedAnswer struct {
	QuestionIndex  int  `json:"questionIndex"`
	SelectedAnswer int  `json:"selectedAnswer"`
	IsCorrect      bool `json:"isCorrect"`
}

// Submission is one graded answer set. Submissions are append-only and
// carry no uniqueness constraint per (assignment, user): a second submit
// inside the window produces a second record, kept as an audit trail.
type Submission struct {
	ID             string                             `json:"submissionId" gorm:"primaryKey;size:36"`
	AssignmentID   string                             `json:"assignmentId" gorm:"not null;size:36;index"`
	UserID         string                             `json:"userId" gorm:"not null;size:36;index"`
	SubmissionDate time.Time                          `json:"submissionDate" gorm:"not null"`
	Grade          float64                            `json:"grade" gorm:"not null"` // percentage 0-100
	Answers        datatypes.JSONType[[]GradedAnswer] `json:"answers" gorm:"type:jsonb"`
}

func (Submission) TableName() string {
	return "submissions"
}

// AnswerList unwraps the JSONB answer breakdown.
func (s *Submission) AnswerList() []GradedAnswer {
	return s.Answers.Data()
}

// UserRole mirrors the identity service's role claim. The service trusts
// the role carried in the verified bearer token.
type UserRole string

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
)
