package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultTimeLimit is applied when an assignment is created without an
// explicit time limit: two hours, in milliseconds.
const DefaultTimeLimit = 2 * 60 * 60 * 1000

// Question is a single multiple-choice question. Questions are stored
// inline on the assignment as a JSONB column; they have no identity of
// their own and are addressed by position.
type Question struct {
	Text          string   `json:"text" validate:"required"`
	Options       []string `json:"options" validate:"required,min=1"`
	CorrectAnswer int      `json:"correctAnswer" validate:"min=0"`
}

// Assignment is a timed multiple-choice assignment owned by a course.
// Immutable once created: there is no update or delete path.
type Assignment struct {
	ID        string                         `json:"assignmentId" gorm:"primaryKey;size:36"`
	CourseID  string                         `json:"courseId" gorm:"not null;size:36;index"`
	Title     string                         `json:"title" gorm:"not null;size:200"`
	Questions datatypes.JSONType[[]Question] `json:"questions" gorm:"type:jsonb"`
	TimeLimit int64                          `json:"timeLimit" gorm:"not null;default:7200000"` // milliseconds
	CreatedAt time.Time                      `json:"createdAt"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// TimeLimitDuration returns the time limit as a time.Duration.
func (a *Assignment) TimeLimitDuration() time.Duration {
	return time.Duration(a.TimeLimit) * time.Millisecond
}

// QuestionList unwraps the JSONB question column.
func (a *Assignment) QuestionList() []Question {
	return a.Questions.Data()
}

// Course is the minimal slice of the course catalog this service needs:
// enough to resolve ownership when an instructor creates an assignment.
// Catalog CRUD lives in another service.
type Course struct {
	ID           string    `json:"courseId" gorm:"primaryKey;size:36"`
	Title        string    `json:"title" gorm:"not null;size:200"`
	InstructorID string    `json:"instructorId" gorm:"not null;size:36;index"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (Course) TableName() string {
	return "courses"
}
