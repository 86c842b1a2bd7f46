package events

import "time"

type EventType string

const (
	EventAttemptStarted    EventType = "attempt.started"
	EventSubmissionGraded  EventType = "submission.graded"
)

// AssignmentEvent is the envelope published to the event topic whenever
// an attempt window opens or a submission is graded. Downstream
// consumers (notifications, analytics) subscribe to the topic; this
// service only produces.
type AssignmentEvent struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	AssignmentID string      `json:"assignment_id"`
	UserID       string      `json:"user_id"`
	Timestamp    time.Time   `json:"timestamp"`
	Source       string      `json:"source"`
	Data         interface{} `json:"data,omitempty"`
}

// AttemptStartedData rides on attempt.started events.
type AttemptStartedData struct {
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SubmissionGradedData rides on submission.graded events.
type SubmissionGradedData struct {
	SubmissionID   string  `json:"submission_id"`
	Grade          float64 `json:"grade"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
}
