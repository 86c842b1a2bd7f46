package models

import "time"

// AttemptState is the derived status of one user's attempt at one
// assignment. It is never stored: every call site derives it through
// AttemptRecord.StateAt (or StateNotStarted when no record exists) so
// that expiry checks cannot diverge.
type AttemptState string

const (
	StateNotStarted AttemptState = "not_started"
	StateInProgress AttemptState = "in_progress"
	StateExpired    AttemptState = "expired"
	StateCompleted  AttemptState = "completed"
)

// AttemptRecord pins the time window of a user's single attempt at an
// assignment. At most one record ever exists per (assignment, user),
// enforced by a unique composite index. The record is created on the
// first start call and never recreated; the only mutation is flipping
// Completed to true on a successful submission.
type AttemptRecord struct {
	ID           string    `json:"-" gorm:"primaryKey;size:36"`
	AssignmentID string    `json:"assignmentId" gorm:"not null;size:36;uniqueIndex:idx_attempt_assignment_user"`
	UserID       string    `json:"userId" gorm:"not null;size:36;uniqueIndex:idx_attempt_assignment_user"`
	StartedAt    time.Time `json:"startedAt" gorm:"not null"`
	ExpiresAt    time.Time `json:"expiresAt" gorm:"not null"`
	Completed    bool      `json:"completed" gorm:"not null;default:false"`
}

func (AttemptRecord) TableName() string {
	return "attempt_records"
}

// Remaining returns the time left in the attempt window at the given
// instant, floored at zero.
func (r *AttemptRecord) Remaining(now time.Time) time.Duration {
	remaining := r.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpiredAt reports whether the window has closed for submission at the
// given instant. Submission at exactly ExpiresAt is still accepted; only
// strictly later instants are rejected.
func (r *AttemptRecord) ExpiredAt(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// StateAt derives the attempt state at the given instant. A completed
// attempt stays Completed even after the window closes.
func (r *AttemptRecord) StateAt(now time.Time) AttemptState {
	switch {
	case r.Completed:
		return StateCompleted
	case r.ExpiredAt(now):
		return StateExpired
	default:
		return StateInProgress
	}
}
