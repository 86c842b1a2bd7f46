package repositories

import (
	"context"
	"errors"

	"github.com/learnhub/assignment-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-model repositories behind a single
// injection point for services.
type Repository interface {
	Assignment() AssignmentRepository
	Attempt() AttemptRepository
	Submission() SubmissionRepository
	Course() CourseRepository
}

// AssignmentRepository persists immutable assignment definitions.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id string) (*models.Assignment, error)
	GetByCourse(ctx context.Context, courseID string) ([]*models.Assignment, error)
}

// AttemptRepository persists the one-per-(assignment,user) attempt
// records. Create must surface the unique-index violation as a
// duplicate-key error so the caller can resolve concurrent starts by
// re-fetching.
type AttemptRepository interface {
	Create(ctx context.Context, record *models.AttemptRecord) error
	Get(ctx context.Context, assignmentID, userID string) (*models.AttemptRecord, error)
	MarkCompleted(ctx context.Context, assignmentID, userID string) error
}

// SubmissionRepository persists append-only graded submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByAssignment(ctx context.Context, assignmentID string) ([]*models.Submission, error)
	GetByAssignmentAndUser(ctx context.Context, assignmentID, userID string) ([]*models.Submission, error)
}

// CourseRepository resolves course ownership for the instructor check on
// assignment creation.
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*models.Course, error)
}

// IsNotFoundError reports whether err is the storage layer's missing-row
// error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKeyError reports whether err is a unique-constraint
// violation. The Postgres driver's error translator maps SQLSTATE 23505
// to gorm.ErrDuplicatedKey.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
