package services

import (
	"errors"

	"github.com/learnhub/assignment-service/internal/utils"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")

	// Assignment specific errors
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrCourseNotFound      = errors.New("course not found")
	ErrNotCourseInstructor = errors.New("not authorized to add assignments to this course")

	// Attempt specific errors
	ErrAttemptTimeExpired = errors.New("time limit exceeded, assignment cannot be submitted")
)

// ValidationError types are shared with the validation layer.
type ValidationError = utils.ValidationError
type ValidationErrors = utils.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if err represents a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrCourseNotFound)
}

// IsUnauthorized checks if err represents an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotCourseInstructor)
}

// IsTimeExpired checks if err is the expired-window rejection; handlers
// surface it with an explicit expired flag so clients can lock the form.
func IsTimeExpired(err error) bool {
	return errors.Is(err, ErrAttemptTimeExpired)
}

// IsValidation checks if err represents a validation failure.
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}
