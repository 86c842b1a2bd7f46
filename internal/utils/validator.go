package utils

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/learnhub/assignment-service/internal/models"
)

// ValidationError is a single field-level failure, JSON-serializable for
// handler responses.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// NewValidationError creates a single validation error.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// Validator wraps struct-tag validation plus the business checks that
// tags cannot express (correct-answer bounds on questions).
type Validator struct {
	structValidator *validator.Validate
}

func NewValidator() *Validator {
	structValidator := validator.New()

	// Report JSON field names rather than Go field names.
	structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{structValidator: structValidator}
}

// Validate runs struct-tag validation and converts failures into
// ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := toValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// ValidateQuestions enforces the invariants on an assignment's question
// list: at least one question, each with at least one option and a
// correct-answer index inside the option bounds.
func (v *Validator) ValidateQuestions(questions []models.Question) error {
	var errs ValidationErrors
	if len(questions) == 0 {
		errs = append(errs, *NewValidationError("questions", "must contain at least one question", nil))
		return errs
	}

	for i, question := range questions {
		field := fmt.Sprintf("questions[%d]", i)
		if strings.TrimSpace(question.Text) == "" {
			errs = append(errs, *NewValidationError(field+".text", "is required", question.Text))
		}
		if len(question.Options) == 0 {
			errs = append(errs, *NewValidationError(field+".options", "must contain at least one option", nil))
			continue
		}
		if question.CorrectAnswer < 0 || question.CorrectAnswer >= len(question.Options) {
			errs = append(errs, *NewValidationError(
				field+".correctAnswer",
				fmt.Sprintf("must index an option (0..%d)", len(question.Options)-1),
				question.CorrectAnswer,
			))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func toValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	if fieldErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range fieldErrors {
			errs = append(errs, ValidationError{
				Field:   fieldError.Field(),
				Message: fieldErrorMessage(fieldError),
				Value:   fieldError.Value(),
				Rule:    fieldError.Tag(),
			})
		}
	}
	return errs
}

func fieldErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", err.Param())
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed validation rule '%s'", err.Tag())
	}
}
