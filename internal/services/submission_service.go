package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

type submissionService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewSubmissionService(repo repositories.Repository, logger *slog.Logger) SubmissionService {
	return &submissionService{repo: repo, logger: logger}
}

// GetByAssignment lists an assignment's submissions, restricted to the
// instructor who owns the course.
func (s *submissionService) GetByAssignment(ctx context.Context, assignmentID, requesterID string) ([]*models.Submission, error) {
	if err := s.authorizeInstructor(ctx, assignmentID, requesterID); err != nil {
		return nil, err
	}

	submissions, err := s.repo.Submission().GetByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, nil
}

// ExportGradeReport renders an assignment's submissions as an XLSX
// workbook: one row per submission, one sheet.
func (s *submissionService) ExportGradeReport(ctx context.Context, assignmentID, requesterID string) ([]byte, error) {
	submissions, err := s.GetByAssignment(ctx, assignmentID, requesterID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	workbook := excelize.NewFile()
	defer workbook.Close()

	const sheet = "Grades"
	if err := workbook.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name grade sheet: %w", err)
	}

	headers := []interface{}{"Submission ID", "User ID", "Submitted At", "Grade (%)", "Correct", "Total Questions"}
	if err := workbook.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header row: %w", err)
	}

	totalQuestions := len(assignment.QuestionList())
	for i, submission := range submissions {
		correct := 0
		for _, answer := range submission.AnswerList() {
			if answer.IsCorrect {
				correct++
			}
		}
		row := []interface{}{
			submission.ID,
			submission.UserID,
			submission.SubmissionDate.Format("2006-01-02 15:04:05"),
			submission.Grade,
			correct,
			totalQuestions,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write grade row: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize grade report: %w", err)
	}

	s.logger.Info("Exported grade report",
		"assignment_id", assignmentID,
		"submissions", len(submissions))

	return buf.Bytes(), nil
}

// authorizeInstructor resolves assignment -> course -> instructor and
// rejects requesters who do not own the course.
func (s *submissionService) authorizeInstructor(ctx context.Context, assignmentID, requesterID string) error {
	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to get assignment: %w", err)
	}

	course, err := s.repo.Course().GetByID(ctx, assignment.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("failed to get course: %w", err)
	}

	if course.InstructorID != requesterID {
		return ErrNotCourseInstructor
	}
	return nil
}
