package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/repositories"
	"gorm.io/datatypes"
)

// GradingEngine scores submitted answer sets against an assignment's
// stored correct answers and persists the resulting submission.
type GradingEngine struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGradingEngine(repo repositories.Repository, logger *slog.Logger) *GradingEngine {
	return &GradingEngine{repo: repo, logger: logger}
}

// GradeAnswers scores answers positionally against the assignment's
// questions. Iteration is answer-driven: trailing questions with no
// answer are simply not graded, but still count in the denominator, so a
// partial answer set is penalized for what it left out. Answers past the
// question list, or out of an option range, grade as incorrect.
func GradeAnswers(assignment *models.Assignment, answers []int) ([]models.GradedAnswer, int) {
	questions := assignment.QuestionList()

	graded := make([]models.GradedAnswer, 0, len(answers))
	correct := 0
	for i, answer := range answers {
		isCorrect := i < len(questions) && answer == questions[i].CorrectAnswer
		if isCorrect {
			correct++
		}
		graded = append(graded, models.GradedAnswer{
			QuestionIndex:  i,
			SelectedAnswer: answer,
			IsCorrect:      isCorrect,
		})
	}
	return graded, correct
}

// Grade scores the answer set, persists a Submission, and returns the
// outcome. The grade is a percentage of the full question count, not of
// the answers provided.
func (g *GradingEngine) Grade(ctx context.Context, assignment *models.Assignment, userID string, answers []int, now time.Time) (*SubmitResult, error) {
	graded, correct := GradeAnswers(assignment, answers)

	totalQuestions := len(assignment.QuestionList())
	grade := 0.0
	if totalQuestions > 0 {
		grade = float64(correct) / float64(totalQuestions) * 100
	}

	submission := &models.Submission{
		ID:             uuid.NewString(),
		AssignmentID:   assignment.ID,
		UserID:         userID,
		SubmissionDate: now,
		Grade:          grade,
		Answers:        datatypes.NewJSONType(graded),
	}

	if err := g.repo.Submission().Create(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to persist submission: %w", err)
	}

	g.logger.Info("Submission graded",
		"submission_id", submission.ID,
		"assignment_id", assignment.ID,
		"user_id", userID,
		"grade", grade,
		"correct_answers", correct,
		"total_questions", totalQuestions)

	return &SubmitResult{
		SubmissionID:   submission.ID,
		Grade:          grade,
		TotalQuestions: totalQuestions,
		CorrectAnswers: correct,
	}, nil
}
