package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/learnhub/assignment-service/internal/clock"
	"github.com/learnhub/assignment-service/internal/events"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/repositories"
)

type attemptService struct {
	repo      repositories.Repository
	grading   *GradingEngine
	publisher events.EventPublisher
	clock     clock.Clock
	logger    *slog.Logger
}

func NewAttemptService(
	repo repositories.Repository,
	grading *GradingEngine,
	publisher events.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) AttemptService {
	return &attemptService{
		repo:      repo,
		grading:   grading,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// Start opens the attempt window, or returns the existing one. The call
// is idempotent: at most one attempt record ever exists per
// (assignment, user), and a duplicate-key conflict from a concurrent
// start resolves by re-fetching rather than failing.
func (s *attemptService) Start(ctx context.Context, assignmentID, userID string) (*StartAttemptResult, error) {
	s.logger.Info("Starting assignment attempt",
		"assignment_id", assignmentID,
		"user_id", userID)

	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if existing, err := s.repo.Attempt().Get(ctx, assignmentID, userID); err == nil {
		return s.startResultFor(existing), nil
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up attempt record: %w", err)
	}

	now := s.clock.Now()
	record := &models.AttemptRecord{
		ID:           uuid.NewString(),
		AssignmentID: assignmentID,
		UserID:       userID,
		StartedAt:    now,
		ExpiresAt:    now.Add(assignment.TimeLimitDuration()),
	}

	if err := s.repo.Attempt().Create(ctx, record); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			// Lost the race against a concurrent start; the stored
			// record is the attempt.
			existing, getErr := s.repo.Attempt().Get(ctx, assignmentID, userID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to fetch attempt after duplicate start: %w", getErr)
			}
			return s.startResultFor(existing), nil
		}
		return nil, fmt.Errorf("failed to create attempt record: %w", err)
	}

	s.publishEvent(ctx, events.EventAttemptStarted, assignmentID, userID, events.AttemptStartedData{
		StartedAt: record.StartedAt,
		ExpiresAt: record.ExpiresAt,
	})

	s.logger.Info("Assignment attempt started",
		"assignment_id", assignmentID,
		"user_id", userID,
		"expires_at", record.ExpiresAt)

	return &StartAttemptResult{
		StartedAt:     record.StartedAt,
		ExpiresAt:     record.ExpiresAt,
		TimeRemaining: assignment.TimeLimit,
	}, nil
}

// TimeStatus reports the attempt window as observed now. Expiry is
// computed lazily against the stored instant; no background sweep ever
// closes windows.
func (s *attemptService) TimeStatus(ctx context.Context, assignmentID, userID string) (*TimeStatusResult, error) {
	record, err := s.repo.Attempt().Get(ctx, assignmentID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &TimeStatusResult{Started: false, State: models.StateNotStarted}, nil
		}
		return nil, fmt.Errorf("failed to look up attempt record: %w", err)
	}

	now := s.clock.Now()
	remaining := record.Remaining(now).Milliseconds()
	expired := remaining == 0

	return &TimeStatusResult{
		Started:       true,
		StartedAt:     &record.StartedAt,
		ExpiresAt:     &record.ExpiresAt,
		TimeRemaining: &remaining,
		Expired:       &expired,
		Completed:     &record.Completed,
		State:         record.StateAt(now),
	}, nil
}

// Submit validates the time window, marks the attempt completed, and
// hands the answers to the grading engine. A submission past expiry is
// rejected regardless of payload. A user who never called start is still
// graded: starting is not a precondition for submitting.
func (s *attemptService) Submit(ctx context.Context, assignmentID, userID string, answers []int) (*SubmitResult, error) {
	s.logger.Info("Submitting assignment",
		"assignment_id", assignmentID,
		"user_id", userID,
		"answers_count", len(answers))

	record, err := s.repo.Attempt().Get(ctx, assignmentID, userID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up attempt record: %w", err)
	}

	now := s.clock.Now()
	if record != nil {
		if record.ExpiredAt(now) {
			s.logger.Warn("Rejected submission past expiry",
				"assignment_id", assignmentID,
				"user_id", userID,
				"expires_at", record.ExpiresAt)
			return nil, ErrAttemptTimeExpired
		}
		if err := s.repo.Attempt().MarkCompleted(ctx, assignmentID, userID); err != nil {
			return nil, fmt.Errorf("failed to mark attempt completed: %w", err)
		}
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	result, err := s.grading.Grade(ctx, assignment, userID, answers, now)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.EventSubmissionGraded, assignmentID, userID, events.SubmissionGradedData{
		SubmissionID:   result.SubmissionID,
		Grade:          result.Grade,
		TotalQuestions: result.TotalQuestions,
		CorrectAnswers: result.CorrectAnswers,
	})

	return result, nil
}

func (s *attemptService) startResultFor(record *models.AttemptRecord) *StartAttemptResult {
	return &StartAttemptResult{
		StartedAt:     record.StartedAt,
		ExpiresAt:     record.ExpiresAt,
		TimeRemaining: record.Remaining(s.clock.Now()).Milliseconds(),
	}
}

// publishEvent emits a lifecycle event. Publish failures are logged and
// swallowed: the event stream is advisory and must not fail the request.
func (s *attemptService) publishEvent(ctx context.Context, eventType events.EventType, assignmentID, userID string, data interface{}) {
	if s.publisher == nil {
		return
	}
	event := &events.AssignmentEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		AssignmentID: assignmentID,
		UserID:       userID,
		Timestamp:    s.clock.Now(),
		Source:       "assignment-service",
		Data:         data,
	}
	if err := s.publisher.PublishAssignmentEvent(ctx, event); err != nil {
		s.logger.Error("Failed to publish assignment event",
			"event_type", eventType,
			"assignment_id", assignmentID,
			"error", err)
	}
}
