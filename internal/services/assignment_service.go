package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/assignment-service/internal/cache"
	"github.com/learnhub/assignment-service/internal/clock"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/repositories"
	"github.com/learnhub/assignment-service/internal/utils"
	"gorm.io/datatypes"
)

// assignmentCacheTTL bounds staleness for cached definitions. The cache
// is read-through; assignments are immutable, so a stale entry can only
// be a missing one.
const assignmentCacheTTL = 15 * time.Minute

type assignmentService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	validator *utils.Validator
	clock     clock.Clock
	logger    *slog.Logger
}

func NewAssignmentService(
	repo repositories.Repository,
	cacheService cache.CacheService,
	validator *utils.Validator,
	clk clock.Clock,
	logger *slog.Logger,
) AssignmentService {
	return &assignmentService{
		repo:      repo,
		cache:     cacheService,
		validator: validator,
		clock:     clk,
		logger:    logger,
	}
}

// Create persists a new assignment after verifying the requesting
// instructor owns the course. Assignments are immutable once created.
func (s *assignmentService) Create(ctx context.Context, req *CreateAssignmentRequest, instructorID string) (*models.Assignment, error) {
	s.logger.Info("Creating assignment",
		"course_id", req.CourseID,
		"instructor_id", instructorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateQuestions(req.Questions); err != nil {
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, req.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.InstructorID != instructorID {
		return nil, ErrNotCourseInstructor
	}

	timeLimit := req.TimeLimit
	if timeLimit <= 0 {
		timeLimit = models.DefaultTimeLimit
	}

	assignment := &models.Assignment{
		ID:        uuid.NewString(),
		CourseID:  req.CourseID,
		Title:     req.Title,
		Questions: datatypes.NewJSONType(req.Questions),
		TimeLimit: timeLimit,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Assignment().Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	if err := s.cache.Set(ctx, assignmentCacheKey(assignment.ID), assignment, assignmentCacheTTL); err != nil {
		s.logger.Warn("Failed to prime assignment cache", "assignment_id", assignment.ID, "error", err)
	}
	if err := s.cache.Delete(ctx, courseAssignmentsCacheKey(req.CourseID)); err != nil {
		s.logger.Warn("Failed to invalidate course assignments cache", "course_id", req.CourseID, "error", err)
	}

	s.logger.Info("Assignment created",
		"assignment_id", assignment.ID,
		"course_id", req.CourseID,
		"questions", len(req.Questions),
		"time_limit_ms", timeLimit)

	return assignment, nil
}

// GetByID fetches an assignment definition, read-through cached.
func (s *assignmentService) GetByID(ctx context.Context, assignmentID string) (*models.Assignment, error) {
	var cached models.Assignment
	if err := s.cache.Get(ctx, assignmentCacheKey(assignmentID), &cached); err == nil {
		return &cached, nil
	}

	assignment, err := s.repo.Assignment().GetByID(ctx, assignmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if err := s.cache.Set(ctx, assignmentCacheKey(assignmentID), assignment, assignmentCacheTTL); err != nil {
		s.logger.Warn("Failed to cache assignment", "assignment_id", assignmentID, "error", err)
	}
	return assignment, nil
}

// GetByCourse lists a course's assignments in creation order.
func (s *assignmentService) GetByCourse(ctx context.Context, courseID string) ([]*models.Assignment, error) {
	var cached []*models.Assignment
	if err := s.cache.Get(ctx, courseAssignmentsCacheKey(courseID), &cached); err == nil {
		return cached, nil
	}

	assignments, err := s.repo.Assignment().GetByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	if err := s.cache.Set(ctx, courseAssignmentsCacheKey(courseID), assignments, assignmentCacheTTL); err != nil {
		s.logger.Warn("Failed to cache course assignments", "course_id", courseID, "error", err)
	}
	return assignments, nil
}

func assignmentCacheKey(assignmentID string) string {
	return "assignments:" + assignmentID
}

func courseAssignmentsCacheKey(courseID string) string {
	return "assignments:course:" + courseID
}
