package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/learnhub/assignment-service/internal/clock"
	"github.com/learnhub/assignment-service/internal/events"
	"github.com/learnhub/assignment-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedAssignment(repo *fakeRepository, id string, timeLimit int64, questions []models.Question) *models.Assignment {
	assignment := &models.Assignment{
		ID:        id,
		CourseID:  "course-1",
		Title:     "Weekly quiz",
		Questions: datatypes.NewJSONType(questions),
		TimeLimit: timeLimit,
	}
	repo.assignments[id] = assignment
	return assignment
}

func fourQuestions() []models.Question {
	return []models.Question{
		{Text: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
		{Text: "q2", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1},
		{Text: "q3", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 2},
		{Text: "q4", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 3},
	}
}

func newTestAttemptService(repo *fakeRepository, fake *clock.FakeClock) (AttemptService, *events.MockEventPublisher) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	grading := NewGradingEngine(repo, logger)
	return NewAttemptService(repo, grading, publisher, fake, logger), publisher
}

func TestStartIsIdempotent(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())

	service, publisher := newTestAttemptService(repo, fake)
	ctx := context.Background()

	first, err := service.Start(ctx, "asgn-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, start, first.StartedAt)
	assert.Equal(t, start.Add(2*time.Hour), first.ExpiresAt)
	assert.EqualValues(t, models.DefaultTimeLimit, first.TimeRemaining)

	// A second start returns the same window; remaining time has shrunk
	// by the elapsed half hour.
	fake.Advance(30 * time.Minute)
	second, err := service.Start(ctx, "asgn-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.StartedAt, second.StartedAt)
	assert.Equal(t, first.ExpiresAt, second.ExpiresAt)
	assert.EqualValues(t, (90 * time.Minute).Milliseconds(), second.TimeRemaining)

	assert.Len(t, repo.attempts, 1)

	// Only the creating call publishes attempt.started.
	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAttemptStarted, published[0].Type)
}

func TestStartExpiresAtEqualsStartPlusTimeLimit(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", (45 * time.Minute).Milliseconds(), fourQuestions())

	service, _ := newTestAttemptService(repo, fake)

	result, err := service.Start(context.Background(), "asgn-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, result.StartedAt.Add(45*time.Minute), result.ExpiresAt)
}

func TestStartUnknownAssignment(t *testing.T) {
	fake := clock.NewFake(time.Now())
	service, _ := newTestAttemptService(newFakeRepository(), fake)

	_, err := service.Start(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestStartResolvesDuplicateKeyRaceByRefetching(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())

	service, _ := newTestAttemptService(repo, fake)
	ctx := context.Background()

	// The winning request commits between this caller's existence check
	// and its insert, so the insert reports a duplicate key.
	winner := &models.AttemptRecord{
		ID:           "attempt-1",
		AssignmentID: "asgn-1",
		UserID:       "user-1",
		StartedAt:    start.Add(-time.Minute),
		ExpiresAt:    start.Add(-time.Minute).Add(2 * time.Hour),
	}
	repo.failNextAttemptCreate = true
	repo.raceWinner = winner

	result, err := service.Start(ctx, "asgn-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, winner.StartedAt, result.StartedAt)
	assert.Equal(t, winner.ExpiresAt, result.ExpiresAt)
	assert.Len(t, repo.attempts, 1)
}

func TestConcurrentStartsConvergeOnOneRecord(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())

	service, _ := newTestAttemptService(repo, fake)
	ctx := context.Background()

	const callers = 8
	results := make([]*StartAttemptResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = service.Start(ctx, "asgn-1", "user-1")
		}(i)
	}
	wg.Wait()

	assert.Len(t, repo.attempts, 1)
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ExpiresAt, results[i].ExpiresAt)
		assert.Equal(t, results[0].StartedAt, results[i].StartedAt)
	}
}

func TestTimeStatus(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := clock.NewFake(start)
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())

	service, _ := newTestAttemptService(repo, fake)
	ctx := context.Background()

	t.Run("not started", func(t *testing.T) {
		status, err := service.TimeStatus(ctx, "asgn-1", "user-1")
		require.NoError(t, err)
		assert.False(t, status.Started)
		assert.Equal(t, models.StateNotStarted, status.State)
		assert.Nil(t, status.TimeRemaining)
	})

	_, err := service.Start(ctx, "asgn-1", "user-1")
	require.NoError(t, err)

	t.Run("in progress", func(t *testing.T) {
		fake.Advance(time.Hour)
		status, err := service.TimeStatus(ctx, "asgn-1", "user-1")
		require.NoError(t, err)
		assert.True(t, status.Started)
		assert.Equal(t, models.StateInProgress, status.State)
		assert.EqualValues(t, time.Hour.Milliseconds(), *status.TimeRemaining)
		assert.False(t, *status.Expired)
		assert.False(t, *status.Completed)
	})

	t.Run("expired", func(t *testing.T) {
		fake.Advance(time.Hour + time.Millisecond)
		status, err := service.TimeStatus(ctx, "asgn-1", "user-1")
		require.NoError(t, err)
		assert.True(t, status.Started)
		assert.Equal(t, models.StateExpired, status.State)
		assert.EqualValues(t, 0, *status.TimeRemaining)
		assert.True(t, *status.Expired)
	})
}

func TestSubmitWindowBoundaries(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())
	ctx := context.Background()

	t.Run("succeeds one millisecond before expiry", func(t *testing.T) {
		fake := clock.NewFake(start)
		service, _ := newTestAttemptService(repo, fake)
		_, err := service.Start(ctx, "asgn-1", "boundary-user-1")
		require.NoError(t, err)

		fake.Advance(2*time.Hour - time.Millisecond)
		result, err := service.Submit(ctx, "asgn-1", "boundary-user-1", []int{0, 1, 2, 3})
		require.NoError(t, err)
		assert.EqualValues(t, 100, result.Grade)

		record, err := repo.Attempt().Get(ctx, "asgn-1", "boundary-user-1")
		require.NoError(t, err)
		assert.True(t, record.Completed)
	})

	t.Run("rejected one millisecond after expiry", func(t *testing.T) {
		fake := clock.NewFake(start)
		service, _ := newTestAttemptService(repo, fake)
		_, err := service.Start(ctx, "asgn-1", "boundary-user-2")
		require.NoError(t, err)

		fake.Advance(2*time.Hour + time.Millisecond)
		_, err = service.Submit(ctx, "asgn-1", "boundary-user-2", []int{0, 1, 2, 3})
		assert.ErrorIs(t, err, ErrAttemptTimeExpired)

		// Rejected even though the completed flag was still false, and
		// no submission record was written.
		record, getErr := repo.Attempt().Get(ctx, "asgn-1", "boundary-user-2")
		require.NoError(t, getErr)
		assert.False(t, record.Completed)
		submissions, _ := repo.Submission().GetByAssignmentAndUser(ctx, "asgn-1", "boundary-user-2")
		assert.Empty(t, submissions)
	})
}

func TestSubmitWithoutStartStillGrades(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())

	service, _ := newTestAttemptService(repo, fake)

	result, err := service.Submit(context.Background(), "asgn-1", "user-1", []int{0, 0, 0, 0})
	require.NoError(t, err)
	assert.EqualValues(t, 25, result.Grade)
	assert.Equal(t, 1, result.CorrectAnswers)
}

func TestSubmitPublishesGradedEvent(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())

	service, publisher := newTestAttemptService(repo, fake)
	ctx := context.Background()

	_, err := service.Start(ctx, "asgn-1", "user-1")
	require.NoError(t, err)
	publisher.ClearEvents()

	result, err := service.Submit(ctx, "asgn-1", "user-1", []int{0, 1, 2, 3})
	require.NoError(t, err)

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventSubmissionGraded, published[0].Type)
	data, ok := published[0].Data.(events.SubmissionGradedData)
	require.True(t, ok)
	assert.Equal(t, result.SubmissionID, data.SubmissionID)
	assert.EqualValues(t, 100, data.Grade)
}

func TestSubmitTwiceInsideWindowAppendsAuditTrail(t *testing.T) {
	fake := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := newFakeRepository()
	seedAssignment(repo, "asgn-1", models.DefaultTimeLimit, fourQuestions())

	service, _ := newTestAttemptService(repo, fake)
	ctx := context.Background()

	_, err := service.Start(ctx, "asgn-1", "user-1")
	require.NoError(t, err)

	_, err = service.Submit(ctx, "asgn-1", "user-1", []int{0, 1, 2, 3})
	require.NoError(t, err)
	_, err = service.Submit(ctx, "asgn-1", "user-1", []int{0, 0, 0, 0})
	require.NoError(t, err)

	submissions, err := repo.Submission().GetByAssignmentAndUser(ctx, "asgn-1", "user-1")
	require.NoError(t, err)
	assert.Len(t, submissions, 2)
}
