package services

import (
	"context"
	"sync"

	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeRepository is an in-memory Repository that mirrors the storage
// semantics the services rely on: gorm.ErrRecordNotFound for missing
// rows and gorm.ErrDuplicatedKey for the (assignment, user) unique index
// on attempt records.
type fakeRepository struct {
	mu          sync.Mutex
	assignments map[string]*models.Assignment
	courses     map[string]*models.Course
	attempts    map[string]*models.AttemptRecord // key: assignmentID + "/" + userID
	submissions []*models.Submission

	// failNextAttemptCreate forces the next attempt insert to report a
	// duplicate key, simulating losing a concurrent-start race after the
	// existence check passed. If raceWinner is set it is stored first, as
	// the committed row that caused the conflict.
	failNextAttemptCreate bool
	raceWinner            *models.AttemptRecord
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		assignments: make(map[string]*models.Assignment),
		courses:     make(map[string]*models.Course),
		attempts:    make(map[string]*models.AttemptRecord),
	}
}

func (f *fakeRepository) Assignment() repositories.AssignmentRepository { return (*fakeAssignments)(f) }
func (f *fakeRepository) Attempt() repositories.AttemptRepository       { return (*fakeAttempts)(f) }
func (f *fakeRepository) Submission() repositories.SubmissionRepository { return (*fakeSubmissions)(f) }
func (f *fakeRepository) Course() repositories.CourseRepository         { return (*fakeCourses)(f) }

func attemptKey(assignmentID, userID string) string {
	return assignmentID + "/" + userID
}

type fakeAssignments fakeRepository

func (f *fakeAssignments) Create(ctx context.Context, assignment *models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.assignments[assignment.ID]; exists {
		return gorm.ErrDuplicatedKey
	}
	f.assignments[assignment.ID] = assignment
	return nil
}

func (f *fakeAssignments) GetByID(ctx context.Context, id string) (*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	assignment, ok := f.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (f *fakeAssignments) GetByCourse(ctx context.Context, courseID string) ([]*models.Assignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Assignment
	for _, assignment := range f.assignments {
		if assignment.CourseID == courseID {
			result = append(result, assignment)
		}
	}
	return result, nil
}

type fakeAttempts fakeRepository

func (f *fakeAttempts) Create(ctx context.Context, record *models.AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextAttemptCreate {
		f.failNextAttemptCreate = false
		if f.raceWinner != nil {
			stored := *f.raceWinner
			f.attempts[attemptKey(stored.AssignmentID, stored.UserID)] = &stored
		}
		return gorm.ErrDuplicatedKey
	}
	key := attemptKey(record.AssignmentID, record.UserID)
	if _, exists := f.attempts[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	stored := *record
	f.attempts[key] = &stored
	return nil
}

func (f *fakeAttempts) Get(ctx context.Context, assignmentID, userID string) (*models.AttemptRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.attempts[attemptKey(assignmentID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeAttempts) MarkCompleted(ctx context.Context, assignmentID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.attempts[attemptKey(assignmentID, userID)]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	record.Completed = true
	return nil
}

type fakeSubmissions fakeRepository

func (f *fakeSubmissions) Create(ctx context.Context, submission *models.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions = append(f.submissions, submission)
	return nil
}

func (f *fakeSubmissions) GetByAssignment(ctx context.Context, assignmentID string) ([]*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Submission
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID {
			result = append(result, submission)
		}
	}
	return result, nil
}

func (f *fakeSubmissions) GetByAssignmentAndUser(ctx context.Context, assignmentID, userID string) ([]*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*models.Submission
	for _, submission := range f.submissions {
		if submission.AssignmentID == assignmentID && submission.UserID == userID {
			result = append(result, submission)
		}
	}
	return result, nil
}

type fakeCourses fakeRepository

func (f *fakeCourses) GetByID(ctx context.Context, id string) (*models.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	course, ok := f.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return course, nil
}
