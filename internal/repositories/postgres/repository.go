package postgres

import (
	"github.com/learnhub/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db          *gorm.DB
	assignments repositories.AssignmentRepository
	attempts    repositories.AttemptRepository
	submissions repositories.SubmissionRepository
	courses     repositories.CourseRepository
}

// NewRepository wires the Postgres-backed repositories behind the
// aggregate interface.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:          db,
		assignments: NewAssignmentPostgreSQL(db),
		attempts:    NewAttemptPostgreSQL(db),
		submissions: NewSubmissionPostgreSQL(db),
		courses:     NewCoursePostgreSQL(db),
	}
}

func (r *gormRepository) Assignment() repositories.AssignmentRepository { return r.assignments }
func (r *gormRepository) Attempt() repositories.AttemptRepository       { return r.attempts }
func (r *gormRepository) Submission() repositories.SubmissionRepository { return r.submissions }
func (r *gormRepository) Course() repositories.CourseRepository         { return r.courses }
