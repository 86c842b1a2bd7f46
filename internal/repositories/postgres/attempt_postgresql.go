package postgres

import (
	"context"

	"github.com/learnhub/assignment-service/internal/models"
	"github.com/learnhub/assignment-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

// Create inserts the attempt record. A concurrent insert for the same
// (assignment, user) hits the idx_attempt_assignment_user unique index
// and comes back as gorm.ErrDuplicatedKey; callers resolve that by
// re-fetching the existing record.
func (a *AttemptPostgreSQL) Create(ctx context.Context, record *models.AttemptRecord) error {
	return a.db.WithContext(ctx).Create(record).Error
}

func (a *AttemptPostgreSQL) Get(ctx context.Context, assignmentID, userID string) (*models.AttemptRecord, error) {
	var record models.AttemptRecord
	if err := a.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (a *AttemptPostgreSQL) MarkCompleted(ctx context.Context, assignmentID, userID string) error {
	result := a.db.WithContext(ctx).
		Model(&models.AttemptRecord{}).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Update("completed", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
