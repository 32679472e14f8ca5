package persistent

import (
	"context"

	"picboard/services/submission/internal/entity"
	"picboard/services/submission/internal/model"

	"gorm.io/gorm"
)

// SubmissionRepository only inserts and reads; submissions are never updated or deleted.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *entity.Submission) error
	List(ctx context.Context) ([]*entity.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

// Create inserts the row and copies the generated id and creation time back.
func (r *submissionRepository) Create(ctx context.Context, submission *entity.Submission) error {
	submissionModel := ToSubmissionModel(submission)
	submissionModel.ID = ""

	if err := r.db.WithContext(ctx).Create(submissionModel).Error; err != nil {
		return err
	}

	*submission = *ToSubmissionEntity(submissionModel)
	return nil
}

// List returns every submission, most recent first.
func (r *submissionRepository) List(ctx context.Context) ([]*entity.Submission, error) {
	var submissionModels []model.SubmissionModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&submissionModels).Error; err != nil {
		return nil, err
	}

	submissions := make([]*entity.Submission, len(submissionModels))
	for i := range submissionModels {
		submissions[i] = ToSubmissionEntity(&submissionModels[i])
	}
	return submissions, nil
}
