package persistent

import (
	"picboard/services/submission/internal/entity"
	"picboard/services/submission/internal/model"

	"github.com/lib/pq"
)

func ToSubmissionEntity(m *model.SubmissionModel) *entity.Submission {
	if m == nil {
		return nil
	}

	urls := make([]string, len(m.MultipleImageURLs))
	copy(urls, m.MultipleImageURLs)

	return &entity.Submission{
		ID:                m.ID,
		Title:             m.Title,
		Description:       m.Description,
		SingleImageURL:    m.SingleImageURL,
		MultipleImageURLs: urls,
		CreatedAt:         m.CreatedAt,
	}
}

func ToSubmissionModel(e *entity.Submission) *model.SubmissionModel {
	if e == nil {
		return nil
	}

	urls := make(pq.StringArray, len(e.MultipleImageURLs))
	copy(urls, e.MultipleImageURLs)

	return &model.SubmissionModel{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		SingleImageURL:    e.SingleImageURL,
		MultipleImageURLs: urls,
		CreatedAt:         e.CreatedAt,
	}
}
