package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type SubmissionModel struct {
	ID                string         `gorm:"type:uuid;primary_key" json:"id"`
	Title             string         `gorm:"type:text;not null" json:"title"`
	Description       string         `gorm:"type:text;not null" json:"description"`
	SingleImageURL    string         `gorm:"column:single_image_url;type:text;not null;default:''" json:"single_image_url"`
	MultipleImageURLs pq.StringArray `gorm:"column:multiple_image_urls;type:text[];not null;default:'{}'" json:"multiple_image_urls"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
}

func (SubmissionModel) TableName() string {
	return "form_submissions"
}

func (s *SubmissionModel) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
