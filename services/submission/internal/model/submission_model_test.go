package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionModel_BeforeCreate(t *testing.T) {
	submission := &SubmissionModel{Title: "Trip", Description: "Beach"}

	err := submission.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, submission.ID)
}

func TestSubmissionModel_BeforeCreate_WithID(t *testing.T) {
	existingID := "3f8c5c1e-0000-4000-8000-000000000001"
	submission := &SubmissionModel{ID: existingID}

	err := submission.BeforeCreate(nil)
	assert.NoError(t, err)
	assert.Equal(t, existingID, submission.ID)
}

func TestSubmissionModel_TableName(t *testing.T) {
	assert.Equal(t, "form_submissions", SubmissionModel{}.TableName())
}
