package web

import (
	"bytes"
	"testing"
	"time"

	"picboard/services/submission/internal/entity"
	"picboard/services/submission/internal/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, view form.View) string {
	t.Helper()
	var buf bytes.Buffer
	err := Templates().ExecuteTemplate(&buf, IndexTemplate, map[string]interface{}{
		"Form":    view,
		"Loading": view.List == form.Loading,
	})
	require.NoError(t, err)
	return buf.String()
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)
	assert.Equal(t, "3/5/2024, 2:07:09 PM", FormatTime(ts))
	assert.Empty(t, FormatTime(time.Time{}))
}

func TestIndex_Loading(t *testing.T) {
	html := render(t, form.View{List: form.Loading})

	assert.Contains(t, html, "Loading...")
	assert.Contains(t, html, ">Submit</button>")
}

func TestIndex_ListError(t *testing.T) {
	html := render(t, form.View{List: form.Failed, ListMessage: form.MessageLoadFailed})

	assert.Contains(t, html, "Error loading data")
	assert.NotContains(t, html, "Loading...")
}

func TestIndex_Submitting(t *testing.T) {
	html := render(t, form.View{Status: form.Submitting, SubmitDisabled: true, List: form.Ready})

	assert.Contains(t, html, "disabled>Submitting...</button>")
	assert.Contains(t, html, "No submissions yet")
}

func TestIndex_Entries(t *testing.T) {
	html := render(t, form.View{
		List: form.Ready,
		Notification: &form.Notification{
			Kind:    form.NotificationSuccess,
			Message: form.MessageSubmitted,
		},
		FieldErrors:      map[string]string{"title": "Title is required"},
		MultiplePreviews: []form.PreviewRef{{ID: "p1", Name: "a.png"}},
		Submissions: []*entity.Submission{{
			ID:                "1",
			Title:             "Trip",
			Description:       "Beach",
			SingleImageURL:    "https://cdn.test/images/1-a.jpg",
			MultipleImageURLs: []string{"https://cdn.test/images/1-b.jpg"},
			CreatedAt:         time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local),
		}},
	})

	assert.Contains(t, html, "Form submitted successfully!")
	assert.Contains(t, html, "Title is required")
	assert.Contains(t, html, `src="/previews/p1"`)
	assert.Contains(t, html, "<h3>Trip</h3>")
	assert.Contains(t, html, "https://cdn.test/images/1-a.jpg")
	assert.Contains(t, html, `alt="Uploaded image 1"`)
	assert.Contains(t, html, "Submitted on: 3/5/2024, 2:07:09 PM")
	assert.NotContains(t, html, "No submissions yet")
}
