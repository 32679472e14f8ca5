package persistent

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"picboard/services/submission/internal/entity"
	"picboard/services/submission/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testDBSeq int64

// setupDB opens a unique in-memory SQLite database with the form_submissions table.
// The array column is plain TEXT here; pq.StringArray round-trips through it.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	seq := atomic.AddInt64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:submissions_%d?mode=memory&cache=shared", seq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.Exec(`CREATE TABLE form_submissions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		single_image_url TEXT NOT NULL DEFAULT '',
		multiple_image_urls TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME
	)`).Error
	require.NoError(t, err)

	return db
}

func TestSubmissionRepository_Create(t *testing.T) {
	db := setupDB(t)
	repo := NewSubmissionRepository(db)

	submission := &entity.Submission{
		ID:                "client-supplied",
		Title:             "Trip",
		Description:       "Beach",
		SingleImageURL:    "https://cdn.test/images/1-a.jpg",
		MultipleImageURLs: []string{"https://cdn.test/images/1-b.jpg", "https://cdn.test/images/1-c.jpg"},
	}

	require.NoError(t, repo.Create(context.Background(), submission))

	assert.NotEmpty(t, submission.ID)
	assert.NotEqual(t, "client-supplied", submission.ID)
	assert.False(t, submission.CreatedAt.IsZero())

	var stored model.SubmissionModel
	require.NoError(t, db.First(&stored, "id = ?", submission.ID).Error)
	assert.Equal(t, "Trip", stored.Title)
	assert.Equal(t, []string{"https://cdn.test/images/1-b.jpg", "https://cdn.test/images/1-c.jpg"}, []string(stored.MultipleImageURLs))
}

func TestSubmissionRepository_Create_EmptyImages(t *testing.T) {
	db := setupDB(t)
	repo := NewSubmissionRepository(db)

	submission := &entity.Submission{Title: "Notes", Description: "No pictures"}
	require.NoError(t, repo.Create(context.Background(), submission))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "", list[0].SingleImageURL)
	assert.NotNil(t, list[0].MultipleImageURLs)
	assert.Empty(t, list[0].MultipleImageURLs)
}

func TestSubmissionRepository_List_NewestFirst(t *testing.T) {
	db := setupDB(t)
	repo := NewSubmissionRepository(db)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, title := range []string{"t1", "t2", "t3"} {
		row := &model.SubmissionModel{
			Title:       title,
			Description: "d",
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(row).Error)
	}

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "t3", list[0].Title)
	assert.Equal(t, "t2", list[1].Title)
	assert.Equal(t, "t1", list[2].Title)
}

func TestSubmissionRepository_List_Empty(t *testing.T) {
	repo := NewSubmissionRepository(setupDB(t))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubmissionRepository_List_Error(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Exec("DROP TABLE form_submissions").Error)

	_, err := NewSubmissionRepository(db).List(context.Background())
	assert.Error(t, err)
}

func TestMapper_NilSafe(t *testing.T) {
	assert.Nil(t, ToSubmissionEntity(nil))
	assert.Nil(t, ToSubmissionModel(nil))
}
