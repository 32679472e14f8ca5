package http

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"picboard/services/submission/internal/entity"
	"picboard/services/submission/internal/form"
	"picboard/services/submission/internal/usecase"
	"picboard/services/submission/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testMaxFiles = 3

type pageFixture struct {
	router   *gin.Engine
	useCase  *MockSubmissionUseCase
	previews *form.PreviewStore
	sessions *form.Sessions
}

func newPageFixture() *pageFixture {
	mockUseCase := new(MockSubmissionUseCase)
	previews := form.NewPreviewStore()
	log := testLogger()
	sessions := form.NewSessions(16, time.Minute, func() *form.Form {
		return form.New(mockUseCase, previews, log)
	})
	handler := NewPageHandler(sessions, previews, time.Minute, testMaxFiles, log)

	router := setupTestRouter()
	router.SetHTMLTemplate(web.Templates())
	router.GET("/", handler.Index)
	router.POST("/draft", handler.UpdateDraft)
	router.POST("/submit", handler.Submit)
	router.GET("/previews/:id", handler.Preview)

	return &pageFixture{router: router, useCase: mockUseCase, previews: previews, sessions: sessions}
}

func (f *pageFixture) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestIndex_RendersList(t *testing.T) {
	f := newPageFixture()
	f.useCase.On("List", mock.Anything).Return([]*entity.Submission{
		{ID: "1", Title: "Trip", Description: "Beach", MultipleImageURLs: []string{}, CreatedAt: time.Now()},
	}, nil).Once()

	req, _ := http.NewRequest("GET", "/", nil)
	w := f.do(req, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h3>Trip</h3>")
	assert.Contains(t, w.Body.String(), "Submitted on:")
	assert.Equal(t, 1, f.sessions.Len())
	sessionCookie(t, w)
}

func TestIndex_ListError(t *testing.T) {
	f := newPageFixture()
	f.useCase.On("List", mock.Anything).Return(nil, &usecase.FetchError{}).Once()

	req, _ := http.NewRequest("GET", "/", nil)
	w := f.do(req, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Error loading data")
}

func TestDraft_ThenSubmit(t *testing.T) {
	f := newPageFixture()
	f.useCase.On("List", mock.Anything).Return([]*entity.Submission{}, nil)

	// first visit starts the session
	req, _ := http.NewRequest("GET", "/", nil)
	cookie := sessionCookie(t, f.do(req, nil))

	body, contentType := multipartBody(t,
		map[string]string{"title": "Trip", "description": "Beach"},
		part{"single_image", "a.png", "image/png", "png-bytes"},
	)
	req, _ = http.NewRequest("POST", "/draft", body)
	req.Header.Set("Content-Type", contentType)
	w := f.do(req, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 1, f.previews.Len())

	formState, ok := f.sessions.Get(cookie.Value)
	require.True(t, ok)
	view := formState.View()
	require.NotNil(t, view.SinglePreview)

	req, _ = http.NewRequest("GET", "/previews/"+view.SinglePreview.ID, nil)
	w = f.do(req, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	// the browser lost the file selection after the redirect, the draft keeps it
	f.useCase.On("Submit", mock.Anything, mock.MatchedBy(func(in usecase.SubmitInput) bool {
		return in.Title == "Trip" && in.SingleImage != nil && in.SingleImage.Name == "a.png"
	})).Return(&entity.Submission{ID: "1"}, nil).Once()

	body, contentType = multipartBody(t, map[string]string{"title": "Trip", "description": "Beach"})
	req, _ = http.NewRequest("POST", "/submit", body)
	req.Header.Set("Content-Type", contentType)
	w = f.do(req, cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 0, f.previews.Len())

	req, _ = http.NewRequest("GET", "/", nil)
	w = f.do(req, cookie)
	assert.Contains(t, w.Body.String(), "Form submitted successfully!")

	req, _ = http.NewRequest("GET", "/", nil)
	w = f.do(req, cookie)
	assert.NotContains(t, w.Body.String(), "Form submitted successfully!", "notification is shown once")
	f.useCase.AssertExpectations(t)
}

func TestSubmit_FailureShowsNotification(t *testing.T) {
	f := newPageFixture()
	f.useCase.On("List", mock.Anything).Return([]*entity.Submission{}, nil)
	f.useCase.On("Submit", mock.Anything, mock.Anything).Return(nil, &usecase.InsertError{}).Once()

	body, contentType := multipartBody(t, map[string]string{"title": "Trip", "description": "Beach"})
	req, _ := http.NewRequest("POST", "/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := f.do(req, nil)
	cookie := sessionCookie(t, w)

	req, _ = http.NewRequest("GET", "/", nil)
	w = f.do(req, cookie)
	assert.Contains(t, w.Body.String(), "Failed to submit form. Please try again.")
	assert.Contains(t, w.Body.String(), `value="Trip"`)
}

func TestPreview_NotFound(t *testing.T) {
	f := newPageFixture()

	req, _ := http.NewRequest("GET", "/previews/missing", nil)
	w := f.do(req, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraft_URLEncoded(t *testing.T) {
	f := newPageFixture()

	req, _ := http.NewRequest("POST", "/draft", bytes.NewBufferString("title=Hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := f.do(req, nil)
	cookie := sessionCookie(t, w)

	formState, ok := f.sessions.Get(cookie.Value)
	require.True(t, ok)
	assert.Equal(t, "Hello", formState.View().Title)
}

func TestDraft_TooManyImagesRejected(t *testing.T) {
	f := newPageFixture()

	files := make([]part, testMaxFiles+1)
	for i := range files {
		files[i] = part{"multiple_images", fmt.Sprintf("%d.png", i), "image/png", "png"}
	}
	body, contentType := multipartBody(t, map[string]string{"title": "Album"}, files...)
	req, _ := http.NewRequest("POST", "/draft", body)
	req.Header.Set("Content-Type", contentType)
	w := f.do(req, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "limit is 3")
	assert.Equal(t, 0, f.previews.Len())

	formState, ok := f.sessions.Get(sessionCookie(t, w).Value)
	require.True(t, ok)
	assert.Empty(t, formState.View().Title, "rejected draft is not applied")
}

func TestSubmit_TooManyImagesRejected(t *testing.T) {
	f := newPageFixture()

	files := make([]part, testMaxFiles+1)
	for i := range files {
		files[i] = part{"multiple_images", fmt.Sprintf("%d.png", i), "image/png", "png"}
	}
	body, contentType := multipartBody(t, map[string]string{"title": "Album", "description": "Many"}, files...)
	req, _ := http.NewRequest("POST", "/submit", body)
	req.Header.Set("Content-Type", contentType)
	w := f.do(req, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.useCase.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestSession_CookieRefreshedOnEveryRequest(t *testing.T) {
	f := newPageFixture()
	f.useCase.On("List", mock.Anything).Return([]*entity.Submission{}, nil)

	req, _ := http.NewRequest("GET", "/", nil)
	first := sessionCookie(t, f.do(req, nil))

	req, _ = http.NewRequest("GET", "/", nil)
	again := sessionCookie(t, f.do(req, first))

	assert.Equal(t, first.Value, again.Value)
	assert.Equal(t, int(time.Minute.Seconds()), again.MaxAge)
	assert.Equal(t, 1, f.sessions.Len())
}
