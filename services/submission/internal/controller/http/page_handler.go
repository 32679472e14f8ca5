package http

import (
	"errors"
	"net/http"
	"time"

	"picboard/pkg/logger"
	"picboard/pkg/upload"
	"picboard/services/submission/internal/form"
	"picboard/services/submission/internal/usecase"
	"picboard/services/submission/internal/web"

	"github.com/gin-gonic/gin"
)

const SessionCookie = "draft_session"

// PageHandler serves the HTML form. Each browser keeps its draft in a
// server-side form identified by the session cookie.
type PageHandler struct {
	sessions   *form.Sessions
	previews   *form.PreviewStore
	sessionTTL time.Duration
	maxFiles   int
	logger     *logger.Logger
}

func NewPageHandler(sessions *form.Sessions, previews *form.PreviewStore, sessionTTL time.Duration, maxFiles int, logger *logger.Logger) *PageHandler {
	return &PageHandler{
		sessions:   sessions,
		previews:   previews,
		sessionTTL: sessionTTL,
		maxFiles:   maxFiles,
		logger:     logger,
	}
}

func (h *PageHandler) Index(c *gin.Context) {
	f := h.session(c)

	if err := f.Refresh(c.Request.Context()); err != nil {
		h.logger.Warn("Failed to load submissions: %v", err)
	}

	view := f.Render()
	c.HTML(http.StatusOK, web.IndexTemplate, gin.H{
		"Form":    view,
		"Loading": view.List == form.Loading,
	})
}

// UpdateDraft stores the posted fields and file selections without submitting.
func (h *PageHandler) UpdateDraft(c *gin.Context) {
	f := h.session(c)
	if err := h.applyDraft(c, f); err != nil {
		h.abortOnDraft(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *PageHandler) Submit(c *gin.Context) {
	f := h.session(c)
	if err := h.applyDraft(c, f); err != nil {
		h.abortOnDraft(c, err)
		return
	}

	if _, err := f.Submit(c.Request.Context()); err != nil {
		var validationErr *usecase.ValidationError
		switch {
		case errors.Is(err, form.ErrSubmitInProgress):
			h.logger.Debug("Ignoring submit while another one is in flight")
		case errors.As(err, &validationErr):
			h.logger.Debug("Draft rejected: %v", err)
		}
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Preview serves the bytes of a selected, not yet uploaded, file.
func (h *PageHandler) Preview(c *gin.Context) {
	p, ok := h.previews.Get(c.Param("id"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}

	contentType := p.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(p.Data)
	}
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, contentType, p.Data)
}

// session opens the caller's form. The cookie is re-issued on every request
// so it expires together with the server-side session.
func (h *PageHandler) session(c *gin.Context) *form.Form {
	id, _ := c.Cookie(SessionCookie)
	id, f, _ := h.sessions.Open(id)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(h.sessionTTL.Seconds()), "/", "", false, true)
	return f
}

func (h *PageHandler) abortOnDraft(c *gin.Context, err error) {
	h.logger.Warn("Failed to update draft: %v", err)
	switch {
	case isBodyTooLarge(err):
		c.String(http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, upload.ErrTooManyFiles):
		c.String(http.StatusBadRequest, "%s", err.Error())
	default:
		c.Redirect(http.StatusSeeOther, "/")
	}
}

// applyDraft copies posted values into the form. File slots are only replaced
// when files were sent for them, since browsers drop selections on reload.
func (h *PageHandler) applyDraft(c *gin.Context, f *form.Form) error {
	single, err := formFiles(c, 1, usecase.FieldSingleImage)
	if err != nil {
		return err
	}
	multiple, err := formFiles(c, h.maxFiles, usecase.FieldMultipleImages)
	if err != nil {
		return err
	}

	if title, ok := c.GetPostForm(usecase.FieldTitle); ok {
		f.SetTitle(title)
	}
	if description, ok := c.GetPostForm(usecase.FieldDescription); ok {
		f.SetDescription(description)
	}
	if len(single) > 0 {
		f.SelectSingleImage(single[0])
	}
	if len(multiple) > 0 {
		f.SelectMultipleImages(multiple)
	}
	return nil
}
