package http

import (
	"errors"
	"net/http"

	"picboard/pkg/logger"
	"picboard/pkg/upload"
	"picboard/services/submission/internal/form"
	"picboard/services/submission/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionUseCase usecase.SubmissionUseCase
	maxFiles          int
	logger            *logger.Logger
}

// NewSubmissionHandler builds the JSON handler. maxFiles caps the multiple
// image field, zero means no cap.
func NewSubmissionHandler(submissionUseCase usecase.SubmissionUseCase, maxFiles int, logger *logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionUseCase: submissionUseCase,
		maxFiles:          maxFiles,
		logger:            logger,
	}
}

// CreateSubmission godoc
// @Summary      Create a submission
// @Description  Upload the images and store a new submission. Images are stored under "<unix millis>-<file name>" in the images bucket.
// @Tags         submissions
// @Accept       multipart/form-data
// @Produce      json
// @Param        title formData string true "Submission title"
// @Param        description formData string true "Submission description"
// @Param        single_image formData file false "Single image"
// @Param        multiple_images formData file false "Multiple images, order is preserved"
// @Success      201  {object}  entity.Submission
// @Failure      400  {object}  map[string]interface{}
// @Failure      413  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	singleImages, err := formFiles(c, 1, usecase.FieldSingleImage)
	if err != nil {
		h.abortOnForm(c, err)
		return
	}
	multipleImages, err := formFiles(c, h.maxFiles, usecase.FieldMultipleImages, usecase.FieldMultipleImages+"[]")
	if err != nil {
		h.abortOnForm(c, err)
		return
	}

	input := usecase.SubmitInput{
		Title:          c.PostForm(usecase.FieldTitle),
		Description:    c.PostForm(usecase.FieldDescription),
		MultipleImages: multipleImages,
	}
	if len(singleImages) > 0 {
		input.SingleImage = singleImages[0]
	}

	submission, err := h.submissionUseCase.Submit(c.Request.Context(), input)
	if err != nil {
		var validationErr *usecase.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error(), "fields": validationErr.Messages()})
			return
		}
		h.logger.Error("Failed to create submission: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": form.MessageSubmitFailed})
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// ListSubmissions godoc
// @Summary      List submissions
// @Description  Get every submission, newest first
// @Tags         submissions
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.submissionUseCase.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list submissions: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": form.MessageLoadFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"submissions": submissions,
		"count":       len(submissions),
	})
}

func (h *SubmissionHandler) abortOnForm(c *gin.Context, err error) {
	if isBodyTooLarge(err) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
		return
	}
	if errors.Is(err, upload.ErrTooManyFiles) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form"})
}
