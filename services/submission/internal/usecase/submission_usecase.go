package usecase

import (
	"context"
	"strings"
	"time"

	"picboard/pkg/logger"
	"picboard/pkg/queue"
	"picboard/pkg/upload"
	"picboard/services/submission/internal/entity"
	"picboard/services/submission/internal/repo/persistent"
)

const (
	FieldTitle          = "title"
	FieldDescription    = "description"
	FieldSingleImage    = "single_image"
	FieldMultipleImages = "multiple_images"
)

type SubmitInput struct {
	Title          string
	Description    string
	SingleImage    *upload.File
	MultipleImages []*upload.File
}

type SubmissionUseCase interface {
	Submit(ctx context.Context, input SubmitInput) (*entity.Submission, error)
	List(ctx context.Context) ([]*entity.Submission, error)
}

// ListCache holds the result of List between submissions.
type ListCache interface {
	Get(ctx context.Context) ([]*entity.Submission, bool, error)
	Set(ctx context.Context, submissions []*entity.Submission) error
	Invalidate(ctx context.Context) error
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey string, event map[string]interface{}) error
}

type submissionUseCase struct {
	submissionRepo persistent.SubmissionRepository
	uploader       *upload.Uploader
	bucket         string
	policy         upload.Policy
	cache          ListCache
	events         EventPublisher
	logger         *logger.Logger
}

// NewSubmissionUseCase wires the workflow. cache and events may be nil.
func NewSubmissionUseCase(
	submissionRepo persistent.SubmissionRepository,
	uploader *upload.Uploader,
	bucket string,
	policy upload.Policy,
	cache ListCache,
	events EventPublisher,
	logger *logger.Logger,
) SubmissionUseCase {
	return &submissionUseCase{
		submissionRepo: submissionRepo,
		uploader:       uploader,
		bucket:         bucket,
		policy:         policy,
		cache:          cache,
		events:         events,
		logger:         logger,
	}
}

// Validate checks required text fields and every selected file.
func Validate(input SubmitInput, policy upload.Policy) error {
	var fields []FieldError

	if strings.TrimSpace(input.Title) == "" {
		fields = append(fields, FieldError{Field: FieldTitle, Message: "Title is required"})
	}
	if strings.TrimSpace(input.Description) == "" {
		fields = append(fields, FieldError{Field: FieldDescription, Message: "Description is required"})
	}
	if input.SingleImage != nil {
		if err := policy.Check(input.SingleImage); err != nil {
			fields = append(fields, FieldError{Field: FieldSingleImage, Message: err.Error()})
		}
	}
	if err := policy.CheckCount(len(input.MultipleImages)); err != nil {
		fields = append(fields, FieldError{Field: FieldMultipleImages, Message: err.Error()})
	} else {
		for _, file := range input.MultipleImages {
			if err := policy.Check(file); err != nil {
				fields = append(fields, FieldError{Field: FieldMultipleImages, Message: err.Error()})
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (uc *submissionUseCase) Submit(ctx context.Context, input SubmitInput) (*entity.Submission, error) {
	if err := Validate(input, uc.policy); err != nil {
		return nil, err
	}

	submission := &entity.Submission{
		Title:             strings.TrimSpace(input.Title),
		Description:       strings.TrimSpace(input.Description),
		MultipleImageURLs: []string{},
	}
	var stored []upload.Object

	if input.SingleImage != nil {
		obj, err := uc.uploader.StoreImage(ctx, input.SingleImage, uc.bucket)
		if err != nil {
			return nil, err
		}
		stored = append(stored, obj)
		submission.SingleImageURL = obj.URL
	}

	if len(input.MultipleImages) > 0 {
		objects, err := uc.uploader.StoreImages(ctx, input.MultipleImages, uc.bucket)
		if err != nil {
			uc.uploader.Discard(context.WithoutCancel(ctx), stored)
			return nil, err
		}
		stored = append(stored, objects...)
		for _, obj := range objects {
			submission.MultipleImageURLs = append(submission.MultipleImageURLs, obj.URL)
		}
	}

	if err := uc.submissionRepo.Create(ctx, submission); err != nil {
		uc.uploader.Discard(context.WithoutCancel(ctx), stored)
		return nil, &InsertError{Err: err}
	}

	uc.invalidateList(ctx)

	if uc.events != nil {
		go uc.publishCreated(*submission)
	}

	uc.logger.Info("Submission %s created with %d image(s)", submission.ID, len(stored))
	return submission, nil
}

func (uc *submissionUseCase) List(ctx context.Context) ([]*entity.Submission, error) {
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.logger.Warn("Failed to read submission list cache: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	submissions, err := uc.submissionRepo.List(ctx)
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, submissions); err != nil {
			uc.logger.Warn("Failed to cache submission list: %v", err)
		}
	}

	return submissions, nil
}

func (uc *submissionUseCase) invalidateList(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		uc.logger.Warn("Failed to invalidate submission list cache: %v", err)
	}
}

func (uc *submissionUseCase) publishCreated(submission entity.Submission) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := map[string]interface{}{
		"type":                queue.SubmissionCreatedKey,
		"submission_id":       submission.ID,
		"title":               submission.Title,
		"single_image_url":    submission.SingleImageURL,
		"multiple_image_urls": submission.MultipleImageURLs,
		"created_at":          submission.CreatedAt.Format(time.RFC3339Nano),
	}

	if err := uc.events.PublishEvent(ctx, queue.SubmissionCreatedKey, event); err != nil {
		uc.logger.Error("Failed to publish %s event for submission %s: %v", queue.SubmissionCreatedKey, submission.ID, err)
	}
}
