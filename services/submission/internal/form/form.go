// Package form keeps the per-session state of the submission page: the draft
// being edited, its previews, the submit status and the list under the form.
package form

import (
	"context"
	"errors"
	"sync"

	"picboard/pkg/logger"
	"picboard/pkg/upload"
	"picboard/services/submission/internal/entity"
	"picboard/services/submission/internal/usecase"
)

var (
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrClosed           = errors.New("form is closed")
)

type PreviewRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// View is a point-in-time copy of the form for rendering.
type View struct {
	Title            string
	Description      string
	SinglePreview    *PreviewRef
	MultiplePreviews []PreviewRef
	Status           Status
	SubmitDisabled   bool
	Notification     *Notification
	FieldErrors      map[string]string
	List             ListState
	ListMessage      string
	Submissions      []*entity.Submission
}

type Form struct {
	mu       sync.Mutex
	useCase  usecase.SubmissionUseCase
	previews *PreviewStore
	logger   *logger.Logger

	draft        Draft
	draftGen     uint64
	status       Status
	notification *Notification
	fieldErrors  map[string]string

	list        ListState
	submissions []*entity.Submission
	listGen     uint64

	closed bool
}

func New(useCase usecase.SubmissionUseCase, previews *PreviewStore, logger *logger.Logger) *Form {
	return &Form{
		useCase:  useCase,
		previews: previews,
		logger:   logger,
		status:   Idle,
		list:     Loading,
	}
}

func (f *Form) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft.Title == title {
		return
	}
	f.draft.Title = title
	f.edited(usecase.FieldTitle)
}

func (f *Form) SetDescription(description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft.Description == description {
		return
	}
	f.draft.Description = description
	f.edited(usecase.FieldDescription)
}

// edited marks the draft as changed and drops the stale message of field.
func (f *Form) edited(field string) {
	f.draftGen++
	if _, ok := f.fieldErrors[field]; ok {
		fieldErrors := make(map[string]string, len(f.fieldErrors))
		for k, v := range f.fieldErrors {
			if k != field {
				fieldErrors[k] = v
			}
		}
		f.fieldErrors = fieldErrors
	}
}

// SelectSingleImage replaces the single image slot. A nil file clears it.
func (f *Form) SelectSingleImage(file *upload.File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	if f.draft.singlePreview != "" {
		f.previews.Release(f.draft.singlePreview)
		f.draft.singlePreview = ""
	}
	f.draft.SingleImage = file
	if file != nil {
		f.draft.singlePreview = f.previews.Put(file)
	}
	f.edited(usecase.FieldSingleImage)
}

// SelectMultipleImages replaces the whole multiple image selection, keeping
// the order the files were picked in.
func (f *Form) SelectMultipleImages(files []*upload.File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	f.previews.Release(f.draft.multiplePreviews...)
	f.draft.multiplePreviews = nil
	f.draft.MultipleImages = nil

	for _, file := range files {
		if file == nil {
			continue
		}
		f.draft.MultipleImages = append(f.draft.MultipleImages, file)
		f.draft.multiplePreviews = append(f.draft.multiplePreviews, f.previews.Put(file))
	}
	f.edited(usecase.FieldMultipleImages)
}

// Submit sends the draft. On success the draft is reset and the list is
// reloaded; on failure the draft is kept so the user can retry. A draft edited
// while the submit was in flight is kept as well.
func (f *Form) Submit(ctx context.Context) (*entity.Submission, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrClosed
	}
	if f.status == Submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.status = Submitting
	f.notification = nil
	f.fieldErrors = nil
	input := f.draft.input()
	gen := f.draftGen
	f.mu.Unlock()

	submission, err := f.useCase.Submit(ctx, input)

	f.mu.Lock()
	if err != nil {
		var validationErr *usecase.ValidationError
		if errors.As(err, &validationErr) {
			// field messages are shown inline, the draft was never sent
			f.status = Idle
			f.fieldErrors = validationErr.Messages()
			f.mu.Unlock()
			return nil, err
		}
		f.status = Error
		f.notification = &Notification{Kind: NotificationError, Message: MessageSubmitFailed}
		f.mu.Unlock()
		f.logger.Error("Failed to submit form: %v", err)
		return nil, err
	}

	f.status = Success
	f.notification = &Notification{Kind: NotificationSuccess, Message: MessageSubmitted}
	if gen == f.draftGen {
		if !f.closed {
			f.previews.Release(f.draft.previewIDs()...)
		}
		f.draft = Draft{}
	}
	f.mu.Unlock()

	if err := f.Refresh(ctx); err != nil {
		f.logger.Warn("Failed to reload submissions after submit: %v", err)
	}
	return submission, nil
}

// Refresh reloads the list. Only the most recent refresh updates the state.
func (f *Form) Refresh(ctx context.Context) error {
	f.mu.Lock()
	f.listGen++
	gen := f.listGen
	f.list = Loading
	f.mu.Unlock()

	submissions, err := f.useCase.List(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.listGen {
		return err
	}
	if err != nil {
		f.list = Failed
		f.submissions = nil
		return err
	}
	f.list = Ready
	f.submissions = submissions
	return nil
}

// TakeNotification returns the pending notification, if any, and moves a
// finished submit back to Idle.
func (f *Form) TakeNotification() *Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.takeNotification()
}

func (f *Form) takeNotification() *Notification {
	n := f.notification
	f.notification = nil
	if f.status == Success || f.status == Error {
		f.status = Idle
	}
	return n
}

func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// SubmitDisabled is true while a submit is in flight.
func (f *Form) SubmitDisabled() bool {
	return f.Status() == Submitting
}

// View snapshots the form without consuming the notification.
func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view()
}

// Render snapshots the form and consumes the notification, as a page render does.
func (f *Form) Render() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.view()
	f.takeNotification()
	return v
}

func (f *Form) view() View {
	v := View{
		Title:          f.draft.Title,
		Description:    f.draft.Description,
		Status:         f.status,
		SubmitDisabled: f.status == Submitting,
		Notification:   f.notification,
		FieldErrors:    f.fieldErrors,
		List:           f.list,
		Submissions:    f.submissions,
	}
	if f.draft.singlePreview != "" {
		v.SinglePreview = &PreviewRef{ID: f.draft.singlePreview, Name: f.draft.SingleImage.Name}
	}
	for i, id := range f.draft.multiplePreviews {
		v.MultiplePreviews = append(v.MultiplePreviews, PreviewRef{ID: id, Name: f.draft.MultipleImages[i].Name})
	}
	if f.list == Failed {
		v.ListMessage = MessageLoadFailed
	}
	return v
}

// Close releases every preview. A closed form rejects further submits.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.previews.Release(f.draft.previewIDs()...)
	f.draft.singlePreview = ""
	f.draft.multiplePreviews = nil
}
