package form

import (
	"picboard/pkg/upload"
	"picboard/services/submission/internal/usecase"
)

// Draft is the user's unsaved input together with the previews of its files.
type Draft struct {
	Title          string
	Description    string
	SingleImage    *upload.File
	MultipleImages []*upload.File

	singlePreview    string
	multiplePreviews []string
}

func (d *Draft) input() usecase.SubmitInput {
	return usecase.SubmitInput{
		Title:          d.Title,
		Description:    d.Description,
		SingleImage:    d.SingleImage,
		MultipleImages: append([]*upload.File(nil), d.MultipleImages...),
	}
}

// previewIDs lists every preview held by the draft.
func (d *Draft) previewIDs() []string {
	ids := make([]string, 0, len(d.multiplePreviews)+1)
	if d.singlePreview != "" {
		ids = append(ids, d.singlePreview)
	}
	return append(ids, d.multiplePreviews...)
}
