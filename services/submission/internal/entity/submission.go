package entity

import "time"

// Submission is immutable once created: the service only inserts and lists them.
type Submission struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	SingleImageURL    string    `json:"single_image_url"`
	MultipleImageURLs []string  `json:"multiple_image_urls"`
	CreatedAt         time.Time `json:"created_at"`
}
