package usecase

import (
	"fmt"
	"strings"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before any upload or insert is attempted.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Messages maps field name to message, first message wins.
func (e *ValidationError) Messages() map[string]string {
	messages := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := messages[f.Field]; !ok {
			messages[f.Field] = f.Message
		}
	}
	return messages
}

// InsertError reports that the submission row could not be persisted.
type InsertError struct {
	Err error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("failed to create submission: %v", e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// FetchError reports that the submission list could not be read.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch submissions: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
