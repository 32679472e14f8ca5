package form

// Status is the submit lifecycle of a form.
type Status int

const (
	Idle Status = iota
	Submitting
	Success
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

const (
	MessageSubmitted    = "Form submitted successfully!"
	MessageSubmitFailed = "Failed to submit form. Please try again."
	MessageLoadFailed   = "Error loading data"
)

// Notification is shown once after a submit attempt.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

// ListState is the state of the submissions list under the form.
type ListState int

const (
	Loading ListState = iota
	Failed
	Ready
)

func (s ListState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "failed"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}
