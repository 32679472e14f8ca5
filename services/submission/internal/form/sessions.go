package form

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Sessions maps browser sessions to their forms. Forms that expire or are
// pushed out of the LRU are closed, which releases their previews.
type Sessions struct {
	forms   *expirable.LRU[string, *Form]
	newForm func() *Form
}

func NewSessions(size int, ttl time.Duration, newForm func() *Form) *Sessions {
	return &Sessions{
		forms: expirable.NewLRU[string, *Form](size, func(_ string, f *Form) {
			f.Close()
		}, ttl),
		newForm: newForm,
	}
}

// Open returns the form of session id, starting a new session when id is
// unknown or expired. Every open extends the session lifetime.
func (s *Sessions) Open(id string) (string, *Form, bool) {
	if id != "" {
		if f, ok := s.forms.Get(id); ok {
			s.forms.Add(id, f)
			return id, f, false
		}
	}

	id = uuid.New().String()
	f := s.newForm()
	s.forms.Add(id, f)
	return id, f, true
}

func (s *Sessions) Get(id string) (*Form, bool) {
	return s.forms.Get(id)
}

// End closes the session's form.
func (s *Sessions) End(id string) {
	s.forms.Remove(id)
}

func (s *Sessions) Len() int {
	return s.forms.Len()
}
