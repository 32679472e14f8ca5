package form

import (
	"sync"

	"picboard/pkg/upload"

	"github.com/google/uuid"
)

// Preview is a local rendition of a selected file, available until released.
type Preview struct {
	ID          string
	Name        string
	ContentType string
	Data        []byte
}

// PreviewStore holds previews for every open draft. Previews are keyed by a
// random id so they can be served without exposing the session.
type PreviewStore struct {
	mu       sync.RWMutex
	previews map[string]Preview
}

func NewPreviewStore() *PreviewStore {
	return &PreviewStore{previews: make(map[string]Preview)}
}

// Put registers a preview for file and returns its id.
func (s *PreviewStore) Put(file *upload.File) string {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.previews[id] = Preview{
		ID:          id,
		Name:        file.Name,
		ContentType: file.ContentType,
		Data:        file.Data,
	}
	return id
}

func (s *PreviewStore) Get(id string) (Preview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.previews[id]
	return p, ok
}

// Release drops the given previews. Unknown ids are ignored.
func (s *PreviewStore) Release(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.previews, id)
	}
}

func (s *PreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.previews)
}
