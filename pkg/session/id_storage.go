package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/authkit/pkg/cookie"
)

// Backend persists session data keyed by session ID.
// A zero expires means the data does not expire on its own.
type Backend interface {
	// Create stores data under a new ID and returns it
	Create(ctx context.Context, data map[string]any, expires time.Time) (string, error)

	// Read returns the data for id or ErrSessionNotFound
	Read(ctx context.Context, id string) (map[string]any, error)

	// Update replaces the data for id
	Update(ctx context.Context, id string, data map[string]any, expires time.Time) error

	// Delete removes the data for id. Deleting an unknown id is not an error
	Delete(ctx context.Context, id string) error
}

// IDStorage keeps only a signed session ID in the cookie and the data in a Backend.
type IDStorage struct {
	def     Cookie
	cookies *cookie.Manager
	backend Backend
}

// NewIDStorage creates a storage backed by b.
func NewIDStorage(def Cookie, b Backend) (*IDStorage, error) {
	if b == nil {
		return nil, errors.New("session: nil backend")
	}

	m, err := def.manager()
	if err != nil {
		return nil, err
	}

	return &IDStorage{def: def, cookies: m, backend: b}, nil
}

// NewMemoryStorage creates an IDStorage on a process-local MemoryBackend.
func NewMemoryStorage(def Cookie) (*IDStorage, error) {
	return NewIDStorage(def, NewMemoryBackend(0))
}

// Cookie returns the cookie definition.
func (s *IDStorage) Cookie() Cookie {
	return s.def
}

func (s *IDStorage) GetSession(ctx context.Context, r *http.Request) (*Session, error) {
	id, err := s.cookies.GetSigned(r, s.def.Name)
	if err != nil || id == "" {
		return New("", nil), nil
	}

	data, err := s.backend.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return New("", nil), nil
		}
		return nil, err
	}

	return New(id, data), nil
}

func (s *IDStorage) CommitSession(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}

	expires := s.expires()
	if sess.ID == "" {
		id, err := s.backend.Create(ctx, sess.Data, expires)
		if err != nil {
			return err
		}
		sess.ID = id
	} else if err := s.backend.Update(ctx, sess.ID, sess.Data, expires); err != nil {
		return err
	}

	return s.cookies.SetSigned(w, s.def.Name, sess.ID)
}

func (s *IDStorage) DestroySession(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}

	if sess.ID != "" {
		if err := s.backend.Delete(ctx, sess.ID); err != nil {
			return err
		}
	}

	sess.ID = ""
	sess.Clear()
	s.cookies.Delete(w, s.def.Name)
	return nil
}

// Regenerate deletes the backend entry of sess and clears its ID. The data
// stays on sess and is stored under a new ID by the next CommitSession.
func (s *IDStorage) Regenerate(ctx context.Context, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	if sess.ID == "" {
		return nil
	}
	if err := s.backend.Delete(ctx, sess.ID); err != nil {
		return err
	}
	sess.ID = ""
	return nil
}

func (s *IDStorage) expires() time.Time {
	if s.def.MaxAge <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(s.def.MaxAge) * time.Second)
}
