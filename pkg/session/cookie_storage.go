package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/authkit/pkg/cookie"
)

// CookieStorage keeps the whole session inside an encrypted cookie.
// Session data is limited to what fits into cookie.MaxSize.
type CookieStorage struct {
	def     Cookie
	cookies *cookie.Manager
}

// NewCookieStorage creates a storage that needs no server-side state.
func NewCookieStorage(def Cookie) (*CookieStorage, error) {
	m, err := def.manager()
	if err != nil {
		return nil, err
	}
	return &CookieStorage{def: def, cookies: m}, nil
}

// Cookie returns the cookie definition.
func (s *CookieStorage) Cookie() Cookie {
	return s.def
}

func (s *CookieStorage) GetSession(ctx context.Context, r *http.Request) (*Session, error) {
	raw, err := s.cookies.GetEncrypted(r, s.def.Name)
	if err != nil {
		return New("", nil), nil
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return New("", nil), nil
	}

	return New("", data), nil
}

func (s *CookieStorage) CommitSession(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}

	data, err := json.Marshal(sess.Data)
	if err != nil {
		return errors.Join(ErrEncoding, err)
	}

	return s.cookies.SetEncrypted(w, s.def.Name, string(data))
}

func (s *CookieStorage) DestroySession(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess != nil {
		sess.Clear()
	}
	s.cookies.Delete(w, s.def.Name)
	return nil
}
