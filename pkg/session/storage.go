package session

import (
	"context"
	"net/http"
)

// Storage persists sessions across requests.
//
// GetSession never fails because the request has no or a broken session
// cookie; it returns a new empty session instead. Changes to a session are
// only persisted by CommitSession, which also writes the cookie.
type Storage interface {
	GetSession(ctx context.Context, r *http.Request) (*Session, error)
	CommitSession(ctx context.Context, w http.ResponseWriter, s *Session) error
	DestroySession(ctx context.Context, w http.ResponseWriter, s *Session) error
}

// Regenerator is implemented by storages that key sessions by a server-side ID.
type Regenerator interface {
	Regenerate(ctx context.Context, s *Session) error
}

// Regenerate drops the server-side identity of sess and keeps its data, so the
// next CommitSession issues a new ID. A session ID known before sign-in must
// not survive it. Storages without IDs are left alone.
func Regenerate(ctx context.Context, storage Storage, sess *Session) error {
	if sess == nil {
		return ErrNilSession
	}
	if r, ok := storage.(Regenerator); ok {
		return r.Regenerate(ctx, sess)
	}
	return nil
}
