package session

import "maps"

const flashPrefix = "__flash_"

// Session holds the data of one user session.
// A Session is not safe for concurrent use.
type Session struct {
	// ID is assigned by ID-based storages on first commit. Cookie storage leaves it empty.
	ID   string
	Data map[string]any
}

// New returns a session with the given ID and a copy of data.
func New(id string, data map[string]any) *Session {
	s := &Session{ID: id, Data: make(map[string]any, len(data))}
	maps.Copy(s.Data, data)
	return s
}

// Has reports whether key is set, including flash values.
func (s *Session) Has(key string) bool {
	if s == nil || s.Data == nil {
		return false
	}
	_, ok := s.Data[key]
	if !ok {
		_, ok = s.Data[flashPrefix+key]
	}
	return ok
}

// Get returns the value stored under key. Flash values are removed once read.
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	if v, ok := s.Data[flashPrefix+key]; ok {
		delete(s.Data, flashPrefix+key)
		return v, true
	}
	v, ok := s.Data[key]
	return v, ok
}

func (s *Session) GetString(key string) (string, bool) {
	v, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := v.(string)
	return str, ok
}

// GetInt handles float64 because JSON-backed storages decode numbers that way.
func (s *Session) GetInt(key string) (int, bool) {
	v, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func (s *Session) GetBool(key string) (bool, bool) {
	v, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func (s *Session) Set(key string, value any) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

// Flash stores a value that is removed the first time it is read.
func (s *Session) Flash(key string, value any) {
	s.Set(flashPrefix+key, value)
}

func (s *Session) Unset(key string) {
	if s == nil || s.Data == nil {
		return
	}
	delete(s.Data, key)
}

// Clear removes all data from the session.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.Data = make(map[string]any)
}
