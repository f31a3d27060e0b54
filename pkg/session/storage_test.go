package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/cookie"
	"github.com/dmitrymomot/authkit/pkg/session"
)

var testCookie = session.Cookie{
	Name:     "test-session",
	Path:     "/",
	HTTPOnly: true,
	Secure:   true,
	SameSite: http.SameSiteLaxMode,
	MaxAge:   3600,
	Secrets:  []string{strings.Repeat("s", 32)},
}

func nextRequest(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			r.AddCookie(c)
		}
	}
	return r
}

// exerciseStorage runs the behaviour every Storage implementation shares.
func exerciseStorage(t *testing.T, storage session.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty request yields empty session", func(t *testing.T) {
		sess, err := storage.GetSession(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		assert.Empty(t, sess.Data)
	})

	t.Run("commit and read back", func(t *testing.T) {
		sess, err := storage.GetSession(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		sess.Set("user", "alice")

		w := httptest.NewRecorder()
		require.NoError(t, storage.CommitSession(ctx, w, sess))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "test-session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, 3600, cookies[0].MaxAge)

		loaded, err := storage.GetSession(ctx, nextRequest(w))
		require.NoError(t, err)
		user, ok := loaded.GetString("user")
		assert.True(t, ok)
		assert.Equal(t, "alice", user)
	})

	t.Run("tampered cookie yields empty session", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "test-session", Value: "garbage"})

		sess, err := storage.GetSession(ctx, r)
		require.NoError(t, err)
		assert.Empty(t, sess.Data)
	})

	t.Run("destroy clears the cookie", func(t *testing.T) {
		sess, err := storage.GetSession(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		sess.Set("user", "bob")

		w := httptest.NewRecorder()
		require.NoError(t, storage.CommitSession(ctx, w, sess))
		r := nextRequest(w)

		loaded, err := storage.GetSession(ctx, r)
		require.NoError(t, err)

		w2 := httptest.NewRecorder()
		require.NoError(t, storage.DestroySession(ctx, w2, loaded))

		cookies := w2.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
		assert.Empty(t, loaded.Data)
	})

	t.Run("nil session", func(t *testing.T) {
		err := storage.CommitSession(ctx, httptest.NewRecorder(), nil)
		assert.ErrorIs(t, err, session.ErrNilSession)
	})
}

func TestCookieStorage(t *testing.T) {
	storage, err := session.NewCookieStorage(testCookie)
	require.NoError(t, err)

	exerciseStorage(t, storage)

	t.Run("data does not fit", func(t *testing.T) {
		sess := session.New("", nil)
		sess.Set("blob", strings.Repeat("x", cookie.MaxSize))

		err := storage.CommitSession(context.Background(), httptest.NewRecorder(), sess)
		assert.ErrorIs(t, err, cookie.ErrCookieTooLarge)
	})
}

func TestNewCookieStorage_Invalid(t *testing.T) {
	t.Parallel()

	_, err := session.NewCookieStorage(session.Cookie{Secrets: testCookie.Secrets})
	assert.ErrorIs(t, err, session.ErrNoCookieName)

	_, err = session.NewCookieStorage(session.Cookie{Name: "x", Secrets: []string{"short"}})
	assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
}

func TestMemoryStorage(t *testing.T) {
	storage, err := session.NewMemoryStorage(testCookie)
	require.NoError(t, err)

	exerciseStorage(t, storage)
}

func TestIDStorage_Destroy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	backend := session.NewMemoryBackend(0)
	storage, err := session.NewIDStorage(testCookie, backend)
	require.NoError(t, err)

	sess := session.New("", nil)
	sess.Set("k", "v")
	require.NoError(t, storage.CommitSession(ctx, httptest.NewRecorder(), sess))
	require.NotEmpty(t, sess.ID)
	assert.Equal(t, 1, backend.Len())

	require.NoError(t, storage.DestroySession(ctx, httptest.NewRecorder(), sess))
	assert.Equal(t, 0, backend.Len())
	assert.Empty(t, sess.ID)
}

func TestMemoryBackend_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := session.NewMemoryBackend(0)
	defer b.Close()

	id, err := b.Create(ctx, map[string]any{"k": "v"}, time.Now().Add(-time.Second))
	require.NoError(t, err)

	_, err = b.Read(ctx, id)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	id, err = b.Create(ctx, map[string]any{"k": "v"}, time.Now().Add(-time.Second))
	require.NoError(t, err)
	b.DeleteExpired()
	assert.Equal(t, 0, b.Len())

	id, err = b.Create(ctx, map[string]any{"k": "v"}, time.Time{})
	require.NoError(t, err)
	data, err := b.Read(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "v", data["k"])
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	storage, err := session.NewIDStorage(testCookie, session.NewRedisBackend(client, ""))
	require.NoError(t, err)

	exerciseStorage(t, storage)

	t.Run("keys carry prefix and ttl", func(t *testing.T) {
		ctx := context.Background()
		sess := session.New("", map[string]any{"k": "v"})
		require.NoError(t, storage.CommitSession(ctx, httptest.NewRecorder(), sess))

		key := session.DefaultRedisPrefix + sess.ID
		assert.True(t, mr.Exists(key))
		assert.InDelta(t, time.Hour.Seconds(), mr.TTL(key).Seconds(), 5)
	})

	t.Run("missing id reads as not found", func(t *testing.T) {
		_, err := session.NewRedisBackend(client, "custom:").Read(context.Background(), "nope")
		assert.ErrorIs(t, err, session.ErrSessionNotFound)
	})
}

func TestRegenerate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("id storage issues a new id", func(t *testing.T) {
		backend := session.NewMemoryBackend(0)
		storage, err := session.NewIDStorage(testCookie, backend)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		sess := session.New("", map[string]any{"k": "v"})
		require.NoError(t, storage.CommitSession(ctx, w, sess))
		oldID := sess.ID
		planted := nextRequest(w)

		require.NoError(t, session.Regenerate(ctx, storage, sess))
		assert.Empty(t, sess.ID)
		assert.Equal(t, "v", sess.Data["k"])

		require.NoError(t, storage.CommitSession(ctx, httptest.NewRecorder(), sess))
		assert.NotEqual(t, oldID, sess.ID)
		assert.Equal(t, 1, backend.Len())

		old, err := storage.GetSession(ctx, planted)
		require.NoError(t, err)
		assert.Empty(t, old.ID)
		assert.False(t, old.Has("k"))
	})

	t.Run("cookie storage is a no-op", func(t *testing.T) {
		storage, err := session.NewCookieStorage(testCookie)
		require.NoError(t, err)

		sess := session.New("", map[string]any{"k": "v"})
		require.NoError(t, session.Regenerate(ctx, storage, sess))
		assert.Equal(t, "v", sess.Data["k"])
	})

	t.Run("nil session", func(t *testing.T) {
		storage, err := session.NewMemoryStorage(testCookie)
		require.NoError(t, err)
		assert.ErrorIs(t, session.Regenerate(ctx, storage, nil), session.ErrNilSession)
	})
}
