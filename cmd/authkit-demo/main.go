// Command authkit-demo serves a page that requires a signed-in user.
//
// Configuration comes from the environment or a .env file: the WORKOS_*
// variables configure authkit, SESSION_BACKEND selects cookie, memory or
// redis session storage. WORKOS_REDIRECT_URI must point at /auth/callback.
package main

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/authkit"
	"github.com/dmitrymomot/authkit/pkg/clientip"
	"github.com/dmitrymomot/authkit/pkg/config"
	"github.com/dmitrymomot/authkit/pkg/httpserver"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/ratelimiter"
	"github.com/dmitrymomot/authkit/pkg/redis"
	"github.com/dmitrymomot/authkit/pkg/requestid"
	"github.com/dmitrymomot/authkit/pkg/session"
)

type appConfig struct {
	Env            string `env:"APP_ENV" envDefault:"development"`
	LogLevel       string `env:"LOG_LEVEL"`
	SessionBackend string `env:"SESSION_BACKEND" envDefault:"cookie"`

	HTTP      httpserver.Config
	Redis     redis.Config
	RateLimit ratelimiter.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Seeds the process environment, so authkit sees WORKOS_* from .env too.
	cfg, err := config.Load[appConfig](config.WithFiles(".env"))
	if err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, "authkit-demo"),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	slog.SetDefault(log)

	authCfg, err := authkit.NewConfiguration(authkit.Settings{})
	if err != nil {
		return err
	}

	opts, checks, cleanup, err := sessionStorageOptions(ctx, cfg, authCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	manager := authkit.NewSessionStorageManager(authkit.WithManagerLogger(log))
	if _, err := manager.Configure(ctx, opts); err != nil {
		return err
	}

	auth, err := authkit.NewHandler(authCfg,
		authkit.WithSessionStorageManager(manager),
		authkit.WithHandlerLogger(log),
	)
	if err != nil {
		return err
	}

	limiter, err := ratelimiter.New(cfg.RateLimit)
	if err != nil {
		return err
	}
	go pruneLoop(ctx, limiter, cfg.RateLimit.RefillInterval)

	r := chi.NewRouter()
	r.Use(requestid.Middleware, clientip.Middleware)
	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(log, checks...))
	r.Route("/auth", func(r chi.Router) {
		r.Use(ratelimiter.Middleware(limiter, ratelimiter.ByClientIP))
		r.Mount("/", auth)
	})
	r.With(auth.RequireAuth).Get("/", home)

	return httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log)).Run(ctx, r)
}

func sessionStorageOptions(ctx context.Context, cfg appConfig, authCfg *authkit.Configuration) (authkit.SessionStorageOptions, []httpserver.Check, func(), error) {
	noop := func() {}

	switch cfg.SessionBackend {
	case "cookie", "":
		return authkit.DefaultStorageOptions{Config: authCfg}, nil, noop, nil

	case "memory":
		def, err := authkit.DefaultCookie(authCfg, "")
		if err != nil {
			return nil, nil, noop, err
		}
		backend := session.NewMemoryBackend(session.DefaultCleanupInterval)
		storage, err := session.NewIDStorage(def, backend)
		if err != nil {
			_ = backend.Close()
			return nil, nil, noop, err
		}
		opts := authkit.CustomStorageOptions{Storage: storage, CookieName: def.Name, Config: authCfg}
		return opts, nil, func() { _ = backend.Close() }, nil

	case "redis":
		def, err := authkit.DefaultCookie(authCfg, "")
		if err != nil {
			return nil, nil, noop, err
		}
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		storage, err := session.NewIDStorage(def, session.NewRedisBackend(client, cfg.Redis.KeyPrefix))
		if err != nil {
			_ = client.Close()
			return nil, nil, noop, err
		}
		health := redis.Healthcheck(client)
		checks := []httpserver.Check{func(r *http.Request) error { return health(r.Context()) }}
		opts := authkit.CustomStorageOptions{Storage: storage, CookieName: def.Name, Config: authCfg}
		return opts, checks, func() { _ = client.Close() }, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown SESSION_BACKEND %q: use cookie, memory or redis", cfg.SessionBackend)
	}
}

func pruneLoop(ctx context.Context, l *ratelimiter.Limiter, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Prune()
		}
	}
}

func home(w http.ResponseWriter, r *http.Request) {
	info, _ := authkit.AuthInfoFromContext(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<p>Signed in as %s</p>
<form method="post" action="/auth/sign-out"><button>Sign out</button></form>
`, html.EscapeString(info.User.Email))
}
