package config

import (
	"errors"
	"maps"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type options struct {
	files   []string
	environ map[string]string
	prefix  string
}

// Option configures Load.
type Option func(*options)

// WithFiles loads dotenv files into the process environment before parsing.
// Missing files are skipped; variables already set are not overridden.
func WithFiles(paths ...string) Option {
	return func(o *options) { o.files = append(o.files, paths...) }
}

// WithEnvironment parses environ instead of the process environment.
// Files given with WithFiles are merged under environ.
func WithEnvironment(environ map[string]string) Option {
	return func(o *options) { o.environ = environ }
}

// WithPrefix prepends prefix to every variable name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// Load parses environment variables into a new T using its env struct tags.
//
//	type Config struct {
//		Addr  string `env:"HTTP_ADDR" envDefault:":8080"`
//		Redis string `env:"REDIS_URL,required"`
//	}
//
//	cfg, err := config.Load[Config](config.WithFiles(".env"))
func Load[T any](opts ...Option) (T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	environ := maps.Clone(o.environ)
	for _, path := range o.files {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if environ == nil {
			if err := godotenv.Load(path); err != nil {
				var zero T
				return zero, errors.Join(ErrLoadingFile, err)
			}
			continue
		}
		vars, err := godotenv.Read(path)
		if err != nil {
			var zero T
			return zero, errors.Join(ErrLoadingFile, err)
		}
		for k, v := range vars {
			if _, ok := environ[k]; !ok {
				environ[k] = v
			}
		}
	}

	v, err := env.ParseAsWithOptions[T](env.Options{
		Environment: environ,
		Prefix:      o.prefix,
	})
	if err != nil {
		return v, errors.Join(ErrParsingConfig, err)
	}
	return v, nil
}

// MustLoad is Load that panics on error. Meant for main.
func MustLoad[T any](opts ...Option) T {
	v, err := Load[T](opts...)
	if err != nil {
		panic(err)
	}
	return v
}
