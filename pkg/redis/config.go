package redis

import "time"

// Config describes how to reach Redis. ConnectionURL uses the
// redis://[:password@]host:port/db form.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	// KeyPrefix namespaces session keys.
	KeyPrefix string `env:"REDIS_SESSION_PREFIX" envDefault:"authkit:session:"`
}
