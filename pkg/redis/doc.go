// Package redis connects to Redis with retries and exposes a readiness
// probe. The returned client backs session.RedisBackend.
package redis
