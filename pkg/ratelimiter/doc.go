// Package ratelimiter throttles requests per key with in-memory token
// buckets. The authentication endpoints use it keyed by client IP.
package ratelimiter
