// Package requestid attaches a correlation ID to every HTTP request and
// exposes it to handlers and log records.
package requestid
