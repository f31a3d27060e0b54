// Package logger builds *slog.Logger instances from functional options.
//
// New picks a text or JSON handler, attaches static attributes and wraps the
// result in a ContextHandler, which adds request-scoped attributes returned by
// ContextExtractor callbacks on every *Context logging call:
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "authkit-demo"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(r.Context(), "signed in", logger.UserID(info.User.ID))
//
// Attribute helpers such as Error and UserID return an empty Attr for empty
// input, so callers can pass them without nil checks.
package logger
