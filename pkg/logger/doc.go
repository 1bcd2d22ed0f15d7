// Package logger builds the *slog.Logger used across accesskit and provides
// attribute helpers so that field names stay consistent between packages.
//
//	log := logger.New(logger.WithEnvironment("production", "accesskit"))
//	log.InfoContext(ctx, "user registered", logger.UserID(id), logger.Component("credential"))
//
// Helpers such as Error and UserID return an empty slog.Attr for nil input, so
// they can be passed unconditionally.
package logger
