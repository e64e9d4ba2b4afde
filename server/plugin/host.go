package plugin

import "log/slog"

// Host exposes the subset of the server a plugin's API needs access to.
type Host[S any, C any] interface {
	// Instance returns the underlying server value.
	Instance() S
	// Config returns a snapshot of the server configuration.
	Config() C
	// Logger returns the logger used for structured diagnostics.
	Logger() *slog.Logger
}
