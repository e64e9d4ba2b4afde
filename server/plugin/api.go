package plugin

import (
	"log/slog"
	"path/filepath"
)

// API exposes server functionality to a dynamically loaded plugin.
type API[S any, C any] struct {
	manager *Manager[S, C]
	host    Host[S, C]
	name    string
}

func newAPI[S any, C any](manager *Manager[S, C], host Host[S, C], name string) *API[S, C] {
	return &API[S, C]{manager: manager, host: host, name: name}
}

// Server returns the underlying server instance.
func (api *API[S, C]) Server() S { return api.host.Instance() }

// Config returns a snapshot of the server configuration.
func (api *API[S, C]) Config() C { return api.host.Config() }

// Logger returns a logger scoped to the plugin's name.
func (api *API[S, C]) Logger() *slog.Logger {
	logger := api.host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("plugin", api.name)
}

// DataDirectory returns the plugin's data directory under the manager's
// configured data root.
func (api *API[S, C]) DataDirectory() string {
	return filepath.Join(api.manager.cfg.DataDirectory, api.name)
}
