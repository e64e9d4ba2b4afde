// Package plugin discovers and activates Go plugin (.so) modules that
// register a world.GeneratorService, mirroring the teacher's native-plugin
// loading convention: factory-symbol probing over a fixed list of exported
// names, a generic Manager[S, C] keyed by the host's own type parameters,
// and a Host interface the API is built on top of.
package plugin

import (
	"errors"

	"github.com/vxlcore/server/server/world"
)

// Plugin is a dynamically loaded extension that supplies a chunk generator.
type Plugin interface {
	// Name returns the plugin's display name, unique for the process
	// lifetime.
	Name() string
	// Generator returns the GeneratorService the plugin contributes.
	Generator() world.GeneratorService
	// Close releases resources held by the plugin.
	Close() error
}

// PluginFactory is the constructor signature a Go plugin module must export
// under one of the recognised factory symbol names.
type PluginFactory[S any, C any] func(api *API[S, C]) (Plugin, error)

// Info describes a plugin currently loaded by the Manager.
type Info struct {
	Name string
	Path string
}

var (
	// ErrDisabled is returned when the plugin subsystem is disabled.
	ErrDisabled = errors.New("plugin subsystem disabled")
	// ErrAlreadyLoaded is returned when a plugin at the same path is
	// already loaded.
	ErrAlreadyLoaded = errors.New("plugin already loaded")
	// ErrNameConflict is returned when another loaded plugin already uses
	// the same case-insensitive name.
	ErrNameConflict = errors.New("plugin name already registered")
	// ErrNotFound is returned when disabling a plugin that isn't loaded.
	ErrNotFound = errors.New("plugin not found")
)
