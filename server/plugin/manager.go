package plugin

import (
	"errors"
	"fmt"
	"path/filepath"
	goplugin "plugin"
	"strings"
	"sync"

	"github.com/vxlcore/server/server/world"
)

var pluginFactorySymbols = []string{"InitPlugin", "Init", "NewPlugin", "New"}

var errSymbolNotFound = errors.New("symbol not found")

// Config configures the plugin subsystem.
type Config struct {
	Enabled       bool
	Directory     string
	DataDirectory string
	// Files lists plugin binaries to load at startup, relative to
	// Directory unless absolute.
	Files []string
}

type pluginInstance[S any, C any] struct {
	name   string
	path   string
	plugin Plugin
}

func (pi pluginInstance[S, C]) info() Info { return Info{Name: pi.name, Path: pi.path} }

// Manager coordinates dynamic plugin discovery, loading and lifecycle,
// re-targeted at producing world.GeneratorService implementations rather
// than full gameplay extensions.
type Manager[S any, C any] struct {
	host Host[S, C]
	cfg  Config

	mu      sync.RWMutex
	plugins []pluginInstance[S, C]
}

// NewManager constructs a Manager bound to host.
func NewManager[S any, C any](host Host[S, C], cfg Config) *Manager[S, C] {
	return &Manager[S, C]{host: host, cfg: cfg}
}

// Enabled reports whether the plugin subsystem should run.
func (m *Manager[S, C]) Enabled() bool { return m.cfg.Enabled }

// LoadConfigured enables every plugin listed in Config.Files. The first
// load failure stops the scan and is returned with the offending path.
func (m *Manager[S, C]) LoadConfigured() error {
	if !m.cfg.Enabled {
		return nil
	}
	for _, path := range m.cfg.Files {
		if _, err := m.Enable(path); err != nil {
			return fmt.Errorf("load plugin %s: %w", path, err)
		}
	}
	return nil
}

// Enable opens the plugin module at path, invokes its factory, and
// registers the resulting Plugin.
func (m *Manager[S, C]) Enable(path string) (Info, error) {
	if !m.cfg.Enabled {
		return Info{}, ErrDisabled
	}
	resolved := m.resolvePath(path)

	m.mu.RLock()
	for _, existing := range m.plugins {
		if existing.path == resolved {
			m.mu.RUnlock()
			return existing.info(), ErrAlreadyLoaded
		}
	}
	m.mu.RUnlock()

	mod, err := goplugin.Open(resolved)
	if err != nil {
		return Info{}, fmt.Errorf("open plugin: %w", err)
	}
	factory, symbol, err := lookupPluginFactory[S, C](mod)
	if err != nil {
		return Info{}, fmt.Errorf("locate plugin factory: %w", err)
	}

	api := newAPI(m, m.host, pluginBaseName(resolved))
	inst, err := factory(api)
	if err != nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: %w", symbol, err)
	}
	if inst == nil {
		return Info{}, fmt.Errorf("initialise plugin via %s: factory returned nil", symbol)
	}

	name := inst.Name()
	if name == "" {
		name = api.name
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.plugins {
		if strings.EqualFold(existing.name, name) {
			_ = inst.Close()
			return Info{}, ErrNameConflict
		}
	}
	entry := pluginInstance[S, C]{name: name, path: resolved, plugin: inst}
	m.plugins = append(m.plugins, entry)
	return entry.info(), nil
}

// Disable closes and unloads the plugin with the given case-insensitive
// name.
func (m *Manager[S, C]) Disable(name string) (Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.plugins {
		if strings.EqualFold(p.name, name) {
			info := p.info()
			if err := p.plugin.Close(); err != nil {
				return info, fmt.Errorf("close plugin %s: %w", p.name, err)
			}
			m.plugins = append(m.plugins[:i], m.plugins[i+1:]...)
			return info, nil
		}
	}
	return Info{}, ErrNotFound
}

// Generator returns the GeneratorService contributed by the named plugin.
func (m *Manager[S, C]) Generator(name string) (world.GeneratorService, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plugins {
		if strings.EqualFold(p.name, name) {
			return p.plugin.Generator(), true
		}
	}
	return nil, false
}

// Infos returns metadata for every currently loaded plugin.
func (m *Manager[S, C]) Infos() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Info, len(m.plugins))
	for i, p := range m.plugins {
		out[i] = p.info()
	}
	return out
}

func (m *Manager[S, C]) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.cfg.Directory, path)
}

func pluginBaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func lookupPluginFactory[S any, C any](mod *goplugin.Plugin) (PluginFactory[S, C], string, error) {
	var lastErr error
	for _, symbol := range pluginFactorySymbols {
		factory, err := exportPluginFactory[S, C](mod, symbol)
		if err == nil {
			return factory, symbol, nil
		}
		if err != errSymbolNotFound {
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, "", lastErr
	}
	return nil, "", fmt.Errorf("no compatible factory symbol found (tried %s)", strings.Join(pluginFactorySymbols, ", "))
}

func exportPluginFactory[S any, C any](mod *goplugin.Plugin, symbol string) (PluginFactory[S, C], error) {
	sym, err := mod.Lookup(symbol)
	if err != nil {
		return nil, errSymbolNotFound
	}
	switch fn := sym.(type) {
	case PluginFactory[S, C]:
		return fn, nil
	case *PluginFactory[S, C]:
		return *fn, nil
	case func(*API[S, C]) (Plugin, error):
		return fn, nil
	case *func(*API[S, C]) (Plugin, error):
		return *fn, nil
	case func(*API[S, C]) Plugin:
		return func(api *API[S, C]) (Plugin, error) {
			p := fn(api)
			if p == nil {
				return nil, fmt.Errorf("%s returned nil plugin", symbol)
			}
			return p, nil
		}, nil
	default:
		return nil, fmt.Errorf("symbol %s has incompatible type %T", symbol, sym)
	}
}
