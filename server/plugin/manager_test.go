package plugin

import (
	"io"
	"log/slog"
	"testing"

	"github.com/vxlcore/server/server/world"
)

type fakeHost struct{}

func (fakeHost) Instance() string     { return "server" }
func (fakeHost) Config() string       { return "config" }
func (fakeHost) Logger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type fakeGenerator struct{}

func (fakeGenerator) Generate(pos world.ChunkPos, settings world.GeneratorSettings) ([]*world.Section, error) {
	return []*world.Section{world.NewSection(0)}, nil
}

type fakePlugin struct {
	name   string
	closed bool
}

func (p *fakePlugin) Name() string                      { return p.name }
func (p *fakePlugin) Generator() world.GeneratorService { return fakeGenerator{} }
func (p *fakePlugin) Close() error                      { p.closed = true; return nil }

func newTestManager() *Manager[string, string] {
	return NewManager[string, string](fakeHost{}, Config{Enabled: true, Directory: "/plugins", DataDirectory: "/data"})
}

func TestInfosEmptyOnFreshManager(t *testing.T) {
	m := newTestManager()
	if infos := m.Infos(); len(infos) != 0 {
		t.Fatalf("expected no infos, got %v", infos)
	}
}

func TestDisableUnknownPluginReportsNotFound(t *testing.T) {
	m := newTestManager()
	if _, err := m.Disable("ghost"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGeneratorLookupMissReportsFalse(t *testing.T) {
	m := newTestManager()
	if _, ok := m.Generator("ghost"); ok {
		t.Fatal("expected no generator for an unloaded plugin")
	}
}

func TestGeneratorAndDisableUseRegisteredPlugin(t *testing.T) {
	m := newTestManager()
	p := &fakePlugin{name: "flatworld"}
	m.mu.Lock()
	m.plugins = append(m.plugins, pluginInstance[string, string]{name: p.name, path: "/plugins/flatworld.so", plugin: p})
	m.mu.Unlock()

	if _, ok := m.Generator("FlatWorld"); !ok {
		t.Fatal("expected case-insensitive lookup to find the registered plugin")
	}

	info, err := m.Disable("flatworld")
	if err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if info.Name != "flatworld" {
		t.Fatalf("unexpected info: %v", info)
	}
	if !p.closed {
		t.Fatal("expected Disable to close the plugin")
	}
	if _, ok := m.Generator("flatworld"); ok {
		t.Fatal("expected the plugin to be gone after Disable")
	}
}

func TestLoadConfiguredNoopWhenDisabled(t *testing.T) {
	m := NewManager[string, string](fakeHost{}, Config{Enabled: false, Files: []string{"missing.so"}})
	if err := m.LoadConfigured(); err != nil {
		t.Fatalf("expected LoadConfigured to no-op when disabled, got %v", err)
	}
}

func TestAPIDataDirectoryJoinsPluginName(t *testing.T) {
	m := newTestManager()
	api := newAPI(m, fakeHost{}, "flatworld")
	if got, want := api.DataDirectory(), "/data/flatworld"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
