// Package main builds a demo Go plugin contributing an alternative flat
// world generator, loaded dynamically via the plugin.Manager's native
// plugin.Open convention. Build with:
//
//	go build -buildmode=plugin -o flatworld.so ./plugins/flatworld
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/vxlcore/server/server"
	"github.com/vxlcore/server/server/plugin"
	"github.com/vxlcore/server/server/world"
)

// Init is one of the recognised plugin factory names.
func Init(api *plugin.API[*server.Server, server.Config]) (plugin.Plugin, error) {
	p := &flatworldPlugin{log: api.Logger(), dataDir: api.DataDirectory()}
	if err := os.MkdirAll(p.dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("flatworld: prepare data directory: %w", err)
	}
	p.log.Info("flatworld plugin loaded", "dataDir", p.dataDir)
	return p, nil
}

type flatworldPlugin struct {
	log     *slog.Logger
	dataDir string
}

func (p *flatworldPlugin) Name() string { return "flatworld" }

func (p *flatworldPlugin) Generator() world.GeneratorService {
	return flatworldGenerator{log: p.log}
}

func (p *flatworldPlugin) Close() error {
	p.log.Info("flatworld plugin unloaded")
	return nil
}

// flatworldGenerator produces a two-section superflat column: bedrock at
// the bottom of the first section, stone above it, air in the second.
// Settings may override the surface block via a "surface" runtime ID.
type flatworldGenerator struct {
	log *slog.Logger
}

const (
	bedrockRuntimeID = 1
	stoneRuntimeID   = 2
)

func (g flatworldGenerator) Generate(pos world.ChunkPos, settings world.GeneratorSettings) ([]*world.Section, error) {
	surface := uint32(stoneRuntimeID)
	if v, ok := settings["surface"]; ok {
		if rid, ok := v.(uint32); ok {
			surface = rid
		}
	}

	base := world.NewSection(surface)
	for x := uint8(0); x < 16; x++ {
		for z := uint8(0); z < 16; z++ {
			base.SetBlock(x, 0, z, bedrockRuntimeID)
		}
	}
	return []*world.Section{base, world.NewSection(0)}, nil
}
