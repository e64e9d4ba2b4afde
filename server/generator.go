package server

import "github.com/vxlcore/server/server/world"

// flatGenerator is the built-in GeneratorService used when a Config does
// not supply one: a single solid section whose bottom layer (y=0) is
// bedrock, with one all-air section above it. Settings may override the fill block via a "fill"
// key; anything else is ignored.
type flatGenerator struct{}

const (
	bedrockRuntimeID = 1
	stoneRuntimeID   = 2
)

func (flatGenerator) Generate(pos world.ChunkPos, settings world.GeneratorSettings) ([]*world.Section, error) {
	fill := uint32(stoneRuntimeID)
	if v, ok := settings["fill"]; ok {
		if rid, ok := v.(uint32); ok {
			fill = rid
		}
	}
	base := world.NewSection(fill)
	for x := uint8(0); x < 16; x++ {
		for z := uint8(0); z < 16; z++ {
			base.SetBlock(x, 0, z, bedrockRuntimeID)
		}
	}
	return []*world.Section{base, world.NewSection(0)}, nil
}
