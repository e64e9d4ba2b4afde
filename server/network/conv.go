package network

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vxlcore/server/server/protocol"
	"github.com/vxlcore/server/server/world"
)

func blockPosAt(pos mgl64.Vec3) world.BlockPos {
	return world.BlockPos{
		X: int32(math.Floor(pos.X())),
		Y: int32(math.Floor(pos.Y())),
		Z: int32(math.Floor(pos.Z())),
	}
}

func toChunkPos(p protocol.ChunkPosition) world.ChunkPos {
	return world.ChunkPos{X: p.X, Z: p.Z}
}

func fromChunkPos(p world.ChunkPos) protocol.ChunkPosition {
	return protocol.ChunkPosition{X: p.X, Z: p.Z}
}

func toBlockPos(p protocol.BlockPosition) world.BlockPos {
	return world.BlockPos{X: p.X, Y: p.Y, Z: p.Z}
}

func fromBlockPos(p world.BlockPos) protocol.BlockPosition {
	return protocol.BlockPosition{X: p.X, Y: p.Y, Z: p.Z}
}

func chunkPositions(positions []protocol.ChunkPosition) []world.ChunkPos {
	out := make([]world.ChunkPos, len(positions))
	for i, p := range positions {
		out[i] = toChunkPos(p)
	}
	return out
}

func protocolChunkPositions(positions []world.ChunkPos) []protocol.ChunkPosition {
	out := make([]protocol.ChunkPosition, len(positions))
	for i, p := range positions {
		out[i] = fromChunkPos(p)
	}
	return out
}

func blockInfoFromRuntimeID(rid uint32) world.BlockInfo {
	return world.BlockInfo{RuntimeID: rid}
}
