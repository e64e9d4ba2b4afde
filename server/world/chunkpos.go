package world

import "fmt"

// ChunkPos is the 2-D coordinate of a chunk column, measured in chunk units
// (not block units).
type ChunkPos struct {
	X, Z int32
}

func (p ChunkPos) String() string {
	return fmt.Sprintf("ChunkPos{%d, %d}", p.X, p.Z)
}

// pack folds a ChunkPos into a single int64 key, used by the auxiliary
// in-flight-load index which favours a fast integer map over a
// map[ChunkPos]struct{} on the hot watch path.
func (p ChunkPos) pack() int64 {
	return int64(uint64(uint32(p.X))<<32 | uint64(uint32(p.Z)))
}

// chebyshev returns the Chebyshev (chessboard) distance in chunks between p
// and o, i.e. max(|dx|, |dz|).
func (p ChunkPos) chebyshev(o ChunkPos) int32 {
	dx, dz := p.X-o.X, p.Z-o.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// SpiralOrder returns every ChunkPos within Chebyshev distance radius of
// center, in spiral order (center first, then each ring outward clockwise
// starting due east). Used by the Chunk Sender to prioritise nearby
// chunks.
func SpiralOrder(center ChunkPos, radius int32) []ChunkPos {
	return withinRadius(center, radius)
}

// withinRadius returns every ChunkPos within Chebyshev distance radius of
// center, in spiral order (center first, then each ring outward, breaking
// ties by compass direction: east, south, west, north). Spiral order is
// used by the Chunk Sender to prioritise nearby chunks.
func withinRadius(center ChunkPos, radius int32) []ChunkPos {
	if radius < 0 {
		return nil
	}
	out := make([]ChunkPos, 0, (2*radius+1)*(2*radius+1))
	out = append(out, center)
	for ring := int32(1); ring <= radius; ring++ {
		out = append(out, ringPositions(center, ring)...)
	}
	return out
}

// ringPositions returns the positions forming the square ring at exactly
// Chebyshev distance `ring` from center, walked clockwise starting due
// east, matching the teacher's convention of breaking spiral ties by
// compass direction.
func ringPositions(center ChunkPos, ring int32) []ChunkPos {
	if ring == 0 {
		return []ChunkPos{center}
	}
	x0, z0 := center.X-ring, center.Z-ring
	x1, z1 := center.X+ring, center.Z+ring

	full := make([]ChunkPos, 0, 8*ring)
	// East edge, north to south.
	for z := z0; z <= z1; z++ {
		full = append(full, ChunkPos{x1, z})
	}
	// South edge, east to west (excluding the corner already visited).
	for x := x1 - 1; x >= x0; x-- {
		full = append(full, ChunkPos{x, z1})
	}
	// West edge, south to north (excluding corners already visited).
	for z := z1 - 1; z >= z0; z-- {
		full = append(full, ChunkPos{x0, z})
	}
	// North edge, west to east (excluding corners already visited).
	for x := x0 + 1; x < x1; x++ {
		full = append(full, ChunkPos{x, z0})
	}

	// Rotate so the walk starts due east of center, preserving the
	// clockwise order established above.
	start := 0
	for i, p := range full {
		if p.X == x1 && p.Z == center.Z {
			start = i
			break
		}
	}
	out := make([]ChunkPos, 0, len(full))
	out = append(out, full[start:]...)
	out = append(out, full[:start]...)
	return out
}
