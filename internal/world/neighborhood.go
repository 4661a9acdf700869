package world

import "voxelstream/internal/registry"

// Neighborhood resolves blocks around a chunk using coordinates relative to
// its origin. The 3x3 ring of chunks is captured once at construction; the
// centre is always the chunk being meshed, even before it is published.
type Neighborhood struct {
	center *Chunk
	ring   [3][3]*Chunk
	src    ChunkSource
}

// NewNeighborhood captures c and its eight horizontal neighbours from src.
// A nil src resolves only the centre chunk.
func NewNeighborhood(c *Chunk, src ChunkSource) *Neighborhood {
	n := &Neighborhood{center: c, src: src}
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			if dx == 0 && dz == 0 {
				n.ring[1][1] = c
				continue
			}
			if src != nil {
				n.ring[dx+1][dz+1] = src.Chunk(c.Coord.Add(ChunkCoord{X: dx, Z: dz}))
			}
		}
	}
	return n
}

// Block returns the block at local coordinates (x, y, z), which may lie
// outside the centre chunk. ok is false when the owning chunk is not
// resident. Heights outside the world are air.
func (n *Neighborhood) Block(x, y, z int) (id registry.BlockID, ok bool) {
	if x >= 0 && x < ChunkSize && z >= 0 && z < ChunkSize {
		return n.center.Block(x, y, z), true
	}
	cx := floorDiv(x, ChunkSize)
	cz := floorDiv(z, ChunkSize)
	var c *Chunk
	if cx >= -1 && cx <= 1 && cz >= -1 && cz <= 1 {
		c = n.ring[cx+1][cz+1]
	} else if n.src != nil {
		c = n.src.Chunk(n.center.Coord.Add(ChunkCoord{X: cx, Z: cz}))
	}
	if c == nil {
		return registry.Air, false
	}
	return c.Block(mod(x, ChunkSize), y, mod(z, ChunkSize)), true
}
