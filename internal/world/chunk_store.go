package world

import (
	"sync"

	"voxelstream/internal/profiling"
)

// ChunkSource resolves resident chunks by coordinate.
type ChunkSource interface {
	Chunk(coord ChunkCoord) *Chunk
}

// ChunkStore is the registry of resident chunks plus the set of coordinates
// currently being generated. Both are safe for concurrent use.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // increases on any add/remove

	inFlight   map[ChunkCoord]struct{}
	inFlightMu sync.Mutex
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks:   make(map[ChunkCoord]*Chunk),
		inFlight: make(map[ChunkCoord]struct{}),
	}
}

// Chunk returns the resident chunk at coord or nil.
func (cs *ChunkStore) Chunk(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	c := cs.chunks[coord]
	cs.mu.RUnlock()
	return c
}

// HasChunk reports whether coord is resident.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// AddChunk publishes a fully generated chunk. The first chunk registered
// for a coordinate wins; it reports whether c was stored.
func (cs *ChunkStore) AddChunk(c *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[c.Coord]; ok {
		return false
	}
	cs.chunks[c.Coord] = c
	cs.modCount++
	return true
}

// RemoveChunk drops coord from the store and returns the removed chunk.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.chunks[coord]
	if !ok {
		return nil
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return c
}

// EvictFarChunks removes every chunk whose Chebyshev distance from center
// exceeds radius and returns them so the caller can release GPU resources.
func (cs *ChunkStore) EvictFarChunks(center ChunkCoord, radius int) []*Chunk {
	defer profiling.Track("world.EvictFarChunks")()
	var removed []*Chunk
	cs.mu.Lock()
	for coord, c := range cs.chunks {
		if coord.Chebyshev(center) > radius {
			delete(cs.chunks, coord)
			cs.modCount++
			removed = append(removed, c)
		}
	}
	cs.mu.Unlock()
	return removed
}

// Snapshot returns the resident chunks at the time of the call.
func (cs *ChunkStore) Snapshot() []*Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	return out
}

// Len returns the number of resident chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// ModCount returns the number of add/remove operations so far.
func (cs *ChunkStore) ModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// MarkInFlight claims coord for generation. It fails if the chunk is already
// resident or another task holds the claim.
func (cs *ChunkStore) MarkInFlight(coord ChunkCoord) bool {
	if cs.HasChunk(coord) {
		return false
	}
	cs.inFlightMu.Lock()
	defer cs.inFlightMu.Unlock()
	if _, ok := cs.inFlight[coord]; ok {
		return false
	}
	cs.inFlight[coord] = struct{}{}
	return true
}

// ClearInFlight releases the generation claim on coord.
func (cs *ChunkStore) ClearInFlight(coord ChunkCoord) {
	cs.inFlightMu.Lock()
	delete(cs.inFlight, coord)
	cs.inFlightMu.Unlock()
}

// InFlight reports whether coord is claimed for generation.
func (cs *ChunkStore) InFlight(coord ChunkCoord) bool {
	cs.inFlightMu.Lock()
	defer cs.inFlightMu.Unlock()
	_, ok := cs.inFlight[coord]
	return ok
}

// InFlightCount returns the number of claimed coordinates.
func (cs *ChunkStore) InFlightCount() int {
	cs.inFlightMu.Lock()
	defer cs.inFlightMu.Unlock()
	return len(cs.inFlight)
}
