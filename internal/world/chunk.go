package world

import (
	"sync"
	"sync/atomic"

	"voxelstream/internal/registry"
)

const (
	// Chunk dimensions
	ChunkSize   = 16
	MinY        = -64
	MaxY        = 320
	ChunkHeight = MaxY - MinY

	ChunkVolume = ChunkSize * ChunkSize * ChunkHeight

	// DefaultSeaLevel is the water surface height of generated terrain.
	DefaultSeaLevel = 70
)

// ChunkCoord addresses a chunk column on the horizontal grid.
type ChunkCoord struct {
	X, Z int
}

// Add returns c offset by o.
func (c ChunkCoord) Add(o ChunkCoord) ChunkCoord {
	return ChunkCoord{X: c.X + o.X, Z: c.Z + o.Z}
}

// Chebyshev returns the chessboard distance between two chunk coordinates.
func (c ChunkCoord) Chebyshev(o ChunkCoord) int {
	return max(abs(c.X-o.X), abs(c.Z-o.Z))
}

// ChunkCoordAt returns the chunk containing world position (x, z).
func ChunkCoordAt(x, z int) ChunkCoord {
	return ChunkCoord{X: floorDiv(x, ChunkSize), Z: floorDiv(z, ChunkSize)}
}

// Chunk is a 16 x 384 x 16 column of voxels. The grid is written only by
// the generating goroutine and is read-only once the chunk is published to
// a ChunkStore.
type Chunk struct {
	Coord  ChunkCoord
	blocks []registry.BlockID

	dirty   atomic.Bool
	meshSeq atomic.Uint64

	// staging slot
	stageMu    sync.Mutex
	staged     *Mesh
	stagedSeq  uint64
	hasPending bool

	// owned by the rendering goroutine
	gpu    MeshHandle
	counts [BucketCount]int
}

// NewChunk allocates an all-air chunk at coord.
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{
		Coord:  coord,
		blocks: make([]registry.BlockID, ChunkVolume),
	}
}

func index(x, y, z int) int {
	return (x*ChunkSize+z)*ChunkHeight + (y - MinY)
}

func inBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkSize && z >= 0 && z < ChunkSize && y >= MinY && y < MaxY
}

// Block returns the block at local coordinates. Out of range reads are air.
func (c *Chunk) Block(x, y, z int) registry.BlockID {
	if !inBounds(x, y, z) {
		return registry.Air
	}
	return c.blocks[index(x, y, z)]
}

// SetBlock sets the block at local coordinates. Out of range writes are ignored.
func (c *Chunk) SetBlock(x, y, z int, id registry.BlockID) {
	if !inBounds(x, y, z) {
		return
	}
	c.blocks[index(x, y, z)] = id
}

// Column returns the vertical run of blocks at (x, z), indexed by y - MinY.
// The slice aliases the chunk grid and must not be modified after publication.
func (c *Chunk) Column(x, z int) []registry.BlockID {
	if x < 0 || x >= ChunkSize || z < 0 || z >= ChunkSize {
		return nil
	}
	start := (x*ChunkSize + z) * ChunkHeight
	return c.blocks[start : start+ChunkHeight]
}

// Blocks exposes the raw grid for serialisation.
func (c *Chunk) Blocks() []registry.BlockID { return c.blocks }

// Origin returns the world position of local (0, 0, 0) on the x and z axes.
func (c *Chunk) Origin() (int, int) {
	return c.Coord.X * ChunkSize, c.Coord.Z * ChunkSize
}

// MarkDirty flags the chunk for a remesh.
func (c *Chunk) MarkDirty() { c.dirty.Store(true) }

// IsDirty reports whether the chunk needs a remesh.
func (c *Chunk) IsDirty() bool { return c.dirty.Load() }

// TakeDirty clears the dirty flag and reports whether it was set.
func (c *Chunk) TakeDirty() bool { return c.dirty.CompareAndSwap(true, false) }

// NextMeshSeq issues the sequence number for a new mesh build.
func (c *Chunk) NextMeshSeq() uint64 { return c.meshSeq.Add(1) }

// StageMesh stores m as the pending upload if seq is newer than anything
// staged before. It reports whether the mesh was accepted.
func (c *Chunk) StageMesh(seq uint64, m *Mesh) bool {
	c.stageMu.Lock()
	defer c.stageMu.Unlock()
	if seq <= c.stagedSeq {
		return false
	}
	c.staged = m
	c.stagedSeq = seq
	c.hasPending = true
	return true
}

// TakeStagedMesh removes and returns the pending mesh, if any.
func (c *Chunk) TakeStagedMesh() (*Mesh, bool) {
	c.stageMu.Lock()
	defer c.stageMu.Unlock()
	if !c.hasPending {
		return nil, false
	}
	m := c.staged
	c.staged = nil
	c.hasPending = false
	return m, true
}

// HasPendingMesh reports whether a staged mesh awaits upload.
func (c *Chunk) HasPendingMesh() bool {
	c.stageMu.Lock()
	defer c.stageMu.Unlock()
	return c.hasPending
}

// SetGPU replaces the uploaded GPU resources, releasing the previous ones.
// Must be called from the rendering goroutine.
func (c *Chunk) SetGPU(h MeshHandle, counts [BucketCount]int) {
	if c.gpu != nil {
		c.gpu.Release()
	}
	c.gpu = h
	c.counts = counts
}

// GPU returns the uploaded resources and their per-bucket vertex counts.
func (c *Chunk) GPU() (MeshHandle, [BucketCount]int) { return c.gpu, c.counts }

// Release frees the GPU resources. The grid itself is reclaimed by the
// garbage collector once no mesh task references the chunk.
func (c *Chunk) Release() {
	if c.gpu != nil {
		c.gpu.Release()
		c.gpu = nil
	}
	c.counts = [BucketCount]int{}
	c.stageMu.Lock()
	c.staged = nil
	c.hasPending = false
	c.stageMu.Unlock()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
