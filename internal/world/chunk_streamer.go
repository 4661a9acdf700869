package world

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/time/rate"

	"voxelstream/internal/profiling"
)

// Mesher converts a chunk into categorized vertex buffers, resolving
// neighbours through src.
type Mesher interface {
	Build(c *Chunk, src ChunkSource) *Mesh
}

// StreamerOptions configures a ChunkStreamer.
type StreamerOptions struct {
	Radius            int // live render distance in chunks
	MaxRadius         int // upper bound for SetRadius; offsets are precomputed for it
	Hysteresis        int
	MaxInFlight       int
	GenerationWorkers int
	MeshWorkers       int
	CompletionQueue   int
	UploadsPerTick    int
	UploadsPerSecond  float64 // zero means unlimited
	UploadBurst       int
	SlowTick          time.Duration
}

// DefaultStreamerOptions returns the standard streaming settings.
func DefaultStreamerOptions() StreamerOptions {
	return StreamerOptions{
		Radius:            8,
		MaxRadius:         8,
		Hysteresis:        2,
		MaxInFlight:       16,
		GenerationWorkers: 4,
		MeshWorkers:       2,
		CompletionQueue:   256,
		UploadsPerTick:    16,
		UploadBurst:       16,
	}
}

// TickStats summarises the work done by one Tick.
type TickStats struct {
	Submitted  int
	Registered int
	Remeshed   int
	Uploaded   int
	Evicted    int
	Stale      int
}

type completion struct {
	chunk *Chunk
	mesh  *Mesh
	seq   uint64
	fresh bool
	// orthogonal neighbours resident when the mesh was built
	seen [4]bool
}

var orthogonal = [4]ChunkCoord{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}

// ChunkStreamer keeps the chunks around a moving observer resident. Tick
// runs on the goroutine that owns the rendering context; generation and
// meshing run on background pools and report back through a bounded
// completion channel drained once per tick.
type ChunkStreamer struct {
	opts    StreamerOptions
	offsets []ChunkCoord

	observer atomic.Pointer[ChunkCoord]
	radius   atomic.Int64

	ctx      context.Context
	cancel   context.CancelFunc
	genPool  pond.Pool
	meshPool pond.Pool
	done     chan completion
	meshing  atomic.Int64

	pendingUploads map[ChunkCoord]struct{}
	limiter        *rate.Limiter

	failures  atomic.Uint64
	abandoned atomic.Uint64

	// Dependencies
	store  *ChunkStore
	gen    TerrainGenerator
	mesher Mesher
	up     MeshUploader
	log    *slog.Logger
}

// NewChunkStreamer creates a streamer and starts its worker pools. A nil
// uploader keeps meshes CPU-side only; a nil logger discards output.
func NewChunkStreamer(opts StreamerOptions, store *ChunkStore, gen TerrainGenerator, mesher Mesher, up MeshUploader, log *slog.Logger) *ChunkStreamer {
	opts = normalizeStreamerOptions(opts)
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if up == nil {
		up = NopUploader{}
	}

	limit := rate.Inf
	if opts.UploadsPerSecond > 0 {
		limit = rate.Limit(opts.UploadsPerSecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cs := &ChunkStreamer{
		opts:           opts,
		offsets:        SpiralOffsets(opts.MaxRadius),
		ctx:            ctx,
		cancel:         cancel,
		genPool:        pond.NewPool(opts.GenerationWorkers),
		meshPool:       pond.NewPool(opts.MeshWorkers),
		done:           make(chan completion, opts.CompletionQueue),
		pendingUploads: make(map[ChunkCoord]struct{}),
		limiter:        rate.NewLimiter(limit, opts.UploadBurst),
		store:          store,
		gen:            gen,
		mesher:         mesher,
		up:             up,
		log:            log,
	}
	cs.radius.Store(int64(opts.Radius))
	cs.observer.Store(&ChunkCoord{})
	return cs
}

func normalizeStreamerOptions(o StreamerOptions) StreamerOptions {
	d := DefaultStreamerOptions()
	if o.Radius < 0 {
		o.Radius = 0
	}
	if o.MaxRadius < o.Radius {
		o.MaxRadius = o.Radius
	}
	if o.Hysteresis < 0 {
		o.Hysteresis = d.Hysteresis
	}
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = d.MaxInFlight
	}
	if o.GenerationWorkers <= 0 {
		o.GenerationWorkers = d.GenerationWorkers
	}
	if o.MeshWorkers <= 0 {
		o.MeshWorkers = d.MeshWorkers
	}
	if o.CompletionQueue <= 0 {
		o.CompletionQueue = d.CompletionQueue
	}
	if o.UploadsPerTick <= 0 {
		o.UploadsPerTick = d.UploadsPerTick
	}
	if o.UploadBurst <= 0 {
		o.UploadBurst = d.UploadBurst
	}
	return o
}

// SpiralOffsets returns every offset of the square [-radius, radius]^2
// ordered by squared distance from the origin, ties broken by x then z.
func SpiralOffsets(radius int) []ChunkCoord {
	out := make([]ChunkCoord, 0, (2*radius+1)*(2*radius+1))
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			out = append(out, ChunkCoord{X: dx, Z: dz})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di := out[i].X*out[i].X + out[i].Z*out[i].Z
		dj := out[j].X*out[j].X + out[j].Z*out[j].Z
		if di != dj {
			return di < dj
		}
		if out[i].X != out[j].X {
			return out[i].X < out[j].X
		}
		return out[i].Z < out[j].Z
	})
	return out
}

// Radius returns the live render distance.
func (cs *ChunkStreamer) Radius() int { return int(cs.radius.Load()) }

// SetRadius changes the live render distance, clamped to [0, MaxRadius].
func (cs *ChunkStreamer) SetRadius(r int) {
	r = max(0, min(r, cs.opts.MaxRadius))
	cs.radius.Store(int64(r))
}

// Hysteresis returns the extra distance tolerated before eviction.
func (cs *ChunkStreamer) Hysteresis() int { return cs.opts.Hysteresis }

// Observer returns the chunk the observer was in at the last tick.
func (cs *ChunkStreamer) Observer() ChunkCoord { return *cs.observer.Load() }

// Failures returns the number of generation or meshing tasks that failed.
func (cs *ChunkStreamer) Failures() uint64 { return cs.failures.Load() }

// Abandoned returns the number of generation tasks dropped because the
// observer moved away before they started.
func (cs *ChunkStreamer) Abandoned() uint64 { return cs.abandoned.Load() }

// Tick advances streaming for the observer at pos. It never blocks on
// background work.
func (cs *ChunkStreamer) Tick(pos mgl32.Vec3) TickStats {
	defer profiling.Track("world.StreamerTick")()
	start := time.Now()

	center := ChunkCoordAt(int(math.Floor(float64(pos.X()))), int(math.Floor(float64(pos.Z()))))
	cs.observer.Store(&center)

	var st TickStats
	st.Submitted = cs.schedule(center)
	cs.drain(&st)
	st.Remeshed = cs.remeshDirty()
	st.Uploaded = cs.upload(center)
	st.Evicted = cs.evict(center)

	if d := time.Since(start); cs.opts.SlowTick > 0 && d > cs.opts.SlowTick {
		cs.log.Warn("slow streaming tick", "elapsed", d, "top", profiling.TopN(3))
	}
	return st
}

func (cs *ChunkStreamer) schedule(center ChunkCoord) int {
	budget := cs.opts.MaxInFlight - cs.store.InFlightCount()
	if budget <= 0 {
		return 0
	}
	r := cs.Radius()
	submitted := 0
	for _, off := range cs.offsets {
		if budget == 0 {
			break
		}
		if max(abs(off.X), abs(off.Z)) > r {
			continue
		}
		coord := center.Add(off)
		if !cs.store.MarkInFlight(coord) {
			continue
		}
		if err := cs.genPool.Go(func() { cs.generateTask(coord) }); err != nil {
			cs.store.ClearInFlight(coord)
			break
		}
		budget--
		submitted++
	}
	return submitted
}

func (cs *ChunkStreamer) generateTask(coord ChunkCoord) {
	defer func() {
		if r := recover(); r != nil {
			cs.failures.Add(1)
			cs.store.ClearInFlight(coord)
			cs.log.Error("chunk generation panicked", "coord", coord, "panic", fmt.Sprint(r))
		}
	}()

	if coord.Chebyshev(cs.Observer()) > cs.Radius()+cs.opts.Hysteresis {
		cs.abandoned.Add(1)
		cs.store.ClearInFlight(coord)
		return
	}

	c, err := cs.gen.Generate(cs.ctx, coord)
	if err != nil {
		cs.store.ClearInFlight(coord)
		if cs.ctx.Err() != nil {
			return
		}
		cs.failures.Add(1)
		cs.log.Error("chunk generation failed", "coord", coord, "error", err)
		return
	}

	seq := c.NextMeshSeq()
	cs.submitMesh(c, seq, true)
}

// submitMesh reports false when the mesh pool has been stopped.
func (cs *ChunkStreamer) submitMesh(c *Chunk, seq uint64, fresh bool) bool {
	cs.meshing.Add(1)
	if err := cs.meshPool.Go(func() { cs.meshTask(c, seq, fresh) }); err != nil {
		cs.meshing.Add(-1)
		if fresh {
			cs.store.ClearInFlight(c.Coord)
		} else {
			c.MarkDirty()
		}
		return false
	}
	return true
}

func (cs *ChunkStreamer) meshTask(c *Chunk, seq uint64, fresh bool) {
	defer cs.meshing.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			cs.failures.Add(1)
			cs.log.Error("chunk meshing panicked", "coord", c.Coord, "panic", fmt.Sprint(r))
			if fresh {
				cs.store.ClearInFlight(c.Coord)
			} else {
				c.MarkDirty()
			}
		}
	}()

	comp := completion{chunk: c, seq: seq, fresh: fresh}
	for i, off := range orthogonal {
		comp.seen[i] = cs.store.HasChunk(c.Coord.Add(off))
	}
	comp.mesh = cs.mesher.Build(c, cs.store)

	select {
	case cs.done <- comp:
	case <-cs.ctx.Done():
	}
}

// drain applies the completions queued so far, at most one channel's worth.
func (cs *ChunkStreamer) drain(st *TickStats) {
	defer profiling.Track("world.StreamerDrain")()
	for range cap(cs.done) {
		select {
		case comp := <-cs.done:
			cs.apply(comp, st)
		default:
			return
		}
	}
}

func (cs *ChunkStreamer) apply(comp completion, st *TickStats) {
	c := comp.chunk
	if comp.fresh {
		added := cs.store.AddChunk(c)
		cs.store.ClearInFlight(c.Coord)
		if !added {
			st.Stale++
			return
		}
		st.Registered++
		for i, off := range orthogonal {
			nb := cs.store.Chunk(c.Coord.Add(off))
			if nb == nil {
				continue
			}
			nb.MarkDirty()
			if !comp.seen[i] {
				c.MarkDirty()
			}
		}
	} else if cs.store.Chunk(c.Coord) != c {
		// evicted while the remesh was running
		st.Stale++
		return
	}

	if c.StageMesh(comp.seq, comp.mesh) {
		cs.pendingUploads[c.Coord] = struct{}{}
	} else {
		st.Stale++
	}
}

func (cs *ChunkStreamer) remeshDirty() int {
	n := 0
	for _, c := range cs.store.Snapshot() {
		if !c.TakeDirty() {
			continue
		}
		if !cs.submitMesh(c, c.NextMeshSeq(), false) {
			break
		}
		n++
	}
	return n
}

func (cs *ChunkStreamer) upload(center ChunkCoord) int {
	if len(cs.pendingUploads) == 0 {
		return 0
	}
	defer profiling.Track("world.StreamerUpload")()

	coords := make([]ChunkCoord, 0, len(cs.pendingUploads))
	for coord := range cs.pendingUploads {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool {
		a, b := coords[i], coords[j]
		da := (a.X-center.X)*(a.X-center.X) + (a.Z-center.Z)*(a.Z-center.Z)
		db := (b.X-center.X)*(b.X-center.X) + (b.Z-center.Z)*(b.Z-center.Z)
		return da < db
	})

	uploaded := 0
	for _, coord := range coords {
		if uploaded >= cs.opts.UploadsPerTick {
			break
		}
		c := cs.store.Chunk(coord)
		if c == nil || !c.HasPendingMesh() {
			delete(cs.pendingUploads, coord)
			continue
		}
		// stale entries above never spend upload tokens
		if !cs.limiter.Allow() {
			break
		}
		delete(cs.pendingUploads, coord)
		m, ok := c.TakeStagedMesh()
		if !ok {
			continue
		}
		h, err := cs.up.Upload(coord, m)
		if err != nil {
			cs.log.Error("mesh upload failed", "coord", coord, "error", err)
			c.MarkDirty()
			continue
		}
		c.SetGPU(h, m.VertexCounts())
		uploaded++
	}
	return uploaded
}

func (cs *ChunkStreamer) evict(center ChunkCoord) int {
	removed := cs.store.EvictFarChunks(center, cs.Radius()+cs.opts.Hysteresis)
	for _, c := range removed {
		c.Release()
		delete(cs.pendingUploads, c.Coord)
	}
	return len(removed)
}

// Settled reports whether every chunk within the render distance is
// resident and no background or upload work is outstanding.
func (cs *ChunkStreamer) Settled() bool {
	if cs.store.InFlightCount() > 0 || cs.meshing.Load() > 0 || len(cs.done) > 0 || len(cs.pendingUploads) > 0 {
		return false
	}
	center := cs.Observer()
	r := cs.Radius()
	for _, off := range cs.offsets {
		if max(abs(off.X), abs(off.Z)) > r {
			continue
		}
		c := cs.store.Chunk(center.Add(off))
		if c == nil || c.IsDirty() {
			return false
		}
	}
	return true
}

// Close stops the worker pools and releases the GPU resources of every
// resident chunk. It must be called from the rendering goroutine.
func (cs *ChunkStreamer) Close() {
	cs.cancel()
	cs.genPool.StopAndWait()
	cs.meshPool.StopAndWait()
	for _, c := range cs.store.Snapshot() {
		c.Release()
	}
	cs.pendingUploads = make(map[ChunkCoord]struct{})
}

// NopUploader keeps meshes on the CPU. It is used by headless hosts.
type NopUploader struct{}

// Upload implements MeshUploader.
func (NopUploader) Upload(ChunkCoord, *Mesh) (MeshHandle, error) { return nil, nil }
