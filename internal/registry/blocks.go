package registry

import "github.com/go-gl/mathgl/mgl32"

// BlockID identifies a block type inside a chunk grid.
type BlockID uint8

const (
	Air           BlockID = 0
	Grass         BlockID = 1
	Dirt          BlockID = 2
	Stone         BlockID = 3
	Log           BlockID = 4
	Leaves        BlockID = 5
	Sand          BlockID = 6
	Water         BlockID = 7
	Snow          BlockID = 8
	ShortGrass    BlockID = 10
	TallGrassBot  BlockID = 11
	TallGrassTop  BlockID = 12
	Deepslate     BlockID = 13
	Lava          BlockID = 14
	MaxBlockCount         = 256
)

// TintMode selects which faces receive the block tint colour.
type TintMode uint8

const (
	TintNone TintMode = iota
	TintAll
	TintTop
)

// Kind routes a block to its mesh bucket and drives face culling.
type Kind uint8

const (
	KindAir Kind = iota
	KindSolid
	KindFluid
	KindLeaves
	KindShortPlant
	KindTallPlant
)

var (
	grassTint = mgl32.Vec3{0.57, 0.74, 0.35}
	fluidTint = mgl32.Vec3{0.8, 0.8, 0.9}
)

// Entry defines the static properties of a block type.
type Entry struct {
	ID     BlockID
	Name   string
	Top    float32 // texture array layers
	Bottom float32
	Side   float32
	Tint   mgl32.Vec3
	TintBy TintMode
	Opaque bool
	Plant  bool
	Kind   Kind
}

// IsFluid reports whether the block is water or lava.
func (e Entry) IsFluid() bool { return e.Kind == KindFluid }

// Registry is an immutable table of block definitions. It is built once at
// startup and shared read-only between the generator and mesh workers.
type Registry struct {
	entries [MaxBlockCount]Entry
	known   [MaxBlockCount]bool
	names   map[string]BlockID
}

// Default returns the registry with the standard block set.
func Default() *Registry {
	return New([]Entry{
		{ID: Air, Name: "air", Kind: KindAir},
		{ID: Grass, Name: "grass", Top: 0, Bottom: 2, Side: 1, Tint: grassTint, TintBy: TintTop, Opaque: true, Kind: KindSolid},
		{ID: Dirt, Name: "dirt", Top: 2, Bottom: 2, Side: 2, Opaque: true, Kind: KindSolid},
		{ID: Stone, Name: "stone", Top: 3, Bottom: 3, Side: 3, Opaque: true, Kind: KindSolid},
		{ID: Log, Name: "log", Top: 5, Bottom: 5, Side: 4, Opaque: true, Kind: KindSolid},
		{ID: Leaves, Name: "leaves", Top: 6, Bottom: 6, Side: 6, Tint: grassTint, TintBy: TintAll, Kind: KindLeaves},
		{ID: Sand, Name: "sand", Top: 7, Bottom: 7, Side: 7, Opaque: true, Kind: KindSolid},
		{ID: Water, Name: "water", Top: 8, Bottom: 8, Side: 8, Tint: fluidTint, TintBy: TintAll, Kind: KindFluid},
		{ID: Snow, Name: "snow", Top: 9, Bottom: 2, Side: 9, Opaque: true, Kind: KindSolid},
		{ID: ShortGrass, Name: "short_grass", Top: 10, Bottom: 10, Side: 10, Tint: grassTint, TintBy: TintAll, Plant: true, Kind: KindShortPlant},
		{ID: TallGrassBot, Name: "tall_grass_bottom", Top: 11, Bottom: 11, Side: 11, Tint: grassTint, TintBy: TintAll, Plant: true, Kind: KindTallPlant},
		{ID: TallGrassTop, Name: "tall_grass_top", Top: 12, Bottom: 12, Side: 12, Tint: grassTint, TintBy: TintAll, Plant: true, Kind: KindTallPlant},
		{ID: Deepslate, Name: "deepslate", Top: 13, Bottom: 13, Side: 13, Opaque: true, Kind: KindSolid},
		{ID: Lava, Name: "lava", Top: 14, Bottom: 14, Side: 14, Tint: fluidTint, TintBy: TintAll, Kind: KindFluid},
	})
}

// New builds a registry from the given entries. Later entries with the same
// ID replace earlier ones.
func New(entries []Entry) *Registry {
	r := &Registry{names: make(map[string]BlockID, len(entries))}
	r.entries[Air] = Entry{ID: Air, Name: "air", Kind: KindAir}
	r.known[Air] = true
	for _, e := range entries {
		r.entries[e.ID] = e
		r.known[e.ID] = true
		r.names[e.Name] = e.ID
	}
	return r
}

// Get returns the entry for id. Unregistered ids resolve to air.
func (r *Registry) Get(id BlockID) Entry {
	if !r.known[id] {
		return r.entries[Air]
	}
	return r.entries[id]
}

// Known reports whether id was registered.
func (r *Registry) Known(id BlockID) bool {
	return r.known[id]
}

// Lookup returns the id registered under name.
func (r *Registry) Lookup(name string) (BlockID, bool) {
	id, ok := r.names[name]
	return id, ok
}
