package world

import (
	"log/slog"

	"voxelstream/internal/registry"
	"voxelstream/pkg/stampmodel"
)

// Stamp model names, also used as file stems in the models directory.
const (
	StampOak          = "oak"
	StampBoulderSmall = "boulder_small"
	StampBoulderMed   = "boulder_med"
	StampBushShort    = "bush_short"
	StampBushTall     = "bush_tall"
	StampTallGrass    = "tall_grass"
)

// Stamps is the table of multi-block structures used by vegetation.
type Stamps struct {
	Oak          stampmodel.Model
	BoulderSmall stampmodel.Model
	BoulderMed   stampmodel.Model
	BushShort    stampmodel.Model
	BushTall     stampmodel.Model
	TallGrass    stampmodel.Model
}

func rec(dx, dy, dz int8, id registry.BlockID) stampmodel.Record {
	return stampmodel.Record{DX: dx, DY: dy, DZ: dz, Block: uint8(id)}
}

func leafLayer(y int8, offsets ...[2]int8) []stampmodel.Record {
	out := make([]stampmodel.Record, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, rec(o[0], y, o[1], registry.Leaves))
	}
	return out
}

// DefaultStampRecords returns the compiled-in records for every stamp.
func DefaultStampRecords() map[string][]stampmodel.Record {
	oak := make([]stampmodel.Record, 0, 48)
	for y := int8(0); y <= 5; y++ {
		oak = append(oak, rec(0, y, 0, registry.Log))
	}
	oak = append(oak, leafLayer(3,
		[2]int8{-2, -1}, [2]int8{-2, 0}, [2]int8{-2, 1},
		[2]int8{-1, -2}, [2]int8{-1, -1}, [2]int8{-1, 0}, [2]int8{-1, 1}, [2]int8{-1, 2},
		[2]int8{0, -2}, [2]int8{0, -1}, [2]int8{0, 1}, [2]int8{0, 2},
		[2]int8{1, -2}, [2]int8{1, -1}, [2]int8{1, 0}, [2]int8{1, 1}, [2]int8{1, 2},
		[2]int8{2, -1}, [2]int8{2, 0}, [2]int8{2, 1},
	)...)
	oak = append(oak, leafLayer(4,
		[2]int8{-2, 0},
		[2]int8{-1, -1}, [2]int8{-1, 0}, [2]int8{-1, 1},
		[2]int8{0, -2}, [2]int8{0, -1}, [2]int8{0, 1}, [2]int8{0, 2},
		[2]int8{1, -1}, [2]int8{1, 0}, [2]int8{1, 1},
		[2]int8{2, 0},
	)...)
	oak = append(oak, leafLayer(5, [2]int8{-1, 0}, [2]int8{0, -1}, [2]int8{0, 1}, [2]int8{1, 0})...)
	oak = append(oak, rec(0, 6, 0, registry.Leaves))

	bushShort := []stampmodel.Record{
		rec(0, 0, 0, registry.Log),
		rec(1, 0, 0, registry.Leaves), rec(-1, 0, 0, registry.Leaves),
		rec(0, 0, 1, registry.Leaves), rec(0, 0, -1, registry.Leaves),
		rec(0, 1, 0, registry.Leaves),
	}
	bushTall := append(append([]stampmodel.Record(nil), bushShort...), rec(0, 2, 0, registry.Leaves))

	return map[string][]stampmodel.Record{
		StampOak:          oak,
		StampBoulderSmall: {rec(0, 0, 0, registry.Stone), rec(0, 0, 1, registry.Stone)},
		StampBoulderMed: {
			rec(0, 0, 0, registry.Stone), rec(1, 0, 0, registry.Stone),
			rec(0, 0, 1, registry.Stone), rec(1, 0, 1, registry.Stone),
			rec(0, 1, 0, registry.Stone),
		},
		StampBushShort: bushShort,
		StampBushTall:  bushTall,
		StampTallGrass: {rec(0, 0, 0, registry.TallGrassBot), rec(0, 1, 0, registry.TallGrassTop)},
	}
}

// DefaultStamps returns the compiled table without touching any storage.
func DefaultStamps() *Stamps {
	d := DefaultStampRecords()
	m := func(name string) stampmodel.Model { return stampmodel.Model{Name: name, Records: d[name]} }
	return &Stamps{
		Oak:          m(StampOak),
		BoulderSmall: m(StampBoulderSmall),
		BoulderMed:   m(StampBoulderMed),
		BushShort:    m(StampBushShort),
		BushTall:     m(StampBushTall),
		TallGrass:    m(StampTallGrass),
	}
}

// LoadStamps resolves every stamp through fs, regenerating missing or
// corrupt files from the compiled defaults. Records naming blocks unknown
// to reg are treated as corrupt.
func LoadStamps(fs stampmodel.FS, reg *registry.Registry, log *slog.Logger) *Stamps {
	valid := func(b uint8) bool { return reg.Known(registry.BlockID(b)) }
	l := stampmodel.NewLoader(fs, valid, log)
	d := DefaultStampRecords()
	return &Stamps{
		Oak:          l.LoadOrGenerate(StampOak, d[StampOak]),
		BoulderSmall: l.LoadOrGenerate(StampBoulderSmall, d[StampBoulderSmall]),
		BoulderMed:   l.LoadOrGenerate(StampBoulderMed, d[StampBoulderMed]),
		BushShort:    l.LoadOrGenerate(StampBushShort, d[StampBushShort]),
		BushTall:     l.LoadOrGenerate(StampBushTall, d[StampBushTall]),
		TallGrass:    l.LoadOrGenerate(StampTallGrass, d[StampTallGrass]),
	}
}

// PlaceStamp writes m into c with its anchor at local (x, y, z). Records
// falling outside the chunk are dropped.
func PlaceStamp(c *Chunk, m stampmodel.Model, x, y, z int) {
	for _, r := range m.Records {
		c.SetBlock(x+int(r.DX), y+int(r.DY), z+int(r.DZ), registry.BlockID(r.Block))
	}
}
