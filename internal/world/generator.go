package world

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"voxelstream/internal/profiling"
	"voxelstream/internal/registry"
)

// ErrGenerationAborted is returned when a generation context is cancelled
// before the chunk is complete.
var ErrGenerationAborted = errors.New("world: generation aborted")

// TerrainGenerator produces fully populated chunks. Implementations must be
// safe for concurrent use and deterministic for a given coordinate.
type TerrainGenerator interface {
	Generate(ctx context.Context, coord ChunkCoord) (*Chunk, error)
}

// GeneratorOptions tunes terrain generation.
type GeneratorOptions struct {
	SeaLevel int
	Caves    bool
	// ResampleVegetationBiome classifies vegetation columns from independent
	// single-octave samples instead of reusing the terrain biome.
	ResampleVegetationBiome bool
	// WarpErosion samples erosion from a domain-warped field, which breaks
	// up the straight ridges of the plain two-octave field.
	WarpErosion bool
}

// DefaultGeneratorOptions returns the standard settings.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{SeaLevel: DefaultSeaLevel, Caves: true}
}

// Climate holds the 2D fields sampled for one column.
type Climate struct {
	Continent   float64
	Erosion     float64
	PeakValley  float64
	Temperature float64
	Humidity    float64
}

// Field offsets keep the climate layers decorrelated.
const (
	continentScale = 0.0018
	erosionScale   = 0.002
	climateScale   = 0.0012
	peakScale      = 0.004
	densityScale   = 0.006
	caveScale      = 0.02

	erosionOffset     = 2000
	temperatureOffset = 5000
	humidityOffset    = 1000
	caveOffset        = 1337

	caveThreshold = 0.003
	lavaBelow     = -54
	deepBelow     = -50
)

var (
	heightControl = [...]float64{-1.0, -0.2, -0.1, 0.0, 0.4, 1.0}
	heightValues  = [...]float64{20, 50, 60, 66, 85, 140}
)

// Generator is the noise-driven terrain generator.
type Generator struct {
	seed  int64
	noise *NoiseField
	veg   *VegetationPlacer
	opts  GeneratorOptions
}

// NewGenerator creates a generator for seed. A nil stamps table uses the
// compiled defaults.
func NewGenerator(seed int64, stamps *Stamps, opts GeneratorOptions) *Generator {
	return &Generator{
		seed:  seed,
		noise: NewNoiseField(seed),
		veg:   NewVegetationPlacer(stamps),
		opts:  opts,
	}
}

// Seed returns the world seed.
func (g *Generator) Seed() int64 { return g.seed }

// ClimateAt samples the climate fields of the world column (wx, wz).
func (g *Generator) ClimateAt(wx, wz int) Climate {
	x, z := float64(wx), float64(wz)
	erosion := g.noise.FBM(x+erosionOffset, z+erosionOffset, 2, 0.5, erosionScale)
	if g.opts.WarpErosion {
		erosion = g.noise.Warped2D(x+erosionOffset, z+erosionOffset, erosionScale, 40)
	}
	return Climate{
		Continent:   g.noise.FBM(x, z, 3, 0.5, continentScale),
		Erosion:     erosion,
		PeakValley:  g.noise.Sample3D(x*peakScale, 0, z*peakScale),
		Temperature: g.noise.FBM(x+temperatureOffset, z+temperatureOffset, 2, 0.5, climateScale),
		Humidity:    g.noise.FBM(x+humidityOffset, z+humidityOffset, 2, 0.5, climateScale),
	}
}

// BiomeAt classifies the world column (wx, wz) without generating it.
func (g *Generator) BiomeAt(wx, wz int) Biome {
	c := g.ClimateAt(wx, wz)
	return Classify(c.Continent, c.Temperature, c.Humidity)
}

// TargetHeightAt returns the biased surface height of the column (wx, wz).
// Caves and density noise may move the actual surface by a few blocks.
func (g *Generator) TargetHeightAt(wx, wz int) float64 {
	return TargetHeight(g.ClimateAt(wx, wz))
}

// TargetHeight returns the surface height the density field is biased
// towards for a column.
func TargetHeight(c Climate) float64 {
	base := 63.0
	for i := 0; i < len(heightControl)-1; i++ {
		if c.Continent >= heightControl[i] && c.Continent <= heightControl[i+1] {
			t := smootherstep((c.Continent - heightControl[i]) / (heightControl[i+1] - heightControl[i]))
			base = lerp(heightValues[i], heightValues[i+1], t)
			break
		}
	}

	var rough float64
	switch {
	case c.Continent < 0.05:
		rough = c.PeakValley * 2
		if c.PeakValley < -0.5 {
			rough -= 2
		}
	case c.Continent > 0.6:
		mf := smootherstep(inverseLerp(0.6, 1, c.Continent))
		rough = c.PeakValley * c.PeakValley * 110 * mf
	default:
		rough = c.PeakValley * 8
		if (c.Erosion+1)/2 > 0.6 {
			rough *= 0.2
		}
	}
	return base + rough
}

// Generate builds the chunk at coord. The chunk is private to the caller
// until it is published, so a cancelled generation never leaks a partial grid.
func (g *Generator) Generate(ctx context.Context, coord ChunkCoord) (*Chunk, error) {
	defer profiling.Track("world.Generate")()
	c := NewChunk(coord)
	ox, oz := c.Origin()

	var biomes [ChunkSize * ChunkSize]Biome
	for x := range ChunkSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGenerationAborted, err)
		}
		for z := range ChunkSize {
			wx, wz := ox+x, oz+z
			cl := g.ClimateAt(wx, wz)
			b := Classify(cl.Continent, cl.Temperature, cl.Humidity)
			biomes[x*ChunkSize+z] = b
			g.fillColumn(c.Column(x, z), wx, wz, TargetHeight(cl), b)
		}
	}

	g.decorate(c, &biomes)
	return c, nil
}

func (g *Generator) fillColumn(col []registry.BlockID, wx, wz int, target float64, b Biome) {
	fwx, fwz := float64(wx), float64(wz)
	sea := g.opts.SeaLevel

	for y := MinY; y < MaxY; y++ {
		fy := float64(y)
		bias := (target - fy) / 60
		if y < deepBelow {
			bias += 5
		} else if y > 200 {
			bias -= 5
		}

		// Noise is bounded to [-1, 1], so outside this band the bias alone
		// decides the cell and no painting applies.
		density := bias
		if bias <= 1.45 && bias >= -1.25 {
			yw := g.noise.Sample3D(fwx*caveScale, fy*caveScale, fwz*caveScale) * 3
			density += g.noise.FBM3D(fwx, fy+yw, fwz, 4, 0.5, 2.0, densityScale)
		}

		id := registry.Air
		switch {
		case density > 0.25:
			id = registry.Stone
		case density < -0.25:
			if y <= sea {
				id = registry.Water
			}
		default:
			t := smootherstep(inverseLerp(-0.25, 0.25, density)) +
				g.noise.Sample3D(fwx*0.12, fy*0.35, fwz*0.12)*0.15
			if t > 0.5 {
				id = registry.Stone
			} else if y <= sea {
				id = registry.Water
			}
		}

		if id == registry.Stone {
			switch {
			case g.opts.Caves && g.isCave(fwx, fy, fwz):
				id = registry.Air
				if y < lavaBelow {
					id = registry.Lava
				}
			case y < deepBelow:
				if g.isDeepslate(fwx, fy, fwz) {
					id = registry.Deepslate
				}
			case density < 0.45:
				id = paintSurface(fy, target, density, b)
			}
		}
		col[y-MinY] = id
	}
}

func (g *Generator) isCave(x, y, z float64) bool {
	n1 := g.noise.Sample3D(x*caveScale, y*caveScale, z*caveScale)
	n2 := g.noise.Sample3D((x+caveOffset)*caveScale, (y+caveOffset)*caveScale, (z+caveOffset)*caveScale)
	return n1*n1+n2*n2 < caveThreshold
}

func (g *Generator) isDeepslate(x, y, z float64) bool {
	ds := inverseLerp(MinY, deepBelow, y) + g.noise.Sample3D(x*0.02, y*0.05, z*0.02)*0.12
	return ds < 0.6
}

func paintSurface(y, target, density float64, b Biome) registry.BlockID {
	steep := y > target+28
	switch b {
	case Mountains:
		return registry.Stone
	case SnowyMountains:
		if y > target+10 && !steep {
			return registry.Snow
		}
		return registry.Stone
	case Desert:
		return registry.Sand
	}
	if steep {
		return registry.Stone
	}
	if y >= target-10 {
		info := b.Info()
		if density < 0.2 {
			return info.Top
		}
		return info.Filler
	}
	return registry.Stone
}

func (g *Generator) decorate(c *Chunk, biomes *[ChunkSize * ChunkSize]Biome) {
	rng := rand.New(rand.NewSource(chunkSeed(g.seed, c.Coord.X, c.Coord.Z)))
	ox, oz := c.Origin()
	for x := range ChunkSize {
		for z := range ChunkSize {
			y := surfaceY(c, x, z)
			if y <= g.opts.SeaLevel || y >= MaxY-10 {
				continue
			}
			b := biomes[x*ChunkSize+z]
			if g.opts.ResampleVegetationBiome {
				b = g.resampledBiome(ox+x, oz+z)
			}
			if c.Block(x, y, z) != b.Info().Top {
				continue
			}
			g.veg.Place(c, x, y, z, b, rng)
		}
	}
}

// resampledBiome classifies from raw single-octave samples, which may
// disagree with the terrain biome near boundaries.
func (g *Generator) resampledBiome(wx, wz int) Biome {
	x, z := float64(wx), float64(wz)
	cont := g.noise.Sample2D(x*continentScale, z*continentScale)
	temp := g.noise.Sample2D(x*climateScale+temperatureOffset, z*climateScale+temperatureOffset)
	hum := g.noise.Sample2D(x*climateScale+humidityOffset, z*climateScale+humidityOffset)
	return Classify(cont, temp, hum)
}

// surfaceY returns the highest cell that is neither air nor water, or MinY.
func surfaceY(c *Chunk, x, z int) int {
	col := c.Column(x, z)
	for i := len(col) - 1; i >= 0; i-- {
		switch col[i] {
		case registry.Air, registry.Water:
			continue
		}
		return i + MinY
	}
	return MinY
}

// FlatGenerator fills every column with stone up to a fixed height capped
// by grass. It is used by tests and headless diagnostics.
type FlatGenerator struct {
	height int
}

// NewFlatGenerator creates a flat generator with its grass layer at height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{height: height}
}

// HeightAt returns the grass layer height.
func (g *FlatGenerator) HeightAt(worldX, worldZ int) int { return g.height }

// Generate implements TerrainGenerator.
func (g *FlatGenerator) Generate(ctx context.Context, coord ChunkCoord) (*Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationAborted, err)
	}
	c := NewChunk(coord)
	for x := range ChunkSize {
		for z := range ChunkSize {
			for y := MinY; y < g.height; y++ {
				c.SetBlock(x, y, z, registry.Stone)
			}
			c.SetBlock(x, g.height, z, registry.Grass)
		}
	}
	return c, nil
}
