package world

import (
	"context"
	"crypto/sha256"
	"errors"
	"math"
	"sync"
	"testing"

	"voxelstream/internal/registry"
)

func TestGeneratorImplementsInterface(t *testing.T) {
	var _ TerrainGenerator = NewGenerator(123, nil, DefaultGeneratorOptions())
}

func TestFlatGeneratorImplementsInterface(t *testing.T) {
	var _ TerrainGenerator = NewFlatGenerator(10)
}

func TestFlatGeneratorPopulate(t *testing.T) {
	g := NewFlatGenerator(5)
	c, err := g.Generate(context.Background(), ChunkCoord{X: 2, Z: -3})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if c.Coord != (ChunkCoord{X: 2, Z: -3}) {
		t.Errorf("coord = %v", c.Coord)
	}
	if b := c.Block(0, MinY, 0); b != registry.Stone {
		t.Errorf("Expected Stone at world bottom, got %v", b)
	}
	if b := c.Block(7, 4, 7); b != registry.Stone {
		t.Errorf("Expected Stone at y=4, got %v", b)
	}
	if b := c.Block(7, 5, 7); b != registry.Grass {
		t.Errorf("Expected Grass at y=5, got %v", b)
	}
	if b := c.Block(7, 6, 7); b != registry.Air {
		t.Errorf("Expected Air at y=6, got %v", b)
	}
}

// hashChunkBlocks computes a SHA-256 hash of all blocks in a chunk
func hashChunkBlocks(c *Chunk) [32]byte {
	h := sha256.New()
	for _, b := range c.Blocks() {
		h.Write([]byte{byte(b)})
	}
	var result [32]byte
	copy(result[:], h.Sum(nil))
	return result
}

func generate(t testing.TB, g TerrainGenerator, coord ChunkCoord) *Chunk {
	t.Helper()
	c, err := g.Generate(context.Background(), coord)
	if err != nil {
		t.Fatalf("Generate(%v): %v", coord, err)
	}
	return c
}

// TestGeneratorDeterminism verifies the same seed produces identical terrain
func TestGeneratorDeterminism(t *testing.T) {
	first := hashChunkBlocks(generate(t, NewGenerator(42, nil, DefaultGeneratorOptions()), ChunkCoord{}))
	for i := 0; i < 3; i++ {
		g := NewGenerator(42, nil, DefaultGeneratorOptions())
		if h := hashChunkBlocks(generate(t, g, ChunkCoord{})); h != first {
			t.Errorf("Chunk generation not deterministic: run %d differs", i)
		}
	}
}

// TestGeneratorDeterminismMultipleChunks verifies world coordinates are used correctly
func TestGeneratorDeterminismMultipleChunks(t *testing.T) {
	positions := []ChunkCoord{{0, 0}, {1, 0}, {0, 1}, {-1, -1}, {40, -75}}
	hashes := make(map[[32]byte]ChunkCoord)

	for _, pos := range positions {
		h1 := hashChunkBlocks(generate(t, NewGenerator(12345, nil, DefaultGeneratorOptions()), pos))
		h2 := hashChunkBlocks(generate(t, NewGenerator(12345, nil, DefaultGeneratorOptions()), pos))
		if h1 != h2 {
			t.Errorf("Chunk at %v not deterministic", pos)
		}
		if prev, ok := hashes[h1]; ok {
			t.Errorf("Chunks %v and %v generated identical content", prev, pos)
		}
		hashes[h1] = pos
	}
}

func TestGeneratorConcurrentDeterminism(t *testing.T) {
	g := NewGenerator(42, nil, DefaultGeneratorOptions())
	want := hashChunkBlocks(generate(t, g, ChunkCoord{X: 3, Z: 3}))

	var wg sync.WaitGroup
	got := make([][32]byte, 4)
	for i := range got {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := g.Generate(context.Background(), ChunkCoord{X: 3, Z: 3})
			if err == nil {
				got[i] = hashChunkBlocks(c)
			}
		}()
	}
	wg.Wait()
	for i, h := range got {
		if h != want {
			t.Errorf("concurrent generation %d differs", i)
		}
	}
}

func TestGeneratorSeedsDiffer(t *testing.T) {
	a := hashChunkBlocks(generate(t, NewGenerator(1, nil, DefaultGeneratorOptions()), ChunkCoord{}))
	b := hashChunkBlocks(generate(t, NewGenerator(2, nil, DefaultGeneratorOptions()), ChunkCoord{}))
	if a == b {
		t.Errorf("different seeds produced identical chunks")
	}
}

func TestGeneratedChunkLayering(t *testing.T) {
	g := NewGenerator(42, nil, DefaultGeneratorOptions())
	c := generate(t, g, ChunkCoord{})

	for x := range ChunkSize {
		for z := range ChunkSize {
			// the density bias makes the floor solid and the sky empty
			switch c.Block(x, MinY, z) {
			case registry.Stone, registry.Deepslate, registry.Lava, registry.Air:
			default:
				t.Fatalf("unexpected block %v at world floor", c.Block(x, MinY, z))
			}
			for y := 260; y < MaxY; y++ {
				if b := c.Block(x, y, z); b != registry.Air {
					t.Fatalf("expected air at y=%d, got %v", y, b)
				}
			}
			for y := DefaultSeaLevel + 1; y < MaxY; y++ {
				if c.Block(x, y, z) == registry.Water {
					t.Fatalf("water above sea level at (%d, %d, %d)", x, y, z)
				}
			}
		}
	}
}

func TestVegetationOnlyAboveSeaLevel(t *testing.T) {
	g := NewGenerator(42, nil, DefaultGeneratorOptions())
	plants := map[registry.BlockID]bool{
		registry.ShortGrass: true, registry.TallGrassBot: true, registry.TallGrassTop: true,
		registry.Log: true, registry.Leaves: true,
	}
	for _, coord := range []ChunkCoord{{0, 0}, {5, 5}, {-7, 12}} {
		c := generate(t, g, coord)
		for x := range ChunkSize {
			for z := range ChunkSize {
				for y := MinY; y <= DefaultSeaLevel+1; y++ {
					if plants[c.Block(x, y, z)] {
						t.Fatalf("vegetation %v at or below sea level (%d, %d, %d) in %v", c.Block(x, y, z), x, y, z, coord)
					}
				}
			}
		}
	}
}

func TestGeneratorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, err := NewGenerator(42, nil, DefaultGeneratorOptions()).Generate(ctx, ChunkCoord{})
	if !errors.Is(err, ErrGenerationAborted) {
		t.Fatalf("err = %v, want ErrGenerationAborted", err)
	}
	if c != nil {
		t.Errorf("aborted generation must not return a chunk")
	}
}

func TestCavesCanBeDisabled(t *testing.T) {
	opts := DefaultGeneratorOptions()
	opts.Caves = false
	c := generate(t, NewGenerator(42, nil, opts), ChunkCoord{})
	for _, b := range c.Blocks() {
		if b == registry.Lava {
			t.Fatalf("lava generated with caves disabled")
		}
	}
}

func TestResampledVegetationIsDeterministic(t *testing.T) {
	opts := DefaultGeneratorOptions()
	opts.ResampleVegetationBiome = true
	a := hashChunkBlocks(generate(t, NewGenerator(9, nil, opts), ChunkCoord{X: 4}))
	b := hashChunkBlocks(generate(t, NewGenerator(9, nil, opts), ChunkCoord{X: 4}))
	if a != b {
		t.Errorf("resampled vegetation not deterministic")
	}
}

func TestSurfaceYSkipsOnlyAirAndWater(t *testing.T) {
	c := NewChunk(ChunkCoord{})
	c.SetBlock(0, 10, 0, registry.Stone)
	c.SetBlock(0, 11, 0, registry.Water)
	c.SetBlock(0, 12, 0, registry.Water)
	if got := surfaceY(c, 0, 0); got != 10 {
		t.Errorf("surface under water = %d, want 10", got)
	}

	c.SetBlock(1, -60, 1, registry.Stone)
	c.SetBlock(1, -59, 1, registry.Lava)
	if got := surfaceY(c, 1, 1); got != -59 {
		t.Errorf("lava-topped surface = %d, want -59", got)
	}
	if got := surfaceY(c, 2, 2); got != MinY {
		t.Errorf("empty column surface = %d, want MinY", got)
	}
}

func TestWarpErosionOption(t *testing.T) {
	plain := NewGenerator(42, nil, DefaultGeneratorOptions())
	opts := DefaultGeneratorOptions()
	opts.WarpErosion = true
	warped := NewGenerator(42, nil, opts)

	differs := false
	for i := 0; i < 64; i++ {
		wx, wz := i*97-3000, i*61+500
		a, b := plain.ClimateAt(wx, wz), warped.ClimateAt(wx, wz)
		if a.Continent != b.Continent || a.PeakValley != b.PeakValley {
			t.Fatalf("erosion option changed other climate fields at (%d, %d)", wx, wz)
		}
		if a.Erosion < -1 || a.Erosion > 1 || b.Erosion < -1 || b.Erosion > 1 {
			t.Fatalf("erosion out of range at (%d, %d): %v %v", wx, wz, a.Erosion, b.Erosion)
		}
		if a.Erosion != b.Erosion {
			differs = true
		}
	}
	if !differs {
		t.Errorf("warped erosion matched the plain field everywhere")
	}
}

func TestTargetHeightControlPoints(t *testing.T) {
	cases := []struct {
		c    float64
		want float64
	}{
		{-1, 20}, {-0.2, 50}, {-0.1, 60}, {0.4, 85}, {1, 140},
	}
	for _, tc := range cases {
		// zero peak/valley removes roughness in every regime
		if got := TargetHeight(Climate{Continent: tc.c}); got != tc.want {
			t.Errorf("TargetHeight(c=%v) = %v, want %v", tc.c, got, tc.want)
		}
	}
	if got := TargetHeight(Climate{Continent: 0, PeakValley: -0.6}); math.Abs(got-62.8) > 1e-9 {
		t.Errorf("coastal trough height = %v, want 62.8", got)
	}
	flat := TargetHeight(Climate{Continent: 0.2, PeakValley: 1, Erosion: 0.5})
	rough := TargetHeight(Climate{Continent: 0.2, PeakValley: 1, Erosion: -0.5})
	if rough-flat < 6 {
		t.Errorf("high erosion should damp roughness: flat %v rough %v", flat, rough)
	}
}

func BenchmarkGenerate(b *testing.B) {
	g := NewGenerator(42, nil, DefaultGeneratorOptions())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := g.Generate(context.Background(), ChunkCoord{X: i % 8, Z: i / 8}); err != nil {
			b.Fatal(err)
		}
	}
}
