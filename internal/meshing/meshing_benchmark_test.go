package meshing

import (
	"context"
	"testing"

	"voxelstream/internal/registry"
	"voxelstream/internal/world"
)

func generatedNeighbourhood(b *testing.B) (*world.Chunk, *world.ChunkStore) {
	gen := world.NewGenerator(42, nil, world.DefaultGeneratorOptions())
	store := world.NewChunkStore()
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			c, err := gen.Generate(context.Background(), world.ChunkCoord{X: dx, Z: dz})
			if err != nil {
				b.Fatalf("Generate: %v", err)
			}
			store.AddChunk(c)
		}
	}
	return store.Chunk(world.ChunkCoord{}), store
}

func BenchmarkBuild(b *testing.B) {
	c, store := generatedNeighbourhood(b)
	builder := NewBuilder(registry.Default())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = builder.Build(c, store)
	}
}
