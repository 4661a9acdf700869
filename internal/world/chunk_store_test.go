package world

import (
	"sync"
	"sync/atomic"
	"testing"

	"voxelstream/internal/registry"
)

func TestChunkStoreFirstWriterWins(t *testing.T) {
	cs := NewChunkStore()
	a := NewChunk(ChunkCoord{1, 2})
	b := NewChunk(ChunkCoord{1, 2})
	if !cs.AddChunk(a) {
		t.Fatalf("first add rejected")
	}
	if cs.AddChunk(b) {
		t.Errorf("second add for the same coordinate accepted")
	}
	if cs.Chunk(ChunkCoord{1, 2}) != a {
		t.Errorf("store does not hold the first chunk")
	}
	if cs.Len() != 1 || cs.ModCount() != 1 {
		t.Errorf("len=%d mod=%d, want 1 and 1", cs.Len(), cs.ModCount())
	}
}

func TestEvictFarChunksChebyshev(t *testing.T) {
	cs := NewChunkStore()
	for x := -5; x <= 5; x++ {
		for z := -5; z <= 5; z++ {
			cs.AddChunk(NewChunk(ChunkCoord{x, z}))
		}
	}
	removed := cs.EvictFarChunks(ChunkCoord{}, 3)
	if len(removed) != 121-49 {
		t.Fatalf("removed %d chunks, want %d", len(removed), 121-49)
	}
	for _, c := range cs.Snapshot() {
		if c.Coord.Chebyshev(ChunkCoord{}) > 3 {
			t.Errorf("chunk %v survived eviction", c.Coord)
		}
	}
	if !cs.HasChunk(ChunkCoord{3, -3}) {
		t.Errorf("corner chunk inside the radius was evicted")
	}
}

func TestMarkInFlightExclusive(t *testing.T) {
	cs := NewChunkStore()
	coord := ChunkCoord{4, 4}

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cs.MarkInFlight(coord) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Fatalf("%d goroutines claimed the same coordinate", wins.Load())
	}
	if !cs.InFlight(coord) || cs.InFlightCount() != 1 {
		t.Errorf("in-flight set not updated")
	}
	cs.ClearInFlight(coord)
	if cs.InFlight(coord) {
		t.Errorf("claim not released")
	}
}

func TestMarkInFlightRefusesResident(t *testing.T) {
	cs := NewChunkStore()
	cs.AddChunk(NewChunk(ChunkCoord{0, 0}))
	if cs.MarkInFlight(ChunkCoord{0, 0}) {
		t.Errorf("resident chunk claimed for generation")
	}
}

func TestRemoveChunk(t *testing.T) {
	cs := NewChunkStore()
	c := NewChunk(ChunkCoord{7, 7})
	cs.AddChunk(c)
	if got := cs.RemoveChunk(ChunkCoord{7, 7}); got != c {
		t.Errorf("RemoveChunk returned %p, want %p", got, c)
	}
	if cs.RemoveChunk(ChunkCoord{7, 7}) != nil {
		t.Errorf("second remove should return nil")
	}
}

func TestNeighborhoodResolvesAcrossChunks(t *testing.T) {
	cs := NewChunkStore()
	center := NewChunk(ChunkCoord{0, 0})
	east := NewChunk(ChunkCoord{1, 0})
	far := NewChunk(ChunkCoord{-2, 0})
	east.SetBlock(0, 70, 5, registry.Stone)
	far.SetBlock(15, 70, 5, registry.Sand)
	cs.AddChunk(east)
	cs.AddChunk(far)

	n := NewNeighborhood(center, cs)
	if id, ok := n.Block(16, 70, 5); !ok || id != registry.Stone {
		t.Errorf("east neighbour = %v, %v", id, ok)
	}
	if _, ok := n.Block(-1, 70, 5); ok {
		t.Errorf("missing west neighbour reported as resolvable")
	}
	if id, ok := n.Block(-17, 70, 5); !ok || id != registry.Sand {
		t.Errorf("chunk outside the ring = %v, %v", id, ok)
	}
	if id, ok := n.Block(3, MaxY+5, 3); !ok || id != registry.Air {
		t.Errorf("above the world = %v, %v; want resolvable air", id, ok)
	}
}
