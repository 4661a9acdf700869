package world

import "github.com/go-gl/mathgl/mgl32"

// FloatsPerVertex is the vertex stride: position(3), uv(2), layer(1), tint(3).
const FloatsPerVertex = 9

// VertexBuffer is a growable interleaved float32 vertex array.
type VertexBuffer struct {
	Data []float32
}

// Add appends one vertex.
func (b *VertexBuffer) Add(pos mgl32.Vec3, u, v, layer float32, tint mgl32.Vec3) {
	b.Data = append(b.Data, pos[0], pos[1], pos[2], u, v, layer, tint[0], tint[1], tint[2])
}

// VertexCount returns the number of complete vertices in the buffer.
func (b *VertexBuffer) VertexCount() int { return len(b.Data) / FloatsPerVertex }

// Empty reports whether the buffer holds no vertices.
func (b *VertexBuffer) Empty() bool { return len(b.Data) == 0 }

// MeshBucket names one of the categorized buffers of a chunk mesh.
type MeshBucket int

const (
	BucketSolid MeshBucket = iota
	BucketFluid
	BucketShortPlant
	BucketTallPlant
	BucketCount
)

func (b MeshBucket) String() string {
	switch b {
	case BucketSolid:
		return "solid"
	case BucketFluid:
		return "fluid"
	case BucketShortPlant:
		return "short_plant"
	case BucketTallPlant:
		return "tall_plant"
	}
	return "unknown"
}

// Mesh is the CPU-side output of meshing one chunk. Each bucket is drawn
// with its own shader program by the host renderer.
type Mesh struct {
	Buckets [BucketCount]VertexBuffer
}

// Bucket returns the buffer for b.
func (m *Mesh) Bucket(b MeshBucket) *VertexBuffer { return &m.Buckets[b] }

// VertexCounts returns the vertex count of every bucket.
func (m *Mesh) VertexCounts() [BucketCount]int {
	var out [BucketCount]int
	for i := range m.Buckets {
		out[i] = m.Buckets[i].VertexCount()
	}
	return out
}

// Empty reports whether every bucket is empty.
func (m *Mesh) Empty() bool {
	for i := range m.Buckets {
		if !m.Buckets[i].Empty() {
			return false
		}
	}
	return true
}

// MeshHandle owns the GPU resources of an uploaded mesh.
type MeshHandle interface {
	Release()
}

// MeshUploader turns a staged mesh into GPU resources. It is only ever
// called from the goroutine that owns the rendering context.
type MeshUploader interface {
	Upload(coord ChunkCoord, m *Mesh) (MeshHandle, error)
}
