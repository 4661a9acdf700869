package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/world"
)

// Frustum culling margin in blocks (inflates AABBs before testing)
const frustumMargin float32 = 1.0

type plane struct {
	a, b, c, d float32
}

// Frustum holds the six clip planes in order left, right, bottom, top, near, far.
type Frustum [6]plane

// NewFrustum builds the planes from the combined projection*view matrix.
func NewFrustum(clip mgl32.Mat4) Frustum {
	// Matrix is in column-major order in mgl32
	row := func(i int) [4]float32 { return [4]float32{clip[i], clip[4+i], clip[8+i], clip[12+i]} }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	mk := func(a [4]float32, sign float32, b [4]float32) plane {
		return normalizePlane(plane{a[0] + sign*b[0], a[1] + sign*b[1], a[2] + sign*b[2], a[3] + sign*b[3]})
	}
	return Frustum{
		mk(r3, 1, r0), mk(r3, -1, r0),
		mk(r3, 1, r1), mk(r3, -1, r1),
		mk(r3, 1, r2), mk(r3, -1, r2),
	}
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// IntersectsAABB reports whether the box is at least partly inside.
func (f *Frustum) IntersectsAABB(min, max mgl32.Vec3) bool {
	for _, p := range f {
		// positive vertex for this plane normal
		px, py, pz := max.X(), max.Y(), max.Z()
		if p.a < 0 {
			px = min.X()
		}
		if p.b < 0 {
			py = min.Y()
		}
		if p.c < 0 {
			pz = min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// ChunkVisible tests the full-height column of a chunk.
func (f *Frustum) ChunkVisible(coord world.ChunkCoord) bool {
	x := float32(coord.X * world.ChunkSize)
	z := float32(coord.Z * world.ChunkSize)
	m := frustumMargin
	return f.IntersectsAABB(
		mgl32.Vec3{x - m, world.MinY - m, z - m},
		mgl32.Vec3{x + world.ChunkSize + m, world.MaxY + m, z + world.ChunkSize + m},
	)
}
