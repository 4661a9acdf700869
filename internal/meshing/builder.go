package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/profiling"
	"voxelstream/internal/registry"
	"voxelstream/internal/world"
)

const (
	bottomShade = 0.7
	sideShade   = 0.85
)

type corner struct {
	pos  mgl32.Vec3
	u, v float32
}

type face struct {
	dx, dy, dz int
	corners    [4]corner
	shade      float32
}

// Faces in order top, bottom, +z, -z, +x, -x. Each quad is emitted as two
// triangles using corners 0,1,3 and 1,2,3.
var faces = [6]face{
	{0, 1, 0, [4]corner{{mgl32.Vec3{0, 1, 1}, 0, 0}, {mgl32.Vec3{1, 1, 1}, 1, 0}, {mgl32.Vec3{1, 1, 0}, 1, 1}, {mgl32.Vec3{0, 1, 0}, 0, 1}}, 1},
	{0, -1, 0, [4]corner{{mgl32.Vec3{0, 0, 1}, 0, 1}, {mgl32.Vec3{0, 0, 0}, 0, 0}, {mgl32.Vec3{1, 0, 0}, 1, 0}, {mgl32.Vec3{1, 0, 1}, 1, 1}}, bottomShade},
	{0, 0, 1, [4]corner{{mgl32.Vec3{1, 0, 1}, 1, 1}, {mgl32.Vec3{1, 1, 1}, 1, 0}, {mgl32.Vec3{0, 1, 1}, 0, 0}, {mgl32.Vec3{0, 0, 1}, 0, 1}}, sideShade},
	{0, 0, -1, [4]corner{{mgl32.Vec3{0, 0, 0}, 1, 1}, {mgl32.Vec3{0, 1, 0}, 1, 0}, {mgl32.Vec3{1, 1, 0}, 0, 0}, {mgl32.Vec3{1, 0, 0}, 0, 1}}, sideShade},
	{1, 0, 0, [4]corner{{mgl32.Vec3{1, 0, 0}, 1, 1}, {mgl32.Vec3{1, 1, 0}, 1, 0}, {mgl32.Vec3{1, 1, 1}, 0, 0}, {mgl32.Vec3{1, 0, 1}, 0, 1}}, sideShade},
	{-1, 0, 0, [4]corner{{mgl32.Vec3{0, 0, 1}, 1, 1}, {mgl32.Vec3{0, 1, 1}, 1, 0}, {mgl32.Vec3{0, 1, 0}, 0, 0}, {mgl32.Vec3{0, 0, 0}, 0, 1}}, sideShade},
}

var quadIndices = [6]int{0, 1, 3, 1, 2, 3}

var white = mgl32.Vec3{1, 1, 1}

// Builder extracts face-culled meshes from chunks. It holds no mutable
// state and is shared by all mesh workers.
type Builder struct {
	reg *registry.Registry
}

// NewBuilder creates a mesh builder for the blocks in reg.
func NewBuilder(reg *registry.Registry) *Builder {
	return &Builder{reg: reg}
}

// Build meshes c. Neighbouring chunks are resolved through src; a nil src
// meshes the chunk in isolation.
func (b *Builder) Build(c *world.Chunk, src world.ChunkSource) *world.Mesh {
	defer profiling.Track("meshing.Build")()
	m := &world.Mesh{}
	n := world.NewNeighborhood(c, src)
	ox, oz := c.Origin()

	for x := range world.ChunkSize {
		for z := range world.ChunkSize {
			col := c.Column(x, z)
			for i, id := range col {
				if id == registry.Air {
					continue
				}
				y := i + world.MinY
				e := b.reg.Get(id)
				origin := mgl32.Vec3{float32(ox + x), float32(y), float32(oz + z)}

				switch e.Kind {
				case registry.KindAir:
				case registry.KindShortPlant:
					addCross(m.Bucket(world.BucketShortPlant), e, origin, ox+x, y, oz+z)
				case registry.KindTallPlant:
					addCross(m.Bucket(world.BucketTallPlant), e, origin, ox+x, y, oz+z)
				case registry.KindFluid:
					b.addFaces(m.Bucket(world.BucketFluid), n, e, origin, x, y, z)
				case registry.KindLeaves:
					b.addFaces(m.Bucket(world.BucketShortPlant), n, e, origin, x, y, z)
				default:
					b.addFaces(m.Bucket(world.BucketSolid), n, e, origin, x, y, z)
				}
			}
		}
	}
	return m
}

func (b *Builder) addFaces(buf *world.VertexBuffer, n *world.Neighborhood, e registry.Entry, origin mgl32.Vec3, x, y, z int) {
	for fi := range faces {
		f := &faces[fi]
		nid, ok := n.Block(x+f.dx, y+f.dy, z+f.dz)
		if !ok {
			// unresolved neighbours continue a fluid and are open air otherwise
			nid = registry.Air
			if e.IsFluid() {
				nid = e.ID
			}
		}
		if !b.visible(e, b.reg.Get(nid)) {
			continue
		}
		addFace(buf, e, f, origin)
	}
}

func (b *Builder) visible(self, nb registry.Entry) bool {
	if nb.Opaque {
		return false
	}
	if self.Kind == registry.KindFluid && nb.Kind == registry.KindFluid {
		return false
	}
	if self.Kind == registry.KindLeaves && nb.Kind == registry.KindLeaves {
		return false
	}
	return true
}

func addFace(buf *world.VertexBuffer, e registry.Entry, f *face, origin mgl32.Vec3) {
	layer := e.Side
	switch f.dy {
	case 1:
		layer = e.Top
	case -1:
		layer = e.Bottom
	}

	tint := white
	if e.TintBy == registry.TintAll || (e.TintBy == registry.TintTop && f.dy == 1) {
		tint = e.Tint
	}
	tint = tint.Mul(f.shade)

	for _, i := range quadIndices {
		cr := f.corners[i]
		buf.Add(origin.Add(cr.pos), cr.u, cr.v, layer, tint)
	}
}

// addCross emits two intersecting diagonal quads, jittered horizontally by
// a hash of the world cell so neighbouring plants do not line up.
func addCross(buf *world.VertexBuffer, e registry.Entry, origin mgl32.Vec3, wx, wy, wz int) {
	jx, jz := world.Jitter(wx, wy, wz)
	o := origin.Add(mgl32.Vec3{jx, 0, jz})

	tint := white
	if e.TintBy != registry.TintNone {
		tint = e.Tint
	}
	layer := e.Side

	quads := [2][4]corner{
		{{mgl32.Vec3{0, 0, 0}, 0, 1}, {mgl32.Vec3{1, 0, 1}, 1, 1}, {mgl32.Vec3{1, 1, 1}, 1, 0}, {mgl32.Vec3{0, 1, 0}, 0, 0}},
		{{mgl32.Vec3{0, 0, 1}, 0, 1}, {mgl32.Vec3{1, 0, 0}, 1, 1}, {mgl32.Vec3{1, 1, 0}, 1, 0}, {mgl32.Vec3{0, 1, 1}, 0, 0}},
	}
	for _, q := range quads {
		for _, i := range [6]int{0, 1, 2, 0, 2, 3} {
			buf.Add(o.Add(q[i].pos), q[i].u, q[i].v, layer, tint)
		}
	}
}
