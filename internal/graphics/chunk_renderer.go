package graphics

import (
	_ "embed"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/graphics/chunkbuf"
	"voxelstream/internal/profiling"
	"voxelstream/internal/world"
)

var (
	//go:embed shaders/chunk.vert
	chunkVertSrc string
	//go:embed shaders/chunk.frag
	chunkFragSrc string
)

// Sky colour, also used for distance fog.
var SkyColor = mgl32.Vec3{0.62, 0.78, 0.95}

// ChunkRenderer draws the resident chunks of a store.
type ChunkRenderer struct {
	shader *Shader
	// chunks drawn in the last frame after culling
	Drawn int
}

// NewChunkRenderer compiles the chunk shader.
func NewChunkRenderer() (*ChunkRenderer, error) {
	s, err := NewShader(chunkVertSrc, chunkFragSrc)
	if err != nil {
		return nil, err
	}
	return &ChunkRenderer{shader: s}, nil
}

// Render draws opaque buckets first, then plants, then fluids with blending.
// fogEnd is the distance in blocks at which geometry fades into the sky.
func (r *ChunkRenderer) Render(store *world.ChunkStore, cam *Camera, fogEnd float32) {
	defer profiling.Track("graphics.RenderChunks")()

	view := cam.GetViewMatrix()
	proj := cam.GetProjectionMatrix()
	frustum := NewFrustum(proj.Mul4(view))

	r.shader.Use()
	r.shader.SetMatrix4("proj", &proj[0])
	r.shader.SetMatrix4("view", &view[0])
	r.shader.SetFloat("fogEnd", fogEnd)
	r.shader.SetVector3("fogColor", SkyColor.X(), SkyColor.Y(), SkyColor.Z())

	var visible []*chunkbuf.Handle
	for _, c := range store.Snapshot() {
		h, _ := c.GPU()
		ch, ok := h.(*chunkbuf.Handle)
		if !ok || !frustum.ChunkVisible(c.Coord) {
			continue
		}
		visible = append(visible, ch)
	}
	r.Drawn = len(visible)

	r.shader.SetFloat("alpha", 1)
	gl.Enable(gl.CULL_FACE)
	for _, h := range visible {
		h.Draw(world.BucketSolid)
	}
	// plant quads are double sided
	gl.Disable(gl.CULL_FACE)
	for _, h := range visible {
		h.Draw(world.BucketShortPlant)
		h.Draw(world.BucketTallPlant)
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	r.shader.SetFloat("alpha", 0.7)
	for _, h := range visible {
		h.Draw(world.BucketFluid)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}

// Dispose deletes the shader program.
func (r *ChunkRenderer) Dispose() {
	r.shader.Delete()
}
