// Package chunkbuf uploads chunk meshes into OpenGL vertex buffers.
package chunkbuf

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"voxelstream/internal/world"
)

// Vertex layout: position.xyz, uv, texture layer, tint.rgb.
const stride = world.FloatsPerVertex * 4

type buffer struct {
	vao, vbo uint32
	count    int32
}

// Handle owns the GL objects of one uploaded chunk mesh.
type Handle struct {
	buckets [world.BucketCount]buffer
}

// Uploader implements world.MeshUploader. Every call must happen on the
// goroutine that owns the GL context.
type Uploader struct{}

// NewUploader creates an uploader for the current GL context.
func NewUploader() *Uploader { return &Uploader{} }

// Upload creates one VAO/VBO pair per non-empty bucket of m.
func (u *Uploader) Upload(coord world.ChunkCoord, m *world.Mesh) (world.MeshHandle, error) {
	h := &Handle{}
	for b := range world.BucketCount {
		vb := m.Bucket(b)
		if vb.Empty() {
			continue
		}
		buf := &h.buckets[b]
		gl.GenVertexArrays(1, &buf.vao)
		gl.GenBuffers(1, &buf.vbo)
		gl.BindVertexArray(buf.vao)
		gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(vb.Data)*4, gl.Ptr(vb.Data), gl.STATIC_DRAW)

		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
		gl.EnableVertexAttribArray(1)
		gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
		gl.EnableVertexAttribArray(2)
		gl.VertexAttribPointerWithOffset(2, 1, gl.FLOAT, false, stride, 5*4)
		gl.EnableVertexAttribArray(3)
		gl.VertexAttribPointerWithOffset(3, 3, gl.FLOAT, false, stride, 6*4)
		buf.count = int32(vb.VertexCount())

		if e := gl.GetError(); e != gl.NO_ERROR {
			gl.BindVertexArray(0)
			h.Release()
			return nil, fmt.Errorf("upload chunk %v bucket %v: gl error 0x%x", coord, b, e)
		}
	}
	gl.BindVertexArray(0)
	return h, nil
}

// Draw issues the draw call for one bucket. Empty buckets are skipped.
func (h *Handle) Draw(b world.MeshBucket) {
	buf := h.buckets[b]
	if buf.count == 0 {
		return
	}
	gl.BindVertexArray(buf.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, buf.count)
}

// Release deletes the GL objects. It is safe to call more than once.
func (h *Handle) Release() {
	for i := range h.buckets {
		buf := &h.buckets[i]
		if buf.vbo != 0 {
			gl.DeleteBuffers(1, &buf.vbo)
		}
		if buf.vao != 0 {
			gl.DeleteVertexArrays(1, &buf.vao)
		}
		*buf = buffer{}
	}
}
