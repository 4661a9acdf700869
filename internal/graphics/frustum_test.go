package graphics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"voxelstream/internal/world"
)

func TestFrustumChunkVisibility(t *testing.T) {
	cam := NewCamera(800, 600, mgl32.Vec3{8, 80, 8})
	cam.Yaw = 0 // looking down +x
	f := NewFrustum(cam.GetProjectionMatrix().Mul4(cam.GetViewMatrix()))

	if !f.ChunkVisible(world.ChunkCoord{X: 0, Z: 0}) {
		t.Errorf("chunk containing the camera culled")
	}
	if !f.ChunkVisible(world.ChunkCoord{X: 4, Z: 0}) {
		t.Errorf("chunk straight ahead culled")
	}
	if f.ChunkVisible(world.ChunkCoord{X: -6, Z: 0}) {
		t.Errorf("chunk behind the camera drawn")
	}
	if f.ChunkVisible(world.ChunkCoord{X: 200, Z: 0}) {
		t.Errorf("chunk beyond the far plane drawn")
	}
}

func TestCameraLookClampsPitch(t *testing.T) {
	cam := NewCamera(100, 100, mgl32.Vec3{})
	cam.Look(0, -1000, 1)
	if cam.Pitch != 89 {
		t.Errorf("pitch = %v, want 89", cam.Pitch)
	}
	if f := cam.Front(); f.Y() <= 0.99 {
		t.Errorf("front %v should point almost straight up", f)
	}
}

func TestCameraMoveIgnoresPitch(t *testing.T) {
	cam := NewCamera(100, 100, mgl32.Vec3{})
	cam.Yaw = 0
	cam.Pitch = 60
	cam.Move(2, 0, 0)
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{2, 0, 0}, 1e-4) {
		t.Errorf("position = %v, want (2,0,0)", cam.Position)
	}
	cam.Move(0, 1, 3)
	if !cam.Position.ApproxEqualThreshold(mgl32.Vec3{2, 3, 1}, 1e-4) {
		t.Errorf("position = %v, want (2,3,1)", cam.Position)
	}
}
