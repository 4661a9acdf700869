package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying observer with yaw/pitch in degrees.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int, pos mgl32.Vec3) *Camera {
	return &Camera{
		Position:    pos,
		Yaw:         -90,
		AspectRatio: float32(width) / float32(height),
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.Yaw))
	pitch := float64(mgl32.DegToRad(c.Pitch))
	return mgl32.Vec3{
		float32(math.Cos(yaw) * math.Cos(pitch)),
		float32(math.Sin(pitch)),
		float32(math.Sin(yaw) * math.Cos(pitch)),
	}.Normalize()
}

// Look applies a mouse delta, clamping pitch short of the poles.
func (c *Camera) Look(dx, dy, sensitivity float32) {
	c.Yaw += dx * sensitivity
	c.Pitch = mgl32.Clamp(c.Pitch-dy*sensitivity, -89, 89)
}

// Move translates the camera along its horizontal forward and right axes
// and the world up axis.
func (c *Camera) Move(forward, right, up float32) {
	f := c.Front()
	flat := mgl32.Vec3{f.X(), 0, f.Z()}
	if flat.Len() > 0 {
		flat = flat.Normalize()
	}
	side := flat.Cross(mgl32.Vec3{0, 1, 0})
	c.Position = c.Position.Add(flat.Mul(forward)).Add(side.Mul(right)).Add(mgl32.Vec3{0, up, 0})
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}
