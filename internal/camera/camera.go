// Package camera holds the free-fly camera a viewer session drives from
// input frames.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"splat-renderer/internal/input"
	"splat-renderer/internal/mathutil"
	"splat-renderer/internal/pointcloud"
	"splat-renderer/internal/viewmatrix"
)

// Limits on the look angles, in degrees.
const (
	MaxPitch = 89.0
	MinFov   = 1.0
	MaxFov   = 45.0
)

// DefaultYaw looks down -Z.
const DefaultYaw = -90.0

// Camera is a yaw/pitch camera. Angles are in degrees.
type Camera struct {
	Position    mgl64.Vec3
	Yaw         float64
	Pitch       float64
	Fov         float64
	WorldUp     mgl64.Vec3
	MoveSpeed   float64 // units per second at full axis
	Sensitivity float64 // degrees per look unit

	front mgl64.Vec3
	right mgl64.Vec3
	up    mgl64.Vec3
}

// New returns a camera at position looking along yaw/pitch.
func New(position mgl64.Vec3, yaw, pitch, fov, moveSpeed, sensitivity float64) *Camera {
	c := &Camera{
		Position:    position,
		Yaw:         yaw,
		Pitch:       mathutil.Clamp(pitch, -MaxPitch, MaxPitch),
		Fov:         mathutil.Clamp(fov, MinFov, MaxFov),
		WorldUp:     mgl64.Vec3{0, 1, 0},
		MoveSpeed:   moveSpeed,
		Sensitivity: sensitivity,
	}
	c.updateVectors()
	return c
}

// Framing returns a camera on the +Z side of the cloud's bounding box,
// looking at its center from far enough to see all of it.
func Framing(meta pointcloud.MetaData, fov, moveSpeed, sensitivity float64) *Camera {
	fov = mathutil.Clamp(fov, MinFov, MaxFov)
	center := mathutil.FromR3(meta.Center())
	if meta.Empty() {
		center = mgl64.Vec3{}
	}
	radius := mathutil.FromR3(meta.Extent()).Len() / 2
	dist := viewmatrix.FitDistance(radius, fov)
	return New(center.Add(mgl64.Vec3{0, 0, dist}), DefaultYaw, 0, fov, moveSpeed, sensitivity)
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl64.Vec3 { return c.front }

// Right returns the unit right vector.
func (c *Camera) Right() mgl64.Vec3 { return c.right }

// Up returns the unit camera up vector.
func (c *Camera) Up() mgl64.Vec3 { return c.up }

// Update applies one input frame: movement scaled by speed and elapsed
// time, look deltas scaled by sensitivity with pitch clamped, and zoom
// clamped to the field-of-view range.
func (c *Camera) Update(f input.Frame) {
	v := c.MoveSpeed * f.DeltaTime
	c.Position = c.Position.
		Add(c.front.Mul(f.Move.Forward * v)).
		Add(c.right.Mul(f.Move.Right * v)).
		Add(c.WorldUp.Mul(f.Move.Up * v))

	c.Yaw = math.Mod(c.Yaw+f.Look.Yaw*c.Sensitivity, 360)
	c.Pitch = mathutil.Clamp(c.Pitch+f.Look.Pitch*c.Sensitivity, -MaxPitch, MaxPitch)
	c.Fov = mathutil.Clamp(c.Fov-f.Zoom, MinFov, MaxFov)
	c.updateVectors()
}

// View returns the world-to-eye matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.Position.Add(c.front), c.up)
}

// Transform returns the frame transform for a width×height target with an
// identity model matrix.
func (c *Camera) Transform(width, height int) viewmatrix.Transform {
	return viewmatrix.New(mgl64.Ident4(), c.View(), viewmatrix.Perspective(c.Fov, width, height), c.Position, width, height)
}

func (c *Camera) updateVectors() {
	yaw, pitch := mgl64.DegToRad(c.Yaw), mgl64.DegToRad(c.Pitch)
	c.front = mathutil.Normalize(mgl64.Vec3{
		math.Cos(yaw) * math.Cos(pitch),
		math.Sin(pitch),
		math.Sin(yaw) * math.Cos(pitch),
	})
	c.right = mathutil.Normalize(c.front.Cross(c.WorldUp))
	c.up = mathutil.Normalize(c.right.Cross(c.front))
}
