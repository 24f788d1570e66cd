package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"splat-renderer/internal/input"
	"splat-renderer/internal/pointcloud"
)

func vecAlmostEqual(t *testing.T, got, want mgl64.Vec3) {
	t.Helper()
	for i := range got {
		test.That(t, got[i], test.ShouldAlmostEqual, want[i], 1e-9)
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(mgl64.Vec3{0, 0, 3}, DefaultYaw, 0, 45, 2.5, 0.1)
	vecAlmostEqual(t, c.Front(), mgl64.Vec3{0, 0, -1})
	vecAlmostEqual(t, c.Right(), mgl64.Vec3{1, 0, 0})
	vecAlmostEqual(t, c.Up(), mgl64.Vec3{0, 1, 0})

	c = New(mgl64.Vec3{}, DefaultYaw, 120, 90, 1, 1)
	test.That(t, c.Pitch, test.ShouldEqual, MaxPitch)
	test.That(t, c.Fov, test.ShouldEqual, MaxFov)
}

func TestUpdateMovement(t *testing.T) {
	c := New(mgl64.Vec3{0, 0, 3}, DefaultYaw, 0, 45, 2, 0.1)
	c.Update(input.Frame{Move: input.Axes{Forward: 1, Right: 0.5, Up: -1}, DeltaTime: 0.5})
	vecAlmostEqual(t, c.Position, mgl64.Vec3{0.5, -1, 2})

	// No elapsed time, no movement.
	c.Update(input.Frame{Move: input.Axes{Forward: 1}})
	vecAlmostEqual(t, c.Position, mgl64.Vec3{0.5, -1, 2})
}

func TestUpdateLookClamps(t *testing.T) {
	c := New(mgl64.Vec3{}, DefaultYaw, 0, 45, 1, 0.1)
	c.Update(input.Frame{Look: input.Look{Yaw: 900}})
	test.That(t, c.Yaw, test.ShouldAlmostEqual, 0, 1e-9)
	vecAlmostEqual(t, c.Front(), mgl64.Vec3{1, 0, 0})

	for i := 0; i < 5; i++ {
		c.Update(input.Frame{Look: input.Look{Pitch: 400}})
	}
	test.That(t, c.Pitch, test.ShouldEqual, MaxPitch)
	c.Update(input.Frame{Look: input.Look{Pitch: -4000}})
	test.That(t, c.Pitch, test.ShouldEqual, -MaxPitch)
	test.That(t, c.Up().Y(), test.ShouldBeGreaterThan, 0)
}

func TestUpdateZoomClamps(t *testing.T) {
	c := New(mgl64.Vec3{}, DefaultYaw, 0, 45, 1, 0.1)
	c.Update(input.Frame{Zoom: 10})
	test.That(t, c.Fov, test.ShouldEqual, 35.0)
	c.Update(input.Frame{Zoom: 100})
	test.That(t, c.Fov, test.ShouldEqual, MinFov)
	c.Update(input.Frame{Zoom: -100})
	test.That(t, c.Fov, test.ShouldEqual, MaxFov)
}

func TestFramingSeesCloud(t *testing.T) {
	pts := []pointcloud.Point{
		{Position: r3.Vector{X: -1, Y: -1, Z: 0}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 1, Y: 1, Z: 0}, Normal: r3.Vector{Z: 1}},
		{Position: r3.Vector{X: 1, Y: -1, Z: 2}, Normal: r3.Vector{Z: 1}},
	}
	cloud, err := pointcloud.New(pts, pointcloud.StrideNoColor)
	test.That(t, err, test.ShouldBeNil)

	c := Framing(cloud.MetaData(), 45, 1, 0.1)
	test.That(t, c.Position.X(), test.ShouldAlmostEqual, 0, 1e-9)
	test.That(t, c.Position.Z(), test.ShouldBeGreaterThan, 2)
	xf := c.Transform(64, 48)
	for _, p := range pts {
		_, _, ok := xf.Project(mgl64.Vec3{p.Position.X, p.Position.Y, p.Position.Z})
		test.That(t, ok, test.ShouldBeTrue)
	}
}

func TestFramingEmptyCloud(t *testing.T) {
	cloud, err := pointcloud.New(nil, pointcloud.StrideColor)
	test.That(t, err, test.ShouldBeNil)
	c := Framing(cloud.MetaData(), 45, 1, 0.1)
	test.That(t, c.Position.Z(), test.ShouldBeGreaterThan, 0)
	vecAlmostEqual(t, c.Front(), mgl64.Vec3{0, 0, -1})
}
