package raster

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"splat-renderer/internal/pointcloud"
	"splat-renderer/internal/viewmatrix"
)

func testTransform(w, h int) viewmatrix.Transform {
	eye := mgl64.Vec3{0, 0, 5}
	view := mgl64.LookAtV(eye, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	return viewmatrix.New(mgl64.Ident4(), view, viewmatrix.Perspective(45, w, h), eye, w, h)
}

func mustCloud(t *testing.T, stride pointcloud.Stride, pts ...pointcloud.Point) *pointcloud.Cloud {
	t.Helper()
	c, err := pointcloud.New(pts, stride)
	test.That(t, err, test.ShouldBeNil)
	return c
}

func mustProgram(t *testing.T, stride pointcloud.Stride) Program {
	t.Helper()
	p, err := BuildProgram(stride, DefaultLightConfig())
	test.That(t, err, test.ShouldBeNil)
	return p
}

func facing(x, y, z float64) pointcloud.Point {
	return pointcloud.Point{Position: r3.Vector{X: x, Y: y, Z: z}, Normal: r3.Vector{Z: 1}}
}

func TestNewSampleBuffer(t *testing.T) {
	b, err := NewSampleBuffer(4, 3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Len(), test.ShouldEqual, 12)
	test.That(t, b.Position, test.ShouldHaveLength, 36)
	test.That(t, b.Color, test.ShouldHaveLength, 48)
	test.That(t, b.CountOccupied(), test.ShouldEqual, 0)

	for _, dims := range [][2]int{{0, 3}, {3, 0}, {-1, 5}, {MaxPixels, 2}} {
		_, err := NewSampleBuffer(dims[0], dims[1])
		test.That(t, errors.Is(err, ErrBufferSize), test.ShouldBeTrue)
	}
}

func TestSampleBufferAccess(t *testing.T) {
	b, err := NewSampleBuffer(3, 3)
	test.That(t, err, test.ShouldBeNil)
	s := Sample{
		Position: [3]float64{1, 2, 3},
		Normal:   [3]float64{0, 0, 1},
		Color:    [3]float64{0.5, 0.25, 1},
		Depth:    0.4,
	}
	i := b.Index(2, 1)
	b.Set(i, s)
	test.That(t, b.At(i), test.ShouldResemble, s)
	test.That(t, b.Occupied(i), test.ShouldBeTrue)
	test.That(t, b.OccupancyAt(2, 1), test.ShouldEqual, 0.4)
	test.That(t, b.OccupancyAt(3, 1), test.ShouldEqual, 0.0)
	test.That(t, b.OccupancyAt(-1, 0), test.ShouldEqual, 0.0)
	test.That(t, b.CountOccupied(), test.ShouldEqual, 1)

	o, err := NewSampleBuffer(3, 3)
	test.That(t, err, test.ShouldBeNil)
	o.CopyPixel(0, b, i)
	test.That(t, o.At(0), test.ShouldResemble, s)
	test.That(t, o.SameSize(b), test.ShouldBeTrue)

	b.ClearPixel(i)
	test.That(t, b.Occupied(i), test.ShouldBeFalse)
	test.That(t, b.At(i), test.ShouldResemble, Sample{})

	o.Set(4, Sample{Depth: OccupancyEpsilon / 2})
	test.That(t, o.Occupied(4), test.ShouldBeFalse)
	o.Clear()
	test.That(t, o.CountOccupied(), test.ShouldEqual, 0)
}

func TestBuildProgram(t *testing.T) {
	p := mustProgram(t, pointcloud.StrideNoColor)
	test.That(t, p.Variant(), test.ShouldEqual, WithoutColor)
	p = mustProgram(t, pointcloud.StrideColor)
	test.That(t, p.Variant(), test.ShouldEqual, WithColor)

	_, err := BuildProgram(pointcloud.Stride(5), DefaultLightConfig())
	test.That(t, errors.Is(err, ErrProgramBuild), test.ShouldBeTrue)

	bad := DefaultLightConfig()
	bad.Shininess = 0
	_, err = BuildProgram(pointcloud.StrideNoColor, bad)
	test.That(t, errors.Is(err, ErrProgramBuild), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "shininess")
}

func TestShade(t *testing.T) {
	lc := DefaultLightConfig()
	lc.Position = mgl64.Vec3{0, 0, 5}
	eye := lc.Position
	base := [3]float64{0.5, 0.5, 0.5}

	rgb, ok := lc.Shade(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, eye, base)
	test.That(t, ok, test.ShouldBeTrue)
	// Head-on: full diffuse and full specular.
	want := 0.5*(lc.Ambient+lc.Diffuse) + lc.Specular
	test.That(t, rgb[0], test.ShouldAlmostEqual, want, 1e-9)

	_, ok = lc.Shade(mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}, eye, base)
	test.That(t, ok, test.ShouldBeFalse)

	// Grazing but front-facing keeps ambient.
	rgb, ok = lc.Shade(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, eye, base)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, rgb[1], test.ShouldAlmostEqual, 0.5*lc.Ambient, 1e-9)
}

func TestSplatCenter(t *testing.T) {
	b, err := NewSampleBuffer(9, 9)
	test.That(t, err, test.ShouldBeNil)
	cloud := mustCloud(t, pointcloud.StrideNoColor, facing(0, 0, 0))
	st := Splat(b, cloud, testTransform(9, 9), mustProgram(t, pointcloud.StrideNoColor), SplatOptions{PointSize: 1, FarPlane: 10})

	test.That(t, st, test.ShouldResemble, SplatStats{Points: 1, Written: 1})
	test.That(t, b.CountOccupied(), test.ShouldEqual, 1)
	s := b.At(b.Index(4, 4))
	test.That(t, s.Depth, test.ShouldAlmostEqual, 0.5, 1e-9)
	test.That(t, s.Normal, test.ShouldResemble, [3]float64{0, 0, 1})
	test.That(t, s.Position, test.ShouldResemble, [3]float64{0, 0, 0})
}

func TestSplatPointSize(t *testing.T) {
	b, err := NewSampleBuffer(9, 9)
	test.That(t, err, test.ShouldBeNil)
	cloud := mustCloud(t, pointcloud.StrideNoColor, facing(0, 0, 0))
	Splat(b, cloud, testTransform(9, 9), mustProgram(t, pointcloud.StrideNoColor), SplatOptions{PointSize: 3, FarPlane: 10})
	test.That(t, b.CountOccupied(), test.ShouldEqual, 9)
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			test.That(t, b.Occupied(b.Index(x, y)), test.ShouldBeTrue)
		}
	}
}

func TestSplatDiscardsAndClips(t *testing.T) {
	b, err := NewSampleBuffer(9, 9)
	test.That(t, err, test.ShouldBeNil)
	away := facing(0, 0, 0)
	away.Normal = r3.Vector{Z: -1}
	behind := facing(0, 0, 6)
	beyondFar := facing(0, 0, -20)
	cloud := mustCloud(t, pointcloud.StrideNoColor, away, behind, beyondFar)

	st := Splat(b, cloud, testTransform(9, 9), mustProgram(t, pointcloud.StrideNoColor), SplatOptions{PointSize: 1, FarPlane: 10})
	test.That(t, st.Written, test.ShouldEqual, 0)
	test.That(t, st.BackFacing, test.ShouldEqual, 1)
	test.That(t, st.Clipped, test.ShouldEqual, 2)
	test.That(t, b.CountOccupied(), test.ShouldEqual, 0)
}

func TestSplatNearestWins(t *testing.T) {
	b, err := NewSampleBuffer(9, 9)
	test.That(t, err, test.ShouldBeNil)
	far := facing(0, 0, -1)
	far.Color = [3]float64{1, 0, 0}
	near := facing(0, 0, 1)
	near.Color = [3]float64{0, 0, 1}
	prog := mustProgram(t, pointcloud.StrideColor)
	opts := SplatOptions{PointSize: 1, FarPlane: 10}

	for _, order := range [][]pointcloud.Point{{far, near}, {near, far}} {
		Splat(b, mustCloud(t, pointcloud.StrideColor, order...), testTransform(9, 9), prog, opts)
		s := b.At(b.Index(4, 4))
		test.That(t, s.Depth, test.ShouldAlmostEqual, 0.4, 1e-9)
		test.That(t, s.Color[0], test.ShouldBeLessThan, s.Color[2])
		test.That(t, b.CountOccupied(), test.ShouldEqual, 1)
	}
}

func TestSplatClearsStaleSamples(t *testing.T) {
	b, err := NewSampleBuffer(5, 5)
	test.That(t, err, test.ShouldBeNil)
	b.Set(0, Sample{Depth: 0.3})
	st := Splat(b, mustCloud(t, pointcloud.StrideNoColor), testTransform(5, 5), mustProgram(t, pointcloud.StrideNoColor), SplatOptions{FarPlane: 10})
	test.That(t, st.Points, test.ShouldEqual, 0)
	test.That(t, b.CountOccupied(), test.ShouldEqual, 0)
	test.That(t, math.Abs(b.Depth(0)), test.ShouldEqual, 0.0)
}
