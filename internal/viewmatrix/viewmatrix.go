// Package viewmatrix builds the per-frame model/view/projection transforms
// and maps world positions to pixel coordinates.
package viewmatrix

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"splat-renderer/internal/mathutil"
)

// Clip planes of the perspective projection. Depth for shading and
// occupancy uses FarPlane normalization instead (see raster.Splat).
const (
	NearClip = 0.01
	FarClip  = 1000.0
)

// Transform is everything needed to project one frame.
type Transform struct {
	Model      mgl64.Mat4
	View       mgl64.Mat4
	Projection mgl64.Mat4
	MVP        mgl64.Mat4
	Normal     mgl64.Mat3 // inverse-transpose of Model
	Eye        mgl64.Vec3
	Width      int
	Height     int
}

// New combines the matrices for a width×height target.
func New(model, view, projection mgl64.Mat4, eye mgl64.Vec3, width, height int) Transform {
	return Transform{
		Model:      model,
		View:       view,
		Projection: projection,
		MVP:        projection.Mul4(view).Mul4(model),
		Normal:     mgl64.Mat4Normal(model),
		Eye:        eye,
		Width:      width,
		Height:     height,
	}
}

// Perspective returns the projection for a vertical field of view in degrees.
func Perspective(fovDeg float64, width, height int) mgl64.Mat4 {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	return mgl64.Perspective(mgl64.DegToRad(fovDeg), aspect, NearClip, FarClip)
}

// World transforms a model-space position to world space.
func (t Transform) World(p mgl64.Vec3) mgl64.Vec3 {
	return t.Model.Mul4x1(p.Vec4(1)).Vec3()
}

// WorldNormal transforms a model-space normal to a unit world-space normal.
func (t Transform) WorldNormal(n mgl64.Vec3) mgl64.Vec3 {
	return mathutil.Normalize(t.Normal.Mul3x1(n))
}

// Project maps a model-space position to continuous pixel coordinates, with
// (0, 0) the top-left corner of the image. ok is false when the point lies
// behind the eye or outside the view volume.
func (t Transform) Project(p mgl64.Vec3) (sx, sy float64, ok bool) {
	clip := t.MVP.Mul4x1(p.Vec4(1))
	w := clip[3]
	if w <= 1e-12 {
		return 0, 0, false
	}
	nx, ny, nz := clip[0]/w, clip[1]/w, clip[2]/w
	if nx < -1 || nx > 1 || ny < -1 || ny > 1 || nz < -1 || nz > 1 {
		return 0, 0, false
	}
	sx = (nx*0.5 + 0.5) * float64(t.Width)
	sy = (0.5 - ny*0.5) * float64(t.Height)
	return sx, sy, true
}

// FitDistance returns how far from a bounding sphere's center a camera with
// the given vertical field of view must sit to see the whole sphere.
func FitDistance(radius, fovDeg float64) float64 {
	if radius < 0.001 {
		radius = 0.001
	}
	half := mgl64.DegToRad(fovDeg / 2)
	return radius / math.Sin(half)
}
