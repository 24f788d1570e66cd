package mathutil

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
)

// FromR3 converts a cloud vector to the matrix library's vector type.
func FromR3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Normalize returns v at unit length, or the zero vector when v is degenerate.
// mgl64's Normalize divides by zero in that case.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Reflect mirrors incident direction i about unit normal n (GLSL reflect).
func Reflect(i, n mgl64.Vec3) mgl64.Vec3 {
	return i.Sub(n.Mul(2 * n.Dot(i)))
}
