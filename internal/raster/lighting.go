package raster

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"splat-renderer/internal/mathutil"
)

// LightConfig holds the single point light's Phong parameters. Position is
// moved to the camera every frame.
type LightConfig struct {
	Position  mgl64.Vec3
	Ambient   float64
	Diffuse   float64
	Specular  float64
	Shininess float64
	BaseColor [3]float64 // used when points carry no color
}

// DefaultLightConfig returns the standard lighting.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Ambient:   0.15,
		Diffuse:   0.75,
		Specular:  0.25,
		Shininess: 32,
		BaseColor: [3]float64{0.8, 0.8, 0.82},
	}
}

// Validate rejects parameters no shading program can be built from.
func (lc *LightConfig) Validate() error {
	if lc.Ambient < 0 || lc.Diffuse < 0 || lc.Specular < 0 {
		return errors.Errorf("negative light coefficient (ambient %g, diffuse %g, specular %g)",
			lc.Ambient, lc.Diffuse, lc.Specular)
	}
	if lc.Shininess <= 0 || math.IsNaN(lc.Shininess) {
		return errors.Errorf("shininess must be positive, got %g", lc.Shininess)
	}
	for _, c := range lc.BaseColor {
		if c < 0 || c > 1 {
			return errors.Errorf("base color %v outside [0,1]", lc.BaseColor)
		}
	}
	return nil
}

// Shade lights a world-space sample seen from eye. ok is false when the
// normal faces away from the light, in which case nothing may be written.
func (lc *LightConfig) Shade(world, normal, eye mgl64.Vec3, base [3]float64) (rgb [3]float64, ok bool) {
	l := mathutil.Normalize(lc.Position.Sub(world))
	ndl := normal.Dot(l)
	if ndl < 0 {
		return rgb, false
	}
	v := mathutil.Normalize(eye.Sub(world))
	r := mathutil.Reflect(l.Mul(-1), normal)
	rdv := r.Dot(v)
	if rdv < 0 {
		rdv = 0
	}
	spec := math.Pow(rdv, lc.Shininess) * lc.Specular
	shade := lc.Ambient + ndl*lc.Diffuse
	for k := 0; k < 3; k++ {
		rgb[k] = mathutil.Clamp01(base[k]*shade + spec)
	}
	return rgb, true
}
