package raster

import (
	"github.com/pkg/errors"

	"splat-renderer/internal/pointcloud"
)

// Variant selects where a splat's base color comes from.
type Variant int

const (
	// WithoutColor shades every point with the light's base color.
	WithoutColor Variant = iota
	// WithColor shades each point with its own color.
	WithColor
)

func (v Variant) String() string {
	if v == WithColor {
		return "with-color"
	}
	return "without-color"
}

// ErrProgramBuild is returned when no shading program fits the inputs.
var ErrProgramBuild = errors.New("shading program build failed")

// Program is the splatting program for one session. It is built once from
// the cloud's stride and never re-selected.
type Program struct {
	variant Variant
	light   LightConfig
}

// BuildProgram resolves the variant for stride and validates the lighting.
func BuildProgram(stride pointcloud.Stride, light LightConfig) (Program, error) {
	var v Variant
	switch stride {
	case pointcloud.StrideNoColor:
		v = WithoutColor
	case pointcloud.StrideColor:
		v = WithColor
	default:
		return Program{}, errors.Wrapf(ErrProgramBuild, "stride %d", int(stride))
	}
	if err := light.Validate(); err != nil {
		return Program{}, errors.Wrap(ErrProgramBuild, err.Error())
	}
	return Program{variant: v, light: light}, nil
}

// Variant returns the resolved variant.
func (p Program) Variant() Variant {
	return p.variant
}

func (p Program) base(pt pointcloud.Point) [3]float64 {
	if p.variant == WithColor {
		return pt.Color
	}
	return p.light.BaseColor
}
