// Package pointcloud holds the immutable point set a rendering session draws.
package pointcloud

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Stride is the number of floats in one point record. It is fixed when the
// cloud is loaded and selects the shading program for the whole session.
type Stride int

const (
	// StrideNoColor is position + normal.
	StrideNoColor Stride = 6
	// StrideColor is position + normal + rgb.
	StrideColor Stride = 9
)

// HasColor reports whether records at this stride carry per-point color.
func (s Stride) HasColor() bool {
	return s == StrideColor
}

// Valid reports whether s is one of the two supported strides.
func (s Stride) Valid() bool {
	return s == StrideNoColor || s == StrideColor
}

func (s Stride) String() string {
	switch s {
	case StrideNoColor:
		return "position+normal"
	case StrideColor:
		return "position+normal+color"
	default:
		return "invalid"
	}
}

// Point is one oriented sample. Color is only meaningful when the owning
// cloud's stride has color, and is then in [0, 1] per channel.
type Point struct {
	Position r3.Vector
	Normal   r3.Vector
	Color    [3]float64
}

// MetaData is data about what is stored in the cloud.
type MetaData struct {
	HasColor bool

	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// Empty reports whether the bounds cover no point.
func (m MetaData) Empty() bool {
	return m.MinX > m.MaxX
}

// Center returns the center of the bounding box.
func (m MetaData) Center() r3.Vector {
	return r3.Vector{X: (m.MinX + m.MaxX) / 2, Y: (m.MinY + m.MaxY) / 2, Z: (m.MinZ + m.MaxZ) / 2}
}

// Extent returns the bounding box size along each axis.
func (m MetaData) Extent() r3.Vector {
	if m.Empty() {
		return r3.Vector{}
	}
	return r3.Vector{X: m.MaxX - m.MinX, Y: m.MaxY - m.MinY, Z: m.MaxZ - m.MinZ}
}

func newMeta(hasColor bool) MetaData {
	return MetaData{
		HasColor: hasColor,
		MinX:     math.MaxFloat64,
		MinY:     math.MaxFloat64,
		MinZ:     math.MaxFloat64,
		MaxX:     -math.MaxFloat64,
		MaxY:     -math.MaxFloat64,
		MaxZ:     -math.MaxFloat64,
	}
}

func (m *MetaData) merge(v r3.Vector) {
	m.MinX = math.Min(m.MinX, v.X)
	m.MinY = math.Min(m.MinY, v.Y)
	m.MinZ = math.Min(m.MinZ, v.Z)
	m.MaxX = math.Max(m.MaxX, v.X)
	m.MaxY = math.Max(m.MaxY, v.Y)
	m.MaxZ = math.Max(m.MaxZ, v.Z)
}

// Cloud is an ordered, immutable sequence of points.
type Cloud struct {
	points []Point
	stride Stride
	meta   MetaData
	sum    r3.Vector
}

// New builds a cloud from points. The slice is copied; later changes by the
// caller do not reach the cloud.
func New(points []Point, stride Stride) (*Cloud, error) {
	if !stride.Valid() {
		return nil, errors.Errorf("unsupported point stride %d", int(stride))
	}
	c := &Cloud{
		points: make([]Point, len(points)),
		stride: stride,
		meta:   newMeta(stride.HasColor()),
	}
	copy(c.points, points)
	for _, p := range c.points {
		c.meta.merge(p.Position)
		c.sum = c.sum.Add(p.Position)
	}
	return c, nil
}

// Size returns the number of points in the cloud.
func (c *Cloud) Size() int {
	return len(c.points)
}

// Stride returns the record stride fixed at load time.
func (c *Cloud) Stride() Stride {
	return c.stride
}

// MetaData returns bounds and color presence.
func (c *Cloud) MetaData() MetaData {
	return c.meta
}

// At returns the i'th point.
func (c *Cloud) At(i int) Point {
	return c.points[i]
}

// Centroid returns the mean point position, or the origin for an empty cloud.
func (c *Cloud) Centroid() r3.Vector {
	if len(c.points) == 0 {
		return r3.Vector{}
	}
	return c.sum.Mul(1 / float64(len(c.points)))
}

// Iterate calls fn for every point in order until fn returns false.
// numBatches divides the work: 0 means don't divide, otherwise only the
// points of batch myBatch are visited.
func (c *Cloud) Iterate(numBatches, myBatch int, fn func(i int, p Point) bool) {
	lo, hi := 0, len(c.points)
	if numBatches > 0 {
		per := (len(c.points) + numBatches - 1) / numBatches
		lo = myBatch * per
		hi = lo + per
		if hi > len(c.points) {
			hi = len(c.points)
		}
	}
	for i := lo; i < hi; i++ {
		if !fn(i, c.points[i]) {
			return
		}
	}
}
