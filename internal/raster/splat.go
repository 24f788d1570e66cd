package raster

import (
	"math"

	"splat-renderer/internal/mathutil"
	"splat-renderer/internal/pointcloud"
	"splat-renderer/internal/viewmatrix"
)

// SplatOptions controls the footprint and depth normalization of splats.
type SplatOptions struct {
	PointSize int     // splat edge length in pixels
	FarPlane  float64 // distance mapped to depth 1
}

// SplatStats counts what happened to the cloud's points in one pass.
type SplatStats struct {
	Points     int
	Written    int
	BackFacing int
	Clipped    int
}

// Splat clears dst and rasterizes every point of cloud into it.
//
// Each surviving point writes its world position, world normal, lit color
// and depth proxy (eye distance / FarPlane) into a PointSize square of
// pixels; the nearest depth wins where splats overlap. Points whose normal
// faces away from the light (placed at the eye) are discarded without a
// write. Splatting is sequential so overlap resolution is deterministic.
func Splat(dst *SampleBuffer, cloud *pointcloud.Cloud, xf viewmatrix.Transform, prog Program, opts SplatOptions) SplatStats {
	dst.Clear()

	light := prog.light
	light.Position = xf.Eye
	size := opts.PointSize
	if size < 1 {
		size = 1
	}
	far := opts.FarPlane
	half := float64(size) / 2

	st := SplatStats{Points: cloud.Size()}
	cloud.Iterate(0, 0, func(_ int, pt pointcloud.Point) bool {
		pos := mathutil.FromR3(pt.Position)
		sx, sy, ok := xf.Project(pos)
		if !ok {
			st.Clipped++
			return true
		}
		world := xf.World(pos)
		depth := xf.Eye.Sub(world).Len() / far
		if depth >= 1 || depth < OccupancyEpsilon {
			st.Clipped++
			return true
		}
		n := xf.WorldNormal(mathutil.FromR3(pt.Normal))
		rgb, lit := light.Shade(world, n, xf.Eye, prog.base(pt))
		if !lit {
			st.BackFacing++
			return true
		}
		s := Sample{Position: [3]float64(world), Normal: [3]float64(n), Color: rgb, Depth: depth}

		x0 := int(math.Floor(sx - half + 0.5))
		y0 := int(math.Floor(sy - half + 0.5))
		wrote := false
		for y := y0; y < y0+size; y++ {
			for x := x0; x < x0+size; x++ {
				if !dst.Inside(x, y) {
					continue
				}
				i := dst.Index(x, y)
				if dst.Occupied(i) && dst.Depth(i) <= depth {
					continue
				}
				dst.Set(i, s)
				wrote = true
			}
		}
		if wrote {
			st.Written++
		}
		return true
	})
	return st
}
