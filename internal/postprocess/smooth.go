package postprocess

import (
	"math"

	"splat-renderer/internal/raster"
)

// Smooth writes the occupancy-masked blur of src into dst and returns the
// number of samples that had at least one occupied neighbor.
//
// Each occupied neighbor is weighted by a Gaussian of its depth difference
// to the center, exp(-(Δdepth/sigma)²), so the center always carries the
// largest weight and a neighbor across a depth discontinuity contributes
// nothing. On a region of uniform depth every weight is 1 and the result
// is the plain mean of the occupied 3×3 neighborhood. Empty neighbors get
// zero weight and the rest are renormalized; empty pixels stay empty.
// sigma <= 0 weights every occupied neighbor equally.
func (p *Passes) Smooth(dst, src *raster.SampleBuffer, sigma float64) int {
	return p.each(dst, src, func(x, y, i int) int {
		if !src.Occupied(i) {
			dst.ClearPixel(i)
			return 0
		}
		center := src.Depth(i)
		var acc raster.Sample
		total := 0.0
		neighbors := 0
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if src.OccupancyAt(x+dx, y+dy) == 0 {
					continue
				}
				if dx != 0 || dy != 0 {
					neighbors++
				}
				j := src.Index(x+dx, y+dy)
				w := DepthWeight(src.Depth(j)-center, sigma)
				accumulate(&acc, src.At(j), w)
				total += w
			}
		}
		if neighbors == 0 {
			dst.CopyPixel(i, src, i)
			return 0
		}
		dst.Set(i, normalizeSample(acc, 1/total))
		return 1
	})
}

// DepthWeight is the smoothing weight of a neighbor whose depth differs
// from the center by diff.
func DepthWeight(diff, sigma float64) float64 {
	if sigma <= 0 {
		return 1
	}
	r := diff / sigma
	return math.Exp(-r * r)
}

func accumulate(acc *raster.Sample, s raster.Sample, w float64) {
	for k := 0; k < 3; k++ {
		acc.Position[k] += s.Position[k] * w
		acc.Normal[k] += s.Normal[k] * w
		acc.Color[k] += s.Color[k] * w
	}
	acc.Depth += s.Depth * w
}

// normalizeSample scales an accumulated sample and brings its normal back
// to unit length.
func normalizeSample(acc raster.Sample, scale float64) raster.Sample {
	for k := 0; k < 3; k++ {
		acc.Position[k] *= scale
		acc.Color[k] *= scale
	}
	acc.Depth *= scale
	n := math.Sqrt(acc.Normal[0]*acc.Normal[0] + acc.Normal[1]*acc.Normal[1] + acc.Normal[2]*acc.Normal[2])
	if n > 1e-12 {
		for k := 0; k < 3; k++ {
			acc.Normal[k] /= n
		}
	}
	return acc
}
