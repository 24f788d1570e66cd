package postprocess

import (
	"math"

	"splat-renderer/internal/raster"
)

// LaplacianKernel is the 4-neighbor discrete Laplacian.
var LaplacianKernel = Kernel3{
	{0, 1, 0},
	{1, -4, 1},
	{0, 1, 0},
}

// EdgeOptions tunes the anti-aliasing edge pass.
type EdgeOptions struct {
	// Threshold is the color Laplacian magnitude above which a sample is
	// treated as a jagged edge.
	Threshold float64
	// Strength in [0, 1] is how far an edge sample moves toward its
	// neighborhood mean.
	Strength float64
	// DepthGate is the largest depth difference a neighbor may have and
	// still count as the same surface.
	DepthGate float64
}

// EdgeSignal returns the gated Laplacian of the sample at (x, y): the mean
// of its same-surface 4-neighbors minus the sample itself. ok is false when
// (x, y) is empty or no neighbor passes the depth gate.
func EdgeSignal(buf *raster.SampleBuffer, x, y int, gate float64) (lap raster.Sample, ok bool) {
	i := buf.Index(x, y)
	if !buf.Occupied(i) {
		return lap, false
	}
	center := buf.At(i)
	var acc raster.Sample
	total := 0.0
	for ky := 0; ky < 3; ky++ {
		for kx := 0; kx < 3; kx++ {
			w := LaplacianKernel[ky][kx]
			if w <= 0 {
				continue
			}
			d := buf.OccupancyAt(x+kx-1, y+ky-1)
			if d == 0 || math.Abs(d-center.Depth) > gate {
				continue
			}
			accumulate(&acc, buf.At(buf.Index(x+kx-1, y+ky-1)), w)
			total += w
		}
	}
	if total == 0 {
		return lap, false
	}
	inv := 1 / total
	for k := 0; k < 3; k++ {
		lap.Position[k] = acc.Position[k]*inv - center.Position[k]
		lap.Normal[k] = acc.Normal[k]*inv - center.Normal[k]
		lap.Color[k] = acc.Color[k]*inv - center.Color[k]
	}
	lap.Depth = acc.Depth*inv - center.Depth
	return lap, true
}

// EdgeResample is the anti-aliasing edge pass. Samples whose color
// Laplacian exceeds the threshold are pulled toward the mean of their
// same-surface neighbors; everything else copies through and empty pixels
// stay empty. Neighbors across a depth discontinuity are gated out, so
// silhouettes keep their position. Returns the number of samples changed.
func (p *Passes) EdgeResample(dst, src *raster.SampleBuffer, opts EdgeOptions) int {
	return p.each(dst, src, func(x, y, i int) int {
		if !src.Occupied(i) {
			dst.ClearPixel(i)
			return 0
		}
		lap, ok := EdgeSignal(src, x, y, opts.DepthGate)
		if !ok || colorMagnitude(lap) <= opts.Threshold {
			dst.CopyPixel(i, src, i)
			return 0
		}
		s := src.At(i)
		for k := 0; k < 3; k++ {
			s.Position[k] += opts.Strength * lap.Position[k]
			s.Normal[k] += opts.Strength * lap.Normal[k]
			s.Color[k] += opts.Strength * lap.Color[k]
		}
		s.Depth += opts.Strength * lap.Depth
		dst.Set(i, normalizeSample(s, 1))
		return 1
	})
}

func colorMagnitude(lap raster.Sample) float64 {
	m := 0.0
	for _, c := range lap.Color {
		m = math.Max(m, math.Abs(c))
	}
	return m
}
