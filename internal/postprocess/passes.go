// Package postprocess implements the image-space passes that turn a sparse
// splat raster into a closed surface: hole filling, occlusion resolution,
// smoothing and edge anti-aliasing.
//
// Every pass reads one sample buffer and writes every pixel of another.
// Pixels are independent within a pass, so rows are processed in parallel
// bands; reading and writing the same buffer is never allowed.
package postprocess

import (
	"sync/atomic"

	"splat-renderer/internal/batch"
	"splat-renderer/internal/raster"
)

// Passes runs the image-space passes on a shared worker pool.
type Passes struct {
	pool *batch.Pool
}

// New returns passes backed by pool.
func New(pool *batch.Pool) *Passes {
	return &Passes{pool: pool}
}

// each runs fn for every pixel of dst and sums what fn returns.
func (p *Passes) each(dst, src *raster.SampleBuffer, fn func(x, y, i int) int) int {
	if dst == src {
		panic("postprocess: source and target are the same buffer")
	}
	if !dst.SameSize(src) {
		panic("postprocess: source and target sizes differ")
	}
	var total atomic.Int64
	w := dst.Width
	p.pool.Rows(dst.Height, func(y0, y1 int) {
		n := 0
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				n += fn(x, y, y*w+x)
			}
		}
		total.Add(int64(n))
	})
	return int(total.Load())
}

// DiscardEmpty is the anti-aliasing low pass: occupied samples pass through
// unchanged and empty pixels are written cleared.
func (p *Passes) DiscardEmpty(dst, src *raster.SampleBuffer) int {
	return p.each(dst, src, func(_, _, i int) int {
		if !src.Occupied(i) {
			dst.ClearPixel(i)
			return 1
		}
		dst.CopyPixel(i, src, i)
		return 0
	})
}
