package postprocess

import "splat-renderer/internal/raster"

// FillHoles writes one hole-filling iteration of src into dst and returns
// the number of pixels filled.
//
// Occupied pixels copy through. An empty pixel covered in all eight
// directional partitions is an interior gap between splats and takes the
// nearest (smallest nonzero depth) of its neighbors; any other empty pixel
// is background and stays empty.
func (p *Passes) FillHoles(dst, src *raster.SampleBuffer) int {
	return p.each(dst, src, func(x, y, i int) int {
		if src.Occupied(i) {
			dst.CopyPixel(i, src, i)
			return 0
		}
		if !Enclosed(Coverage(src, x, y)) {
			dst.ClearPixel(i)
			return 0
		}
		best, bestDepth := -1, 0.0
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				d := src.OccupancyAt(x+dx, y+dy)
				if d == 0 {
					continue
				}
				if best < 0 || d < bestDepth {
					best, bestDepth = src.Index(x+dx, y+dy), d
				}
			}
		}
		dst.CopyPixel(i, src, best)
		return 1
	})
}
