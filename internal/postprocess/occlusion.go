package postprocess

import "splat-renderer/internal/raster"

// ResolveOcclusion writes one occlusion iteration of src into dst and
// returns the number of samples replaced.
//
// An occupied sample with a strictly closer neighbor (depth below its own
// minus tolerance) in every directional partition is hidden behind the
// surface in front of it. It is replaced by the strictly closer neighbor
// with the smallest depth difference. Once no sample qualifies the pass
// copies src unchanged.
func (p *Passes) ResolveOcclusion(dst, src *raster.SampleBuffer, tolerance float64) int {
	return p.each(dst, src, func(x, y, i int) int {
		if !src.Occupied(i) {
			dst.ClearPixel(i)
			return 0
		}
		center := src.Depth(i)
		limit := center - tolerance
		if !Enclosed(closerThan(src, x, y, limit)) {
			dst.CopyPixel(i, src, i)
			return 0
		}
		best, bestDiff := -1, 0.0
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				d := src.OccupancyAt(x+dx, y+dy)
				if d == 0 || d >= limit {
					continue
				}
				if diff := center - d; best < 0 || diff < bestDiff {
					best, bestDiff = src.Index(x+dx, y+dy), diff
				}
			}
		}
		dst.CopyPixel(i, src, best)
		return 1
	})
}
