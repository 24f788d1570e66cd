package postprocess

import "splat-renderer/internal/raster"

// Kernel3 is a 3×3 weight mask indexed [dy+1][dx+1]; row 0 is above the
// center pixel.
type Kernel3 [3][3]float64

// DirectionalKernels partition the 8-neighborhood into the half-planes and
// corners a pixel must be covered from before it counts as enclosed.
var DirectionalKernels = [8]Kernel3{
	{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}, // right column
	{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}}, // left column
	{{1, 1, 1}, {0, 0, 0}, {0, 0, 0}}, // top row
	{{0, 0, 0}, {0, 0, 0}, {1, 1, 1}}, // bottom row
	{{1, 1, 0}, {1, 0, 0}, {0, 0, 0}}, // top-left triangle
	{{0, 1, 1}, {0, 0, 1}, {0, 0, 0}}, // top-right triangle
	{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}, // bottom-left triangle
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 1}}, // bottom-right triangle
}

// Coverage returns, per directional kernel, the weighted sum of neighbor
// occupancy magnitudes around (x, y).
func Coverage(buf *raster.SampleBuffer, x, y int) [8]float64 {
	var occ Kernel3
	for ky := 0; ky < 3; ky++ {
		for kx := 0; kx < 3; kx++ {
			if kx == 1 && ky == 1 {
				continue
			}
			occ[ky][kx] = buf.OccupancyAt(x+kx-1, y+ky-1)
		}
	}
	return applyAll(occ)
}

// closerThan returns per directional kernel the weighted count of neighbors
// whose depth is below limit.
func closerThan(buf *raster.SampleBuffer, x, y int, limit float64) [8]float64 {
	var ind Kernel3
	for ky := 0; ky < 3; ky++ {
		for kx := 0; kx < 3; kx++ {
			if kx == 1 && ky == 1 {
				continue
			}
			d := buf.OccupancyAt(x+kx-1, y+ky-1)
			if d > 0 && d < limit {
				ind[ky][kx] = 1
			}
		}
	}
	return applyAll(ind)
}

func applyAll(v Kernel3) [8]float64 {
	var sums [8]float64
	for k, kern := range DirectionalKernels {
		for ky := 0; ky < 3; ky++ {
			for kx := 0; kx < 3; kx++ {
				sums[k] += kern[ky][kx] * v[ky][kx]
			}
		}
	}
	return sums
}

// Enclosed reports whether every directional sum is nonzero, i.e. whether
// the product of the eight sums is nonzero. Factors are tested one at a
// time so small depths cannot underflow the product to zero.
func Enclosed(sums [8]float64) bool {
	for _, s := range sums {
		if s < raster.OccupancyEpsilon {
			return false
		}
	}
	return true
}
