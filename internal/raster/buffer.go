package raster

import (
	"math"

	"github.com/pkg/errors"
)

// OccupancyEpsilon is the depth magnitude below which a pixel is empty.
// Every stage uses this same test.
const OccupancyEpsilon = 1e-6

// MaxPixels bounds a single buffer allocation.
const MaxPixels = 1 << 26

// ErrBufferSize is returned for a resolution no buffer can be allocated at.
var ErrBufferSize = errors.New("invalid sample buffer size")

// SampleBuffer is one off-screen sample set held as flat slices for cache
// locality. The color alpha channel carries the depth proxy, so a pixel is
// occupied exactly when its alpha is nonzero.
type SampleBuffer struct {
	Width    int
	Height   int
	Position []float64 // xyz interleaved, len = W*H*3
	Normal   []float64 // xyz interleaved, len = W*H*3
	Color    []float64 // rgb + depth interleaved, len = W*H*4
}

// Sample is the content of one pixel.
type Sample struct {
	Position [3]float64
	Normal   [3]float64
	Color    [3]float64
	Depth    float64
}

// Occupied reports whether s holds a valid sample.
func (s Sample) Occupied() bool {
	return math.Abs(s.Depth) >= OccupancyEpsilon
}

// NewSampleBuffer allocates a cleared w×h buffer.
func NewSampleBuffer(w, h int) (*SampleBuffer, error) {
	if w <= 0 || h <= 0 || w > MaxPixels/h {
		return nil, errors.Wrapf(ErrBufferSize, "%dx%d", w, h)
	}
	n := w * h
	return &SampleBuffer{
		Width:    w,
		Height:   h,
		Position: make([]float64, n*3),
		Normal:   make([]float64, n*3),
		Color:    make([]float64, n*4),
	}, nil
}

// Len returns the pixel count.
func (b *SampleBuffer) Len() int {
	return b.Width * b.Height
}

// Index returns the pixel index of (x, y). Row 0 is the top of the image.
func (b *SampleBuffer) Index(x, y int) int {
	return y*b.Width + x
}

// Inside reports whether (x, y) lies in the buffer.
func (b *SampleBuffer) Inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Depth returns the depth proxy of pixel i, 0 when empty.
func (b *SampleBuffer) Depth(i int) float64 {
	return b.Color[i*4+3]
}

// Occupied reports whether pixel i holds a sample.
func (b *SampleBuffer) Occupied(i int) bool {
	return math.Abs(b.Color[i*4+3]) >= OccupancyEpsilon
}

// OccupancyAt returns the occupancy magnitude at (x, y); pixels outside the
// buffer read as empty.
func (b *SampleBuffer) OccupancyAt(x, y int) float64 {
	if !b.Inside(x, y) {
		return 0
	}
	d := math.Abs(b.Color[(y*b.Width+x)*4+3])
	if d < OccupancyEpsilon {
		return 0
	}
	return d
}

// At returns the sample at pixel i.
func (b *SampleBuffer) At(i int) Sample {
	p, c := i*3, i*4
	return Sample{
		Position: [3]float64{b.Position[p], b.Position[p+1], b.Position[p+2]},
		Normal:   [3]float64{b.Normal[p], b.Normal[p+1], b.Normal[p+2]},
		Color:    [3]float64{b.Color[c], b.Color[c+1], b.Color[c+2]},
		Depth:    b.Color[c+3],
	}
}

// Set writes s to pixel i.
func (b *SampleBuffer) Set(i int, s Sample) {
	p, c := i*3, i*4
	copy(b.Position[p:p+3], s.Position[:])
	copy(b.Normal[p:p+3], s.Normal[:])
	copy(b.Color[c:c+3], s.Color[:])
	b.Color[c+3] = s.Depth
}

// ClearPixel empties pixel i.
func (b *SampleBuffer) ClearPixel(i int) {
	p, c := i*3, i*4
	b.Position[p], b.Position[p+1], b.Position[p+2] = 0, 0, 0
	b.Normal[p], b.Normal[p+1], b.Normal[p+2] = 0, 0, 0
	b.Color[c], b.Color[c+1], b.Color[c+2], b.Color[c+3] = 0, 0, 0, 0
}

// CopyPixel copies pixel si of src into pixel di of b.
func (b *SampleBuffer) CopyPixel(di int, src *SampleBuffer, si int) {
	copy(b.Position[di*3:di*3+3], src.Position[si*3:si*3+3])
	copy(b.Normal[di*3:di*3+3], src.Normal[si*3:si*3+3])
	copy(b.Color[di*4:di*4+4], src.Color[si*4:si*4+4])
}

// Clear empties every pixel.
func (b *SampleBuffer) Clear() {
	clear(b.Position)
	clear(b.Normal)
	clear(b.Color)
}

// SameSize reports whether o has the same resolution as b.
func (b *SampleBuffer) SameSize(o *SampleBuffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// CountOccupied returns the number of occupied pixels.
func (b *SampleBuffer) CountOccupied() int {
	n := 0
	for i := 0; i < b.Len(); i++ {
		if b.Occupied(i) {
			n++
		}
	}
	return n
}
