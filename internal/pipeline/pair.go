package pipeline

import (
	"github.com/pkg/errors"

	"splat-renderer/internal/raster"
)

// ErrBufferIncomplete is returned when the sample buffers for a resolution
// cannot be set up.
var ErrBufferIncomplete = errors.New("sample buffer set incomplete")

// Pair is the ping-pong buffer set. Every writing stage reads Source and
// writes Target, then the orchestrator calls Swap so the result becomes the
// next stage's source.
type Pair struct {
	bufs    [2]*raster.SampleBuffer
	current int
}

// NewPair allocates two cleared width×height buffers.
func NewPair(width, height int) (*Pair, error) {
	var p Pair
	for i := range p.bufs {
		b, err := raster.NewSampleBuffer(width, height)
		if err != nil {
			return nil, errors.Wrap(ErrBufferIncomplete, err.Error())
		}
		p.bufs[i] = b
	}
	return &p, nil
}

// Source returns the buffer holding the latest stage output.
func (p *Pair) Source() *raster.SampleBuffer {
	return p.bufs[p.current]
}

// Target returns the buffer the next stage writes.
func (p *Pair) Target() *raster.SampleBuffer {
	return p.bufs[1-p.current]
}

// Swap makes the target the new source.
func (p *Pair) Swap() {
	p.current = 1 - p.current
}

// Size returns the buffer resolution.
func (p *Pair) Size() (int, int) {
	return p.bufs[0].Width, p.bufs[0].Height
}

// Release drops both buffers. The pair must not be used afterwards.
func (p *Pair) Release() error {
	if p.bufs[0] == nil {
		return errors.New("sample buffers already released")
	}
	p.bufs = [2]*raster.SampleBuffer{}
	return nil
}
