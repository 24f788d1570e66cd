package composite

import (
	"image"
	"sync"

	"github.com/pkg/errors"
)

// Surface is the presentation target a frame is handed to.
type Surface interface {
	// Size returns the surface resolution in pixels.
	Size() (width, height int)
	// Present displays img; img is sized to the surface.
	Present(img *image.NRGBA) error
}

// ErrSurfaceSize is returned for a surface with no drawable area.
var ErrSurfaceSize = errors.New("surface has no drawable area")

// MemorySurface keeps the most recently presented frame in memory. It
// stands in for a window when running headless.
type MemorySurface struct {
	mu       sync.Mutex
	width    int
	height   int
	last     *image.NRGBA
	frames   int
	failWith error
}

// NewMemorySurface returns a width×height in-memory surface.
func NewMemorySurface(width, height int) *MemorySurface {
	return &MemorySurface{width: width, height: height}
}

// Size implements Surface.
func (s *MemorySurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Resize changes the surface resolution for subsequent frames.
func (s *MemorySurface) Resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

// FailWith makes every subsequent Present return err; nil restores
// normal operation.
func (s *MemorySurface) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Present implements Surface.
func (s *MemorySurface) Present(img *image.NRGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return errors.Errorf("frame is %dx%d, surface is %dx%d", b.Dx(), b.Dy(), s.width, s.height)
	}
	s.last = img
	s.frames++
	return nil
}

// Last returns the latest presented frame, nil before the first.
func (s *MemorySurface) Last() *image.NRGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Frames returns how many frames were presented.
func (s *MemorySurface) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}
