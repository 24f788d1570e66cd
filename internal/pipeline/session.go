// Package pipeline drives a viewer session: it owns the camera and the
// sample buffers, and runs the render stages in order once per frame.
package pipeline

import (
	"context"
	"image/color"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"splat-renderer/internal/batch"
	"splat-renderer/internal/camera"
	"splat-renderer/internal/composite"
	"splat-renderer/internal/config"
	"splat-renderer/internal/input"
	"splat-renderer/internal/pointcloud"
	"splat-renderer/internal/postprocess"
	"splat-renderer/internal/raster"
)

// State is the stage a session is in.
type State int

// Session states in frame order. Fail is terminal.
const (
	Idle State = iota
	Rasterize
	HoleFill
	OcclusionResolve
	Smooth
	AntiAlias
	Composite
	Present
	Fail
)

var stateNames = [...]string{
	Idle:             "idle",
	Rasterize:        "rasterize",
	HoleFill:         "hole-fill",
	OcclusionResolve: "occlusion-resolve",
	Smooth:           "smooth",
	AntiAlias:        "anti-alias",
	Composite:        "composite",
	Present:          "present",
	Fail:             "fail",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// resizer is implemented by surfaces the session may resize itself.
type resizer interface {
	Resize(width, height int)
}

// Session renders one cloud for the lifetime of a viewer.
type Session struct {
	logger golog.Logger
	cfg    config.Config
	cloud  *pointcloud.Cloud
	camera *camera.Camera
	pool   *batch.Pool
	light  raster.LightConfig

	compositor composite.Compositor
	renderer   *Renderer
	resources  arena

	state         State
	failure       error
	frames        int
	presentErrors int
}

// NewSession returns an idle session for cloud. cfg must be resolved.
func NewSession(cfg config.Config, cloud *pointcloud.Cloud, logger golog.Logger) *Session {
	return &Session{
		logger: logger,
		cfg:    cfg,
		cloud:  cloud,
		camera: camera.Framing(cloud.MetaData(), cfg.Fov, cfg.MoveSpeed, cfg.LookSensitivity),
		pool:   batch.NewPool(cfg.Workers),
		light:  raster.DefaultLightConfig(),
	}
}

// SetLight replaces the lighting used when the program is built. It has no
// effect after Start.
func (s *Session) SetLight(light raster.LightConfig) {
	s.light = light
}

// Camera returns the session camera.
func (s *Session) Camera() *camera.Camera {
	return s.camera
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Failure returns the error that put the session in Fail, if any.
func (s *Session) Failure() error {
	return s.failure
}

// Frames returns how many frames were polled.
func (s *Session) Frames() int {
	return s.frames
}

// PresentErrors returns how many frames the surface refused.
func (s *Session) PresentErrors() int {
	return s.presentErrors
}

// Stats returns the counters of the latest rendered frame.
func (s *Session) Stats() Stats {
	if s.renderer == nil {
		return Stats{}
	}
	return s.renderer.Stats()
}

// Output returns the final sample buffer of the latest frame, nil when
// nothing can be drawn.
func (s *Session) Output() *raster.SampleBuffer {
	if s.renderer == nil {
		return nil
	}
	return s.renderer.Output()
}

// Start acquires everything the session draws with: the surface size, the
// sample buffers and the shading program. Any failure is logged once and
// leaves the session in Fail for good; it is returned for callers that
// want it, but Step keeps working.
func (s *Session) Start(surface composite.Surface) error {
	if s.state == Fail {
		return s.failure
	}
	if err := s.setup(surface); err != nil {
		s.fail(err)
		return err
	}
	w, h := s.renderer.Pair().Size()
	s.logger.Infow("session started",
		"points", s.cloud.Size(),
		"stride", s.cloud.Stride(),
		"program", s.renderer.Program().Variant(),
		"resolution", [2]int{w, h},
		"workers", s.pool.Workers())
	return nil
}

func (s *Session) setup(surface composite.Surface) error {
	tone, err := composite.ParseTone(s.cfg.Tone)
	if err != nil {
		return err
	}
	bg, err := composite.ParseClearColor(s.cfg.ClearColor)
	if err != nil {
		return err
	}
	s.compositor = composite.Compositor{Clear: bg, Tone: tone}

	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		return errors.Wrapf(composite.ErrSurfaceSize, "%dx%d", w, h)
	}
	pair, err := s.allocate(w, h)
	if err != nil {
		return err
	}
	prog, err := raster.BuildProgram(s.cloud.Stride(), s.light)
	if err != nil {
		return err
	}
	s.renderer = NewRenderer(postprocess.New(s.pool), pair, prog, OptionsFromConfig(&s.cfg))
	return nil
}

// allocate sets up a pair at the render resolution for a surface size and
// registers it with the arena.
func (s *Session) allocate(w, h int) (*Pair, error) {
	rw, rh := s.cfg.RenderSize(w, h)
	pair, err := NewPair(rw, rh)
	if err != nil {
		return nil, err
	}
	s.resources.add("sample buffers", pair.Release)
	return pair, nil
}

func (s *Session) fail(err error) {
	s.state = Fail
	s.failure = err
	s.renderer = nil
	if cerr := s.resources.Close(); cerr != nil {
		s.logger.Errorw("releasing partial setup", "error", cerr)
	}
	s.logger.Errorw("rendering disabled", "error", err)
}

// Step runs one frame: poll input, update the camera and, unless the
// session failed, render and present. It returns false once the input
// source asks to quit.
func (s *Session) Step(src input.Source, surface composite.Surface) bool {
	f := src.Poll()
	if f.Quit {
		return false
	}
	s.frames++
	s.camera.Update(f)
	if s.state == Fail {
		return true
	}
	if s.renderer == nil && s.Start(surface) != nil {
		return true
	}
	if f.Resize != nil {
		if err := s.resize(*f.Resize, surface); err != nil {
			s.fail(err)
			return true
		}
	}
	s.render(surface)
	return true
}

// resize reallocates the sample buffers before anything is drawn at the
// new size. The buffers follow what the surface reports afterwards, which
// for a surface that cannot be resized is its old size.
func (s *Session) resize(size input.Size, surface composite.Surface) error {
	if size.Width <= 0 || size.Height <= 0 {
		return errors.Wrapf(composite.ErrSurfaceSize, "%dx%d", size.Width, size.Height)
	}
	if r, ok := surface.(resizer); ok {
		r.Resize(size.Width, size.Height)
	}
	w, h := surface.Size()
	if w != size.Width || h != size.Height {
		s.logger.Warnw("surface did not take the requested size",
			"requested", [2]int{size.Width, size.Height}, "surface", [2]int{w, h})
	}
	if w <= 0 || h <= 0 {
		return errors.Wrapf(composite.ErrSurfaceSize, "%dx%d", w, h)
	}
	if err := s.resources.Close(); err != nil {
		s.logger.Warnw("releasing sample buffers", "error", err)
	}
	pair, err := s.allocate(w, h)
	if err != nil {
		return err
	}
	s.renderer.pair = pair
	rw, rh := pair.Size()
	s.logger.Debugw("resized", "surface", [2]int{w, h}, "resolution", [2]int{rw, rh})
	return nil
}

func (s *Session) render(surface composite.Surface) {
	r := s.renderer
	opts := r.Options()
	w, h := r.Pair().Size()

	s.state = Rasterize
	r.Rasterize(s.cloud, s.camera.Transform(w, h))
	if opts.HoleFillIterations > 0 {
		s.state = HoleFill
		r.FillHoles()
	}
	if opts.OcclusionIterations > 0 {
		s.state = OcclusionResolve
		r.ResolveOcclusion()
	}
	if opts.Smooth {
		s.state = Smooth
		r.Smooth()
	}
	if opts.AntiAlias {
		s.state = AntiAlias
		r.AntiAlias()
	}
	r.Finish()

	s.state = Composite
	sw, sh := surface.Size()
	img, err := s.compositor.Frame(r.Output(), sw, sh)
	if err == nil {
		s.state = Present
		err = surface.Present(img)
	}
	if err != nil {
		s.presentErrors++
		s.logger.Warnw("present failed", "frame", r.Stats().Frame, "error", err)
	}
	if s.logger.Desugar().Core().Enabled(zapcore.DebugLevel) {
		s.logFrame(r.Stats())
	}
	s.state = Idle
}

func (s *Session) logFrame(st Stats) {
	s.logger.Debugw("frame",
		"frame", st.Frame,
		"splatted", st.Splat.Written,
		"backFacing", st.Splat.BackFacing,
		"clipped", st.Splat.Clipped,
		"holesFilled", st.HolesFilled,
		"occlusionsResolved", st.OcclusionsResolved,
		"edges", st.EdgesResampled,
		"occupied", st.Occupied)
}

// Run starts the session and steps it until the input source quits or ctx
// is cancelled; both are only checked between frames. It returns the setup
// failure when the session ended in Fail.
func (s *Session) Run(ctx context.Context, src input.Source, surface composite.Surface) error {
	// Start logs its own failure; a failed session still polls input.
	_ = s.Start(surface)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !s.Step(src, surface) {
			break
		}
	}
	s.logger.Infow("session ended", "frames", s.frames, "state", s.state, "presentErrors", s.presentErrors)
	if s.state == Fail {
		return s.failure
	}
	return nil
}

// Close releases every buffer the session holds.
func (s *Session) Close() error {
	s.renderer = nil
	return s.resources.Close()
}

// ClearColor returns the composite background.
func (s *Session) ClearColor() color.NRGBA {
	return s.compositor.Clear
}
