package pipeline

import (
	"splat-renderer/internal/config"
	"splat-renderer/internal/pointcloud"
	"splat-renderer/internal/postprocess"
	"splat-renderer/internal/raster"
	"splat-renderer/internal/viewmatrix"
)

// ErrProgramBuild is returned when the shading program cannot be built.
var ErrProgramBuild = raster.ErrProgramBuild

// Options are the per-session stage settings.
type Options struct {
	HoleFillIterations  int
	OcclusionIterations int
	Smooth              bool
	AntiAlias           bool
	DepthTolerance      float64
	SmoothSigma         float64
	Edge                postprocess.EdgeOptions
	Splat               raster.SplatOptions
}

// OptionsFromConfig converts resolved settings to stage options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		HoleFillIterations:  cfg.HoleFill(),
		OcclusionIterations: cfg.Occlusion(),
		Smooth:              cfg.SmoothEnabled(),
		AntiAlias:           cfg.AntiAliasEnabled(),
		DepthTolerance:      cfg.DepthTolerance,
		SmoothSigma:         cfg.DepthGate,
		Edge: postprocess.EdgeOptions{
			Threshold: cfg.EdgeThreshold,
			Strength:  cfg.EdgeStrength,
			DepthGate: cfg.DepthGate,
		},
		Splat: raster.SplatOptions{PointSize: cfg.PointSize, FarPlane: cfg.FarPlane},
	}
}

// Stats are the counters of one rendered frame.
type Stats struct {
	Frame              int
	Splat              raster.SplatStats
	HolesFilled        int
	OcclusionsResolved int
	Smoothed           int
	EdgesResampled     int
	EmptyPixels        int // pixels the anti-alias low pass wrote empty
	Occupied           int
}

// Renderer runs the image-space stages over a ping-pong pair. Each stage
// reads the pair's source, writes its target and swaps.
type Renderer struct {
	passes *postprocess.Passes
	pair   *Pair
	prog   raster.Program
	opts   Options
	stats  Stats
}

// NewRenderer returns a renderer drawing into pair with prog.
func NewRenderer(passes *postprocess.Passes, pair *Pair, prog raster.Program, opts Options) *Renderer {
	return &Renderer{passes: passes, pair: pair, prog: prog, opts: opts}
}

// Options returns the stage settings.
func (r *Renderer) Options() Options {
	return r.opts
}

// Program returns the shading program.
func (r *Renderer) Program() raster.Program {
	return r.prog
}

// Pair returns the buffers being rendered into.
func (r *Renderer) Pair() *Pair {
	return r.pair
}

// Output returns the buffer holding the latest stage output.
func (r *Renderer) Output() *raster.SampleBuffer {
	return r.pair.Source()
}

// Stats returns the counters of the latest frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Rasterize starts a frame by splatting cloud into the target.
func (r *Renderer) Rasterize(cloud *pointcloud.Cloud, xf viewmatrix.Transform) {
	r.stats = Stats{Frame: r.stats.Frame + 1}
	r.stats.Splat = raster.Splat(r.pair.Target(), cloud, xf, r.prog, r.opts.Splat)
	r.pair.Swap()
}

// FillHoles runs the configured hole-filling iterations.
func (r *Renderer) FillHoles() {
	for k := 0; k < r.opts.HoleFillIterations; k++ {
		r.stats.HolesFilled += r.passes.FillHoles(r.pair.Target(), r.pair.Source())
		r.pair.Swap()
	}
}

// ResolveOcclusion runs the configured occlusion iterations.
func (r *Renderer) ResolveOcclusion() {
	for k := 0; k < r.opts.OcclusionIterations; k++ {
		r.stats.OcclusionsResolved += r.passes.ResolveOcclusion(r.pair.Target(), r.pair.Source(), r.opts.DepthTolerance)
		r.pair.Swap()
	}
}

// Smooth runs the smoothing pass.
func (r *Renderer) Smooth() {
	r.stats.Smoothed = r.passes.Smooth(r.pair.Target(), r.pair.Source(), r.opts.SmoothSigma)
	r.pair.Swap()
}

// AntiAlias runs the edge resample then the empty-discarding low pass.
func (r *Renderer) AntiAlias() {
	r.stats.EdgesResampled = r.passes.EdgeResample(r.pair.Target(), r.pair.Source(), r.opts.Edge)
	r.pair.Swap()
	r.stats.EmptyPixels = r.passes.DiscardEmpty(r.pair.Target(), r.pair.Source())
	r.pair.Swap()
}

// Finish records the occupancy of the final output.
func (r *Renderer) Finish() {
	r.stats.Occupied = r.pair.Source().CountOccupied()
}
