// Package config holds the viewer's render settings: a JSON file, CLI
// overrides and defaults.
package config

import (
	"encoding/json"
	"os"
	"runtime"

	"github.com/pkg/errors"

	"splat-renderer/internal/composite"
)

// Config holds all configurable render settings.
type Config struct {
	// Viewport
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	Supersample int     `json:"supersample"`
	Fov         float64 `json:"fov"`

	// Splatting
	PointSize int     `json:"point_size"`
	FarPlane  float64 `json:"far_plane"`

	// Pipeline stages. Pointers so an explicit 0 or false in the file
	// survives Resolve.
	HoleFillIterations  *int  `json:"hole_fill_iterations"`
	OcclusionIterations *int  `json:"occlusion_iterations"`
	Smooth              *bool `json:"smooth"`
	AntiAlias           *bool `json:"anti_alias"`

	DepthTolerance float64 `json:"depth_tolerance"`
	DepthGate      float64 `json:"depth_gate"`
	EdgeThreshold  float64 `json:"edge_threshold"`
	EdgeStrength   float64 `json:"edge_strength"`

	// Composite
	Tone       string `json:"tone"`
	ClearColor string `json:"clear_color"`

	// Session
	Workers         int     `json:"workers"`
	Frames          int     `json:"frames"`
	MoveSpeed       float64 `json:"move_speed"`
	LookSensitivity float64 `json:"look_sensitivity"`
}

// Defaults used by Resolve.
const (
	DefaultWidth               = 640
	DefaultHeight              = 480
	DefaultFov                 = 45.0
	DefaultFarPlane            = 100.0
	DefaultHoleFillIterations  = 2
	DefaultOcclusionIterations = 2
	DefaultDepthTolerance      = 1e-3
	DefaultDepthGate           = 0.02
	DefaultEdgeThreshold       = 0.05
	DefaultEdgeStrength        = 0.5
	DefaultTone                = "srgb"
	DefaultClearColor          = "#1a1a1f"
	DefaultFrames              = 120
	DefaultMoveSpeed           = 2.5
	DefaultLookSensitivity     = 0.1
)

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Width   int
	Height  int
	Frames  int
	Workers int
}

// Resolve applies flags and fills every unset field with its default.
// CLI flags take priority when non-zero.
func (c *Config) Resolve(flags Flags) {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.Supersample == 0 {
		c.Supersample = 1
	}
	if c.Fov == 0 {
		c.Fov = DefaultFov
	}
	if c.PointSize == 0 {
		c.PointSize = 1
	}
	if c.FarPlane == 0 {
		c.FarPlane = DefaultFarPlane
	}
	if c.HoleFillIterations == nil {
		c.HoleFillIterations = intPtr(DefaultHoleFillIterations)
	}
	if c.OcclusionIterations == nil {
		c.OcclusionIterations = intPtr(DefaultOcclusionIterations)
	}
	if c.Smooth == nil {
		c.Smooth = boolPtr(true)
	}
	if c.AntiAlias == nil {
		c.AntiAlias = boolPtr(true)
	}
	if c.DepthTolerance == 0 {
		c.DepthTolerance = DefaultDepthTolerance
	}
	if c.DepthGate == 0 {
		c.DepthGate = DefaultDepthGate
	}
	if c.EdgeThreshold == 0 {
		c.EdgeThreshold = DefaultEdgeThreshold
	}
	if c.EdgeStrength == 0 {
		c.EdgeStrength = DefaultEdgeStrength
	}
	if c.Tone == "" {
		c.Tone = DefaultTone
	}
	if c.ClearColor == "" {
		c.ClearColor = DefaultClearColor
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Frames == 0 {
		c.Frames = DefaultFrames
	}
	if c.MoveSpeed == 0 {
		c.MoveSpeed = DefaultMoveSpeed
	}
	if c.LookSensitivity == 0 {
		c.LookSensitivity = DefaultLookSensitivity
	}
}

// Validate reports the first setting a session cannot run with. Call it
// after Resolve.
func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return errors.Errorf("config: viewport %dx%d must be positive", c.Width, c.Height)
	case c.Supersample < 1:
		return errors.Errorf("config: supersample %d must be at least 1", c.Supersample)
	case c.PointSize < 1:
		return errors.Errorf("config: point size %d must be at least 1", c.PointSize)
	case c.FarPlane <= 0:
		return errors.Errorf("config: far plane %g must be positive", c.FarPlane)
	case c.HoleFillIterations != nil && *c.HoleFillIterations < 0:
		return errors.Errorf("config: hole fill iterations %d is negative", *c.HoleFillIterations)
	case c.OcclusionIterations != nil && *c.OcclusionIterations < 0:
		return errors.Errorf("config: occlusion iterations %d is negative", *c.OcclusionIterations)
	case c.DepthTolerance < 0 || c.DepthGate < 0 || c.EdgeThreshold < 0:
		return errors.New("config: depth tolerance, depth gate and edge threshold must not be negative")
	case c.EdgeStrength < 0 || c.EdgeStrength > 1:
		return errors.Errorf("config: edge strength %g outside [0, 1]", c.EdgeStrength)
	case c.Frames < 0:
		return errors.Errorf("config: frames %d is negative", c.Frames)
	}
	if _, err := composite.ParseTone(c.Tone); err != nil {
		return errors.Wrap(err, "config")
	}
	if _, err := composite.ParseClearColor(c.ClearColor); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// HoleFill returns the hole-filling iteration count.
func (c *Config) HoleFill() int {
	if c.HoleFillIterations == nil {
		return DefaultHoleFillIterations
	}
	return *c.HoleFillIterations
}

// Occlusion returns the occlusion iteration count.
func (c *Config) Occlusion() int {
	if c.OcclusionIterations == nil {
		return DefaultOcclusionIterations
	}
	return *c.OcclusionIterations
}

// SmoothEnabled reports whether the smoothing stage runs.
func (c *Config) SmoothEnabled() bool {
	return c.Smooth == nil || *c.Smooth
}

// AntiAliasEnabled reports whether the anti-aliasing stage runs.
func (c *Config) AntiAliasEnabled() bool {
	return c.AntiAlias == nil || *c.AntiAlias
}

// RenderSize is the sample buffer resolution for a surface size.
func (c *Config) RenderSize(width, height int) (int, int) {
	ss := c.Supersample
	if ss < 1 {
		ss = 1
	}
	return width * ss, height * ss
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
