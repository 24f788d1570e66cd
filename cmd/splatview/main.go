// Package main is the splatview point cloud viewer. Without a window system
// it renders an orbit around the cloud into an in-memory surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"splat-renderer/internal/composite"
	"splat-renderer/internal/config"
	"splat-renderer/internal/input"
	"splat-renderer/internal/mathutil"
	"splat-renderer/internal/pipeline"
	"splat-renderer/internal/ply"
)

// Exit codes.
const (
	exitUsage       = 1
	exitInvalidData = 2
	exitIO          = 3
	exitLoad        = 4
	exitRenderFail  = 5
)

const (
	flagConfig  = "config"
	flagWidth   = "width"
	flagHeight  = "height"
	flagFrames  = "frames"
	flagWorkers = "workers"
	flagDebug   = "debug"
)

// frameTime is the simulated time step of a headless frame, in seconds.
const frameTime = 1.0 / 60

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "splatview",
		Usage:     "render a PLY point cloud as a closed surface",
		ArgsUsage: "<file.ply>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: flagConfig, Aliases: []string{"c"}, Usage: "load settings from `FILE`"},
			&cli.IntFlag{Name: flagWidth, Usage: "viewport width in pixels"},
			&cli.IntFlag{Name: flagHeight, Usage: "viewport height in pixels"},
			&cli.IntFlag{Name: flagFrames, Usage: "frames to render before exiting"},
			&cli.IntFlag{Name: flagWorkers, Usage: "worker goroutines per stage (default: NumCPU)"},
			&cli.BoolFlag{Name: flagDebug, Usage: "enable debug logging"},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("expected exactly one PLY file", exitUsage)
	}

	logger := golog.NewDevelopmentLogger("splatview")
	if c.Bool(flagDebug) {
		logger = golog.NewDebugLogger("splatview")
	}

	var cfg config.Config
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cli.Exit(err, exitUsage)
		}
	}
	cfg.Resolve(config.Flags{
		Width:   c.Int(flagWidth),
		Height:  c.Int(flagHeight),
		Frames:  c.Int(flagFrames),
		Workers: c.Int(flagWorkers),
	})
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, exitUsage)
	}

	path := c.Args().First()
	cloud, err := ply.Load(path)
	if err != nil {
		return cli.Exit(err, loadExitCode(err))
	}
	logger.Infow("loaded", "path", path, "points", cloud.Size(), "stride", cloud.Stride())

	session := pipeline.NewSession(cfg, cloud, logger)
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warnw("closing session", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	surface := composite.NewMemorySurface(cfg.Width, cfg.Height)
	var center r3.Vector
	if meta := cloud.MetaData(); !meta.Empty() {
		center = meta.Center()
	}
	src := orbitAround(session, center, &cfg)
	if err := session.Run(ctx, src, surface); err != nil {
		if session.State() == pipeline.Fail {
			return cli.Exit(errors.Wrap(err, "rendering failed"), exitRenderFail)
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
	}
	st := session.Stats()
	logger.Infow("done",
		"frames", session.Frames(),
		"presented", surface.Frames(),
		"presentErrors", session.PresentErrors(),
		"occupied", st.Occupied)
	return nil
}

// loadExitCode maps a loader error to the process exit code.
func loadExitCode(err error) int {
	switch {
	case errors.Is(err, ply.ErrInvalidData):
		return exitInvalidData
	case errors.Is(err, ply.ErrIO):
		return exitIO
	default:
		return exitLoad
	}
}

// orbitAround returns an input source that circles the session camera once
// around center over the configured number of frames.
func orbitAround(session *pipeline.Session, center r3.Vector, cfg *config.Config) *input.Orbit {
	frames := cfg.Frames
	if frames < 1 {
		frames = 1
	}
	step := 360.0 / float64(frames)
	radius := session.Camera().Position.Sub(mathutil.FromR3(center)).Len()
	// Arc length per frame, as a fraction of the distance one full axis
	// covers in a frame.
	strafe := radius * mgl64.DegToRad(step) / (cfg.MoveSpeed * frameTime)
	return &input.Orbit{
		Frames:    frames,
		Strafe:    strafe,
		Yaw:       -step / cfg.LookSensitivity,
		DeltaTime: frameTime,
	}
}
