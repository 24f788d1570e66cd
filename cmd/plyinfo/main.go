// Package main prints a summary of PLY point cloud files.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"splat-renderer/internal/ply"
)

func main() {
	app := &cli.App{
		Name:      "plyinfo",
		Usage:     "print point count, stride, bounds and centroid of PLY files",
		ArgsUsage: "<file.ply>...",
		Action: func(c *cli.Context) error {
			if c.Args().Len() == 0 {
				_ = cli.ShowAppHelp(c)
				return cli.Exit("expected at least one PLY file", 1)
			}
			var failed bool
			for _, path := range c.Args().Slice() {
				if err := describe(path); err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed = true
				}
			}
			if failed {
				return cli.Exit("", 2)
			}
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func describe(path string) error {
	cloud, err := ply.Load(path)
	if err != nil {
		return errors.WithMessage(err, "load")
	}
	meta := cloud.MetaData()
	fmt.Printf("%s\n", path)
	fmt.Printf("  Points: %d, Stride: %s\n", cloud.Size(), cloud.Stride())
	if meta.Empty() {
		fmt.Println("  Bounds: empty")
		return nil
	}
	ext := meta.Extent()
	c := cloud.Centroid()
	fmt.Printf("  BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n",
		meta.MinX, meta.MaxX, meta.MinY, meta.MaxY, meta.MinZ, meta.MaxZ)
	fmt.Printf("  Size: %.3f x %.3f x %.3f\n", ext.X, ext.Y, ext.Z)
	fmt.Printf("  Centroid: (%.3f, %.3f, %.3f)\n", c.X, c.Y, c.Z)
	return nil
}
