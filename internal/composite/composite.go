// Package composite turns the final sample buffer into a displayable image
// and hands it to a presentation surface.
package composite

import (
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"splat-renderer/internal/raster"
)

// Tone selects the transform from shaded color to display values.
type Tone string

// Supported tones.
const (
	ToneLinear Tone = "linear"
	ToneSRGB   Tone = "srgb"
)

// ParseTone resolves a tone name, case-insensitively.
func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(s)); t {
	case ToneLinear, ToneSRGB:
		return t, nil
	}
	return "", errors.Errorf("unknown tone %q", s)
}

// ParseClearColor parses a "#rrggbb" background color.
func ParseClearColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "clear color %q", hex)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Compositor writes the final color buffer to a surface.
type Compositor struct {
	Clear color.NRGBA
	Tone  Tone
}

// Compose converts src to an image at the buffer's resolution. Empty
// pixels become the clear color.
func (c *Compositor) Compose(src *raster.SampleBuffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, src.Width, src.Height))
	for i := 0; i < src.Len(); i++ {
		o := i * 4
		if !src.Occupied(i) {
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.Clear.R, c.Clear.G, c.Clear.B, c.Clear.A
			continue
		}
		rgb := src.Color[o : o+3]
		r, g, b := c.toDisplay(rgb[0], rgb[1], rgb[2])
		img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = r, g, b, 255
	}
	return img
}

func (c *Compositor) toDisplay(r, g, b float64) (uint8, uint8, uint8) {
	if c.Tone == ToneSRGB {
		return colorful.LinearRgb(r, g, b).Clamped().RGB255()
	}
	return colorful.Color{R: r, G: g, B: b}.Clamped().RGB255()
}

// Frame composes src and resamples it to width×height when the sizes
// differ.
func (c *Compositor) Frame(src *raster.SampleBuffer, width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrSurfaceSize, "%dx%d", width, height)
	}
	return Downsample(c.Compose(src), width, height), nil
}
