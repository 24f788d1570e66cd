// Package ply loads oriented point clouds from ASCII PLY files.
package ply

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/chenzhekl/goply"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"splat-renderer/internal/pointcloud"
)

var (
	// ErrInvalidData is returned when the file is malformed or lacks the
	// required vertex properties.
	ErrInvalidData = errors.New("invalid point data")
	// ErrIO is returned when the file cannot be opened or read.
	ErrIO = errors.New("point data i/o failure")
)

const vertexElement = "vertex"

var (
	requiredProps = []string{"x", "y", "z", "nx", "ny", "nz"}
	colorProps    = []string{"red", "green", "blue"}
)

// Load reads path and returns its vertices as a cloud. The stride is
// StrideColor when the vertex element declares red, green and blue, and
// StrideNoColor otherwise.
func Load(path string) (*pointcloud.Cloud, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrIO, "read %s: %v", path, err)
	}
	cloud, err := Decode(raw)
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}
	return cloud, nil
}

// Decode parses an in-memory PLY document.
func Decode(raw []byte) (*pointcloud.Cloud, error) {
	doc, hdr, err := normalize(raw)
	if err != nil {
		return nil, err
	}
	for _, name := range requiredProps {
		if !hdr.props[name] {
			return nil, errors.Wrapf(ErrInvalidData, "vertex property %q missing", name)
		}
	}
	stride := pointcloud.StrideColor
	for _, name := range colorProps {
		if !hdr.props[name] {
			stride = pointcloud.StrideNoColor
		}
	}

	elems, err := parse(doc)
	if err != nil {
		return nil, err
	}
	if len(elems) != hdr.count {
		return nil, errors.Wrapf(ErrInvalidData, "header declares %d vertices, read %d", hdr.count, len(elems))
	}

	points := make([]pointcloud.Point, len(elems))
	for i := range elems {
		p, err := toPoint(elems[i], stride)
		if err != nil {
			return nil, errors.WithMessagef(err, "vertex %d", i)
		}
		points[i] = p
	}
	return pointcloud.New(points, stride)
}

// parse runs goply, which reports malformed input by panicking.
func parse(doc []byte) (elems []goply.PlyElement, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrInvalidData, "%v", r)
		}
	}()
	ply := goply.New(bytes.NewReader(doc))
	return ply.Elements(vertexElement), nil
}

// header is what the loader needs to know before the body is parsed.
type header struct {
	props map[string]bool // vertex property names
	count int             // declared vertex count
}

// typeNames maps the sized PLY type names to the names goply reads.
var typeNames = map[string]string{
	"int8":    "char",
	"uint8":   "uchar",
	"int16":   "short",
	"uint16":  "ushort",
	"int32":   "int",
	"uint32":  "uint",
	"float32": "float",
	"float64": "double",
}

func canonicalType(t string) string {
	if c, ok := typeNames[t]; ok {
		return c
	}
	return t
}

// normalize validates the header and rewrites the document into the form
// goply reads: sized type names become their classic names, obj_info
// lines are dropped and blank lines are removed everywhere, including
// after the body. goply keeps its schema private, so the vertex property
// names and count are collected here.
func normalize(raw []byte) ([]byte, header, error) {
	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)

	var out bytes.Buffer
	out.Grow(len(raw))
	hdr := header{props: map[string]bool{}, count: -1}
	sawMagic, inHeader, inVertex := false, true, false
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !inHeader {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		f := strings.Fields(line)
		if !sawMagic {
			if f[0] != "ply" {
				return nil, hdr, errors.Wrap(ErrInvalidData, "missing ply magic")
			}
			sawMagic = true
			out.WriteString("ply\n")
			continue
		}
		switch f[0] {
		case "element":
			inVertex = len(f) == 3 && f[1] == vertexElement
			if inVertex {
				if _, err := fmt.Sscan(f[2], &hdr.count); err != nil || hdr.count < 0 {
					return nil, hdr, errors.Wrapf(ErrInvalidData, "bad vertex count %q", f[2])
				}
			}
		case "property":
			switch {
			case len(f) == 5 && f[1] == "list":
				f[2], f[3] = canonicalType(f[2]), canonicalType(f[3])
			case len(f) == 3:
				f[1] = canonicalType(f[1])
			default:
				return nil, hdr, errors.Wrapf(ErrInvalidData, "bad property line %q", line)
			}
			if inVertex {
				hdr.props[f[len(f)-1]] = true
			}
		case "obj_info":
			continue
		case "end_header":
			if hdr.count < 0 {
				return nil, hdr, errors.Wrap(ErrInvalidData, "no vertex element")
			}
			inHeader = false
		}
		out.WriteString(strings.Join(f, " "))
		out.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, hdr, errors.Wrapf(ErrInvalidData, "scan: %v", err)
	}
	if !sawMagic {
		return nil, hdr, errors.Wrap(ErrInvalidData, "missing ply magic")
	}
	if inHeader {
		return nil, hdr, errors.Wrap(ErrInvalidData, "unterminated header")
	}
	return out.Bytes(), hdr, nil
}

func toPoint(e goply.PlyElement, stride pointcloud.Stride) (pointcloud.Point, error) {
	var v [9]float64
	for i, name := range requiredProps {
		f, err := scalar(e.Property(name), false)
		if err != nil {
			return pointcloud.Point{}, errors.WithMessage(err, name)
		}
		v[i] = f
	}
	p := pointcloud.Point{
		Position: r3.Vector{X: v[0], Y: v[1], Z: v[2]},
		Normal:   r3.Vector{X: v[3], Y: v[4], Z: v[5]},
	}
	if stride.HasColor() {
		for i, name := range colorProps {
			f, err := scalar(e.Property(name), true)
			if err != nil {
				return pointcloud.Point{}, errors.WithMessage(err, name)
			}
			p.Color[i] = f
		}
	}
	return p, nil
}

// scalar converts a goply property value. Integer colors are scaled from
// their type's range to [0, 1].
func scalar(v interface{}, color bool) (float64, error) {
	switch t := v.(type) {
	case float32:
		return float64(t), nil
	case float64:
		return t, nil
	case uint8:
		if color {
			return float64(t) / 255, nil
		}
		return float64(t), nil
	case uint16:
		if color {
			return float64(t) / 65535, nil
		}
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	default:
		return 0, errors.Wrapf(ErrInvalidData, "unsupported property value %T", v)
	}
}
