package ply

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"splat-renderer/internal/pointcloud"
)

const plainPLY = `ply
format ascii 1.0
comment three oriented points
element vertex 3
property float x
property float y
property float z
property float nx
property float ny
property float nz
element face 1
property list uchar int vertex_indices
end_header
0 0 0 0 0 1
1 0 0 0 0 1
0 1 0.5 0 1 0
3 0 1 2
`

const colorPLY = `ply
format ascii 1.0
element vertex 2
property float x
property float y
property float z
property float nx
property float ny
property float nz
property uchar red
property uchar green
property uchar blue
end_header
0 0 0 0 0 1 255 0 51
1 2 3 1 0 0 0 255 0
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cloud.ply")
	test.That(t, os.WriteFile(path, []byte(content), 0o644), test.ShouldBeNil)
	return path
}

func TestLoadWithoutColor(t *testing.T) {
	c, err := Load(writeFile(t, plainPLY))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Size(), test.ShouldEqual, 3)
	test.That(t, c.Stride(), test.ShouldEqual, pointcloud.StrideNoColor)
	test.That(t, c.At(2).Position, test.ShouldResemble, r3.Vector{X: 0, Y: 1, Z: 0.5})
	test.That(t, c.At(2).Normal, test.ShouldResemble, r3.Vector{X: 0, Y: 1, Z: 0})
}

func TestLoadWithColor(t *testing.T) {
	c, err := Load(writeFile(t, colorPLY))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Size(), test.ShouldEqual, 2)
	test.That(t, c.Stride(), test.ShouldEqual, pointcloud.StrideColor)
	test.That(t, c.At(0).Color[0], test.ShouldEqual, 1.0)
	test.That(t, c.At(0).Color[2], test.ShouldAlmostEqual, 0.2, 1e-9)
	test.That(t, c.At(1).Color[1], test.ShouldEqual, 1.0)
	test.That(t, c.At(1).Position, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
}

func TestLoadPartialColorFallsBack(t *testing.T) {
	doc := `ply
format ascii 1.0
element vertex 1
property float x
property float y
property float z
property float nx
property float ny
property float nz
property uchar red
end_header
0 0 0 0 0 1 9
`
	c, err := Decode([]byte(doc))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Stride(), test.ShouldEqual, pointcloud.StrideNoColor)
	test.That(t, c.At(0).Color, test.ShouldResemble, [3]float64{})
}

func TestLoadSizedTypeNames(t *testing.T) {
	doc := `ply
format ascii 1.0
obj_info scanned in the lab
element vertex 2
property float32 x
property float32 y
property float32 z
property float64 nx
property float64 ny
property float64 nz
property uint8 red
property uint8 green
property uint8 blue
element face 1
property list uint8 int32 vertex_indices
end_header
0 0 0 0 0 1 255 0 0
1 1 1 0 1 0 0 0 255
2 0 1
`
	c, err := Decode([]byte(doc))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Size(), test.ShouldEqual, 2)
	test.That(t, c.Stride(), test.ShouldEqual, pointcloud.StrideColor)
	test.That(t, c.At(1).Normal, test.ShouldResemble, r3.Vector{Y: 1})
	test.That(t, c.At(1).Color, test.ShouldResemble, [3]float64{0, 0, 1})
}

func TestLoadBlankLines(t *testing.T) {
	doc := "ply\r\nformat ascii 1.0\r\n\r\nelement vertex 2\r\n" +
		"property float x\r\nproperty float y\r\nproperty float z\r\n" +
		"property float nx\r\nproperty float ny\r\nproperty float nz\r\n" +
		"end_header\r\n0 0 0 0 0 1\r\n\r\n1 2 3 0 0 1\r\n\r\n\r\n"
	c, err := Load(writeFile(t, doc))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Size(), test.ShouldEqual, 2)
	test.That(t, c.At(1).Position, test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})

	c, err = Decode([]byte(plainPLY + "\n\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Size(), test.ShouldEqual, 3)
}

func TestLoadMissingRequired(t *testing.T) {
	doc := `ply
format ascii 1.0
element vertex 1
property float x
property float y
property float z
end_header
0 0 0
`
	_, err := Load(writeFile(t, doc))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrInvalidData), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrIO), test.ShouldBeFalse)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"nx"`)
}

func TestLoadEmptyVertexElement(t *testing.T) {
	doc := `ply
format ascii 1.0
element vertex 0
property float x
property float y
property float z
property float nx
property float ny
property float nz
end_header
`
	c, err := Decode([]byte(doc))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Size(), test.ShouldEqual, 0)
	test.That(t, c.Stride(), test.ShouldEqual, pointcloud.StrideNoColor)
}

func TestLoadMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"empty":     "",
		"no magic":  "not a ply\n",
		"no vertex": "ply\nformat ascii 1.0\nend_header\n",
		"no end":    "ply\nformat ascii 1.0\nelement vertex 0\n",
		"extra rows": `ply
format ascii 1.0
element vertex 1
property float x
property float y
property float z
property float nx
property float ny
property float nz
end_header
0 0 0 0 0 1
1 1 1 0 0 1
`,
		"binary": `ply
format binary_little_endian 1.0
element vertex 1
property float x
property float y
property float z
property float nx
property float ny
property float nz
end_header
`,
		"truncated": `ply
format ascii 1.0
element vertex 2
property float x
property float y
property float z
property float nx
property float ny
property float nz
end_header
0 0 0 0 0 1
`,
		"not a number": `ply
format ascii 1.0
element vertex 1
property float x
property float y
property float z
property float nx
property float ny
property float nz
end_header
0 zero 0 0 0 1
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(doc))
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, errors.Is(err, ErrInvalidData), test.ShouldBeTrue)
		})
	}
}

func TestLoadIOFailure(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.ply"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrIO), test.ShouldBeTrue)
	test.That(t, errors.Is(err, ErrInvalidData), test.ShouldBeFalse)

	_, err = Load(t.TempDir())
	test.That(t, errors.Is(err, ErrIO), test.ShouldBeTrue)
}
