package loader

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeOBJQuadAndNegativeIndices(t *testing.T) {
	decoded, err := DecodeOBJ("tank", "Resources/Tank.obj", []byte(cubeOBJ), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tank.mtl"}, decoded.MaterialLibs)
	meshes := decoded.Model.Meshes()
	require.Len(t, meshes, 2)

	hull := meshes[0]
	assert.Equal(t, "Hull_0", hull.Name)
	assert.Len(t, hull.Indices, 6, "quad fans into two triangles")
	assert.Len(t, hull.Vertices, 4, "corners with normals are shared")
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, hull.Indices)
	assert.Equal(t, [2]float32{1, 1}, hull.Vertices[2].TexCoord)

	tracks := meshes[1]
	assert.Equal(t, "Tracks_0", tracks.Name)
	require.Len(t, tracks.Vertices, 3)
	assert.Equal(t, [3]float32{-1, -1, 0}, tracks.Vertices[0].Position)
	assert.Equal(t, [3]float32{1, 1, 0}, tracks.Vertices[2].Position)
	for _, v := range tracks.Vertices {
		assert.InDeltaSlice(t, []float32{0, 0, 1}, v.Normal[:], 1e-6, "flat normal")
	}

	bounds := decoded.Model.Bounds()
	assert.Equal(t, [3]float32{-1, -1, 0}, bounds.Min)
	assert.Equal(t, [3]float32{1, 1, 0}, bounds.Max)
}

func TestDecodeOBJWithoutLibraryUsesDefaultMaterialSilently(t *testing.T) {
	decoded, err := DecodeOBJ("tank", "Tank.obj", []byte(cubeOBJ), nil)
	require.NoError(t, err)

	assert.Empty(t, decoded.Warnings)
	for _, m := range decoded.Model.Meshes() {
		assert.Equal(t, defaultMaterialColor, m.Material.Color())
	}
}

func TestDecodeOBJUndefinedMaterialWarns(t *testing.T) {
	lib, err := DecodeMTL("Resources/Lowpoly_tree_sample.mtl", []byte(treeMTL))
	require.NoError(t, err)

	src := treeOBJ + "usemtl Missing\nf 2 3 4\n"
	decoded, err := DecodeOBJ("tree", "Resources/Lowpoly_tree_sample.obj", []byte(src), lib)
	require.NoError(t, err)

	meshes := decoded.Model.Meshes()
	require.Len(t, meshes, 3, "one mesh per material run")
	assert.Equal(t, "Bark", meshes[0].Material.Name())
	assert.Equal(t, "Leaves", meshes[1].Material.Name())
	assert.Equal(t, "default", meshes[2].Material.Name())
	require.Len(t, decoded.Warnings, 1)
	assert.Contains(t, decoded.Warnings[0], "could not find material: Missing")
}

func TestDecodeOBJUnsupportedKeywordWarns(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nl 1 2\nf 1 2 3\n"
	decoded, err := DecodeOBJ("line", "line.obj", []byte(src), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"obj(4): field not supported: l"}, decoded.Warnings)
	assert.Equal(t, "line_0", decoded.Model.Meshes()[0].Name)
}

func TestDecodeOBJErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		line int
	}{
		"zero index":    {src: "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", line: 4},
		"out of range":  {src: "v 0 0 0\nv 1 0 0\nf 1 2 3\n", line: 3},
		"bad float":     {src: "v 0 zero 0\n", line: 1},
		"short face":    {src: "v 0 0 0\nv 1 0 0\nf 1 2\n", line: 3},
		"relative past": {src: "v 0 0 0\nf -1 -2 -3\n", line: 2},
		"bad uv index":  {src: "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/x 2 3\n", line: 4},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeOBJ("bad", "bad.obj", []byte(tc.src), nil)
			var perr *ParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tc.line, perr.Line)
			assert.Equal(t, "bad.obj", perr.Path)
		})
	}
}

func TestDecodeOBJWithoutFacesFails(t *testing.T) {
	_, err := DecodeOBJ("empty", "empty.obj", []byte("v 0 0 0\n"), nil)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.EqualError(t, perr.Err, "no faces")
}
