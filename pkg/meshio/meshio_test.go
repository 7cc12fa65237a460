package meshio

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeOBJ = `# unit cube
o Cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
vn 0 0 -1
f 1//1 4//1 3//1 2//1
f 1/1 2/2 6/3 5/4
f -7 -6 -2 -3
f 3 4 8 7
f 4 1 5 8
s off
f 5 6 7 8
`

func TestReadOBJ(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(cubeOBJ))
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	assert.Equal(t, "Cube", m.Name)
	assert.Equal(t, 8, m.VertexCount())
	assert.Equal(t, 6, m.FaceCount())
	assert.Equal(t, kernel.Face{0, 3, 2, 1}, m.Faces[0])
	assert.Equal(t, kernel.Face{1, 2, 6, 5}, m.Faces[2], "negative indices are relative to the end")
}

func TestReadOBJErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"short vertex", "v 1 2\n"},
		{"bad float", "v 1 x 3\n"},
		{"short face", "v 0 0 0\nv 1 0 0\nf 1 2\n"},
		{"out of range", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n"},
		{"bad ref", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(tt.src))
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestWriteOBJAppliesTransform(t *testing.T) {
	m := kernel.NewMesh("tri")
	m.Vertices = []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	m.AddFace(0, 1, 2)
	m.Transform = mgl64.Translate3D(0, 0, 2.5)

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, m))
	assert.Equal(t, "o tri\nv 0 0 2.5\nv 1 0 2.5\nv 0 1 2.5\nf 1 2 3\n", buf.String())

	back, err := ReadOBJ(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Faces, back.Faces)
	assert.Equal(t, mgl64.Vec3{1, 0, 2.5}, back.Vertex(1))
}

func TestLoadSaveDispatch(t *testing.T) {
	dir := t.TempDir()
	src, err := ReadOBJ(strings.NewReader(cubeOBJ))
	require.NoError(t, err)
	src.Name = ""

	objPath := filepath.Join(dir, "box.obj")
	require.NoError(t, Save(objPath, src))
	loaded, err := Load(objPath)
	require.NoError(t, err)
	assert.Equal(t, "box", loaded.Name)
	assert.Equal(t, src.Fingerprint(), loaded.Fingerprint())

	_, err = Load(filepath.Join(dir, "box.fbx"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.True(t, errors.Is(Save(filepath.Join(dir, "box.ply"), src), ErrUnsupportedFormat))
}

func TestSTLRoundTripWelds(t *testing.T) {
	src, err := ReadOBJ(strings.NewReader(cubeOBJ))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cube.stl")
	require.NoError(t, Save(path, src))

	back, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, back.Validate())
	assert.Equal(t, "cube", back.Name)
	assert.Equal(t, 8, back.VertexCount(), "shared corners must be welded")
	assert.Equal(t, 12, back.FaceCount())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".STL")
	require.NoError(t, err)
	assert.Equal(t, FormatSTL, f)
	_, err = ParseFormat("ply")
	assert.Error(t, err)
}
