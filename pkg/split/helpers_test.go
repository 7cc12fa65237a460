package split_test

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/chazu/meshsplit/pkg/split"
)

// fakeHost is an in-memory host with a single active object.
type fakeHost struct {
	mode     split.Mode
	mesh     *kernel.Mesh
	parts    []*kernel.Mesh
	selected split.Selection
	modes    []split.Mode
	addErr   error
}

var _ split.Host = (*fakeHost)(nil)

func newFakeHost(m *kernel.Mesh) *fakeHost {
	return &fakeHost{mesh: m}
}

func (h *fakeHost) Mode() split.Mode { return h.mode }

func (h *fakeHost) SetMode(m split.Mode) error {
	h.mode = m
	h.modes = append(h.modes, m)
	return nil
}

func (h *fakeHost) ActiveMesh() (*kernel.Mesh, error) { return h.mesh, nil }

func (h *fakeHost) DeselectAll() { h.selected = split.Selection{} }

func (h *fakeHost) Select(sel split.Selection) error {
	h.selected = sel
	return nil
}

func (h *fakeHost) SeparateSelected() (*kernel.Mesh, error) {
	if h.mode != split.ModeEdit {
		return nil, errors.New("separate requires edit mode")
	}
	part, err := split.ExtractFaces(h.mesh, h.selected)
	if err != nil {
		return nil, err
	}
	if err := split.RemoveFaces(h.mesh, h.selected); err != nil {
		return nil, err
	}
	h.selected = split.Selection{}
	return part, h.AddPart(part)
}

func (h *fakeHost) AddPart(part *kernel.Mesh) error {
	if h.addErr != nil {
		return h.addErr
	}
	part.Name = fmt.Sprintf("%s.%03d", h.mesh.Name, len(h.parts)+1)
	h.parts = append(h.parts, part)
	return nil
}

// pieces returns every part plus the remainder.
func (h *fakeHost) pieces() []*kernel.Mesh {
	out := append([]*kernel.Mesh{}, h.parts...)
	if h.mesh.FaceCount() > 0 {
		out = append(out, h.mesh)
	}
	return out
}

// stripMesh returns a row of quads: cols columns of two vertices each at
// x = column, y = 0 and 1. Vertex 2c is (c,0,0), 2c+1 is (c,1,0), and
// quad c joins columns c and c+1.
func stripMesh(cols int) *kernel.Mesh {
	m := kernel.NewMesh("strip")
	for c := 0; c < cols; c++ {
		m.Vertices = append(m.Vertices, float64(c), 0, 0, float64(c), 1, 0)
	}
	for c := 0; c+1 < cols; c++ {
		a := uint32(2 * c)
		m.AddFace(a, a+2, a+3, a+1)
	}
	return m
}

// cubeMesh returns a unit cube with faces ordered bottom, front, right,
// back, left, top.
func cubeMesh() *kernel.Mesh {
	m := kernel.NewMesh("cube")
	m.Vertices = []float64{
		0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0,
		0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1,
	}
	m.Faces = []kernel.Face{
		{0, 3, 2, 1},
		{0, 1, 5, 4},
		{1, 2, 6, 5},
		{2, 3, 7, 6},
		{3, 0, 4, 7},
		{4, 5, 6, 7},
	}
	return m
}

func triangleMesh() *kernel.Mesh {
	m := kernel.NewMesh("tri")
	m.Vertices = []float64{0, 0, 0, 1, 0, 0, 0, 1, 0}
	m.AddFace(0, 1, 2)
	return m
}

// jitteredGrid returns an n x n grid of triangles with randomly perturbed
// vertex positions, including duplicated coordinates along every axis.
func jitteredGrid(n int, seed int64) *kernel.Mesh {
	r := rand.New(rand.NewSource(seed))
	m := kernel.NewMesh("grid")
	for j := 0; j <= n; j++ {
		for i := 0; i <= n; i++ {
			z := float64(r.Intn(3))
			m.Vertices = append(m.Vertices, float64(i)+r.Float64()*0.4, float64(j)+r.Float64()*0.4, z)
		}
	}
	row := uint32(n + 1)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			a := uint32(j)*row + uint32(i)
			m.AddFace(a, a+1, a+row+1)
			m.AddFace(a, a+row+1, a+row)
		}
	}
	return m
}

// faceKeys returns one key per face describing its world-space corners in
// order, so faces can be compared across meshes with different indexing.
func faceKeys(m *kernel.Mesh) []string {
	keys := make([]string, 0, m.FaceCount())
	for _, f := range m.Faces {
		k := ""
		for _, idx := range f {
			v := m.WorldVertex(int(idx))
			k += fmt.Sprintf("(%.6f,%.6f,%.6f)", v[0], v[1], v[2])
		}
		keys = append(keys, k)
	}
	return keys
}
