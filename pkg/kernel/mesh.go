package kernel

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeebo/xxh3"
)

// Face is an ordered polygon of vertex indices into its mesh.
// A valid face has at least three indices.
type Face []uint32

// Mesh is an indexed polygon mesh.
// Vertices are flat: 3 floats per vertex (x,y,z) in local space.
// Transform places the local coordinates in the world.
type Mesh struct {
	Vertices  []float64  `json:"vertices"`  // [x0,y0,z0, x1,y1,z1, ...]
	Faces     []Face     `json:"faces"`     // [[i0,i1,i2], [i0,i1,i2,i3], ...]
	Transform mgl64.Mat4 `json:"transform"` // column-major local-to-world
	Name      string     `json:"name"`      // object name in the host scene
}

// NewMesh returns an empty named mesh with an identity transform.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:      name,
		Transform: mgl64.Ident4(),
	}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// TriangleCount returns the number of triangles after fan triangulation.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, f := range m.Faces {
		if len(f) >= 3 {
			n += len(f) - 2
		}
	}
	return n
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns the local position of vertex i.
func (m *Mesh) Vertex(i int) mgl64.Vec3 {
	return mgl64.Vec3{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
}

// WorldVertex returns the position of vertex i with Transform applied.
func (m *Mesh) WorldVertex(i int) mgl64.Vec3 {
	return m.Transform.Mul4x1(m.Vertex(i).Vec4(1)).Vec3()
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v mgl64.Vec3) uint32 {
	m.Vertices = append(m.Vertices, v[0], v[1], v[2])
	return uint32(m.VertexCount() - 1)
}

// AddFace appends a face built from the given vertex indices.
func (m *Mesh) AddFace(indices ...uint32) {
	f := make(Face, len(indices))
	copy(f, indices)
	m.Faces = append(m.Faces, f)
}

// Triangles returns fan-triangulated vertex indices, 3 per triangle.
func (m *Mesh) Triangles() []uint32 {
	out := make([]uint32, 0, m.TriangleCount()*3)
	for _, f := range m.Faces {
		for i := 1; i+1 < len(f); i++ {
			out = append(out, f[0], f[i], f[i+1])
		}
	}
	return out
}

// Bounds returns the local-space axis-aligned bounding box.
func (m *Mesh) Bounds() (min, max mgl64.Vec3) {
	return m.bounds(m.Vertex)
}

// WorldBounds returns the world-space axis-aligned bounding box.
func (m *Mesh) WorldBounds() (min, max mgl64.Vec3) {
	return m.bounds(m.WorldVertex)
}

func (m *Mesh) bounds(at func(int) mgl64.Vec3) (min, max mgl64.Vec3) {
	n := m.VertexCount()
	if n == 0 {
		return min, max
	}
	min = at(0)
	max = min
	for i := 1; i < n; i++ {
		v := at(i)
		for k := 0; k < 3; k++ {
			min[k] = math.Min(min[k], v[k])
			max[k] = math.Max(max[k], v[k])
		}
	}
	return min, max
}

// Validate checks that every face has at least three indices and that
// every index is within the vertex array.
func (m *Mesh) Validate() error {
	if m.VertexCount() == 0 || len(m.Faces) == 0 {
		return fmt.Errorf("mesh %q is empty (%d vertices, %d faces)", m.Name, m.VertexCount(), len(m.Faces))
	}
	if len(m.Vertices)%3 != 0 {
		return fmt.Errorf("mesh %q: vertex array length %d is not a multiple of 3", m.Name, len(m.Vertices))
	}
	n := uint32(m.VertexCount())
	for fi, f := range m.Faces {
		if len(f) < 3 {
			return fmt.Errorf("mesh %q: face %d has %d vertices, need at least 3", m.Name, fi, len(f))
		}
		for _, idx := range f {
			if idx >= n {
				return fmt.Errorf("mesh %q: face %d references vertex %d, mesh has %d", m.Name, fi, idx, n)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Vertices:  make([]float64, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Transform: m.Transform,
		Name:      m.Name,
	}
	copy(c.Vertices, m.Vertices)
	for i, f := range m.Faces {
		c.Faces[i] = append(Face(nil), f...)
	}
	return c
}

// Fingerprint hashes the vertex positions and face indices. Two meshes
// with the same geometry in the same order share a fingerprint; the name
// and transform are not included.
func (m *Mesh) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, v := range m.Vertices {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}
	for _, f := range m.Faces {
		binary.LittleEndian.PutUint32(buf[:4], uint32(len(f)))
		_, _ = h.Write(buf[:4])
		for _, idx := range f {
			binary.LittleEndian.PutUint32(buf[:4], idx)
			_, _ = h.Write(buf[:4])
		}
	}
	return h.Sum64()
}

// Merge appends the geometry of other into m. The vertices of other are
// brought into m's local space through both transforms.
func (m *Mesh) Merge(other *Mesh) {
	inv := m.Transform.Inv()
	toLocal := inv.Mul4(other.Transform)
	base := uint32(m.VertexCount())
	for i := 0; i < other.VertexCount(); i++ {
		m.AddVertex(toLocal.Mul4x1(other.Vertex(i).Vec4(1)).Vec3())
	}
	for _, f := range other.Faces {
		nf := make(Face, len(f))
		for i, idx := range f {
			nf[i] = idx + base
		}
		m.Faces = append(m.Faces, nf)
	}
}
