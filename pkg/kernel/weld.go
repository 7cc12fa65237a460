package kernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Welder builds an indexed mesh from triangle soup, merging vertices whose
// positions agree after snapping to a grid of the given tolerance.
type Welder struct {
	mesh      *Mesh
	tolerance float64
	index     map[[3]int64]uint32
}

// DefaultWeldTolerance is the grid size used to match coincident vertices.
const DefaultWeldTolerance = 1e-6

// NewWelder returns a welder filling a fresh mesh with the given name.
// A non-positive tolerance selects DefaultWeldTolerance.
func NewWelder(name string, tolerance float64) *Welder {
	if tolerance <= 0 {
		tolerance = DefaultWeldTolerance
	}
	return &Welder{
		mesh:      NewMesh(name),
		tolerance: tolerance,
		index:     make(map[[3]int64]uint32),
	}
}

// Vertex returns the index of the welded vertex at p, adding it if new.
func (w *Welder) Vertex(p mgl64.Vec3) uint32 {
	key := [3]int64{
		int64(math.Round(p[0] / w.tolerance)),
		int64(math.Round(p[1] / w.tolerance)),
		int64(math.Round(p[2] / w.tolerance)),
	}
	if idx, ok := w.index[key]; ok {
		return idx
	}
	idx := w.mesh.AddVertex(p)
	w.index[key] = idx
	return idx
}

// Polygon adds a face through the given positions. Faces that collapse to
// fewer than three distinct vertices after welding are dropped; the return
// value reports whether the face was kept.
func (w *Welder) Polygon(points ...mgl64.Vec3) bool {
	face := make(Face, 0, len(points))
	seen := make(map[uint32]bool, len(points))
	for _, p := range points {
		idx := w.Vertex(p)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		face = append(face, idx)
	}
	if len(face) < 3 {
		return false
	}
	w.mesh.Faces = append(w.mesh.Faces, face)
	return true
}

// Mesh returns the mesh built so far.
func (w *Welder) Mesh() *Mesh {
	return w.mesh
}
