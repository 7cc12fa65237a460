package split

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// VertexRef is a vertex index with its local position.
type VertexRef struct {
	Index    uint32
	Position mgl64.Vec3
}

// FaceRef is a face index with its distinct vertex indices and centroid.
type FaceRef struct {
	Index    int
	Vertices []uint32
	Centroid mgl64.Vec3
}

// SortVerticesByAxis orders the vertices of m ascending along axis.
// Ties keep their original index order.
func SortVerticesByAxis(m *kernel.Mesh, axis Axis) []VertexRef {
	refs := make([]VertexRef, m.VertexCount())
	for i := range refs {
		refs[i] = VertexRef{Index: uint32(i), Position: m.Vertex(i)}
	}
	slices.SortStableFunc(refs, func(a, b VertexRef) int {
		return cmp.Compare(a.Position[axis], b.Position[axis])
	})
	return refs
}

// FaceCentroid returns the arithmetic mean of the face's vertex positions.
func FaceCentroid(m *kernel.Mesh, f kernel.Face) (mgl64.Vec3, error) {
	if len(f) == 0 {
		return mgl64.Vec3{}, fmt.Errorf("face has no vertices: %w", ErrInvalidGeometry)
	}
	n := uint32(m.VertexCount())
	var sum mgl64.Vec3
	for _, idx := range f {
		if idx >= n {
			return mgl64.Vec3{}, fmt.Errorf("face references vertex %d of %d: %w", idx, n, ErrInvalidGeometry)
		}
		sum = sum.Add(m.Vertex(int(idx)))
	}
	return sum.Mul(1 / float64(len(f))), nil
}

// SortFacesByCentroidAxis orders the faces of m ascending by the axis
// component of their centroids. Ties keep their original index order.
func SortFacesByCentroidAxis(m *kernel.Mesh, axis Axis) ([]FaceRef, error) {
	refs := make([]FaceRef, len(m.Faces))
	for i, f := range m.Faces {
		c, err := FaceCentroid(m, f)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		refs[i] = FaceRef{Index: i, Vertices: lo.Uniq(f), Centroid: c}
	}
	slices.SortStableFunc(refs, func(a, b FaceRef) int {
		return cmp.Compare(a.Centroid[axis], b.Centroid[axis])
	})
	return refs, nil
}
