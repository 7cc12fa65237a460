package split

import (
	"math"
	"slices"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/samber/lo"
)

// Selection is a set of faces of one mesh snapshot plus the distinct
// vertices they reference. Both lists are ascending. A selection is only
// meaningful for the mesh it was built from; any extraction invalidates it.
type Selection struct {
	Faces    []int
	Vertices []uint32
}

// NewSelection builds a selection of the given faces of m.
func NewSelection(m *kernel.Mesh, faces []int) Selection {
	if len(faces) == 0 {
		return Selection{}
	}
	fs := slices.Clone(faces)
	slices.Sort(fs)
	fs = slices.Compact(fs)

	seen := make(map[uint32]struct{})
	for _, fi := range fs {
		if fi < 0 || fi >= len(m.Faces) {
			continue
		}
		for _, v := range m.Faces[fi] {
			seen[v] = struct{}{}
		}
	}
	verts := lo.Keys(seen)
	slices.Sort(verts)
	return Selection{Faces: fs, Vertices: verts}
}

// Empty reports whether no faces are selected.
func (s Selection) Empty() bool {
	return len(s.Faces) == 0
}

// Target returns the even share of remaining elements for one of
// remainingParts pieces, rounded half to even.
func Target(remaining, remainingParts int) int {
	if remainingParts <= 0 {
		return 0
	}
	return int(math.RoundToEven(float64(remaining) / float64(remainingParts)))
}

// VerticesInPart is the unrounded vertex share of one part, as shown in
// previews before a split runs.
func VerticesInPart(m *kernel.Mesh, parts int) float64 {
	if m == nil || parts == 0 {
		return 0
	}
	return float64(m.VertexCount()) / float64(parts)
}

// SelectByVertexCount takes the first target vertices of sorted and
// selects every face whose vertices all lie in that set. Faces straddling
// the boundary stay behind, so the selection can hold fewer than target
// vertices.
func SelectByVertexCount(m *kernel.Mesh, sorted []VertexRef, target int) Selection {
	if target <= 0 {
		return Selection{}
	}
	n := min(target, len(sorted))
	in := make([]bool, m.VertexCount())
	for _, v := range sorted[:n] {
		in[v.Index] = true
	}

	var faces []int
	for fi, f := range m.Faces {
		inside := lo.EveryBy(f, func(idx uint32) bool {
			return int(idx) < len(in) && in[idx]
		})
		if inside {
			faces = append(faces, fi)
		}
	}
	return NewSelection(m, faces)
}

// SelectByFaceCount walks sorted left to right, selecting faces while the
// budget measured so far is below target. The first face reached with the
// budget at or above target ends the walk, so the selection is a
// contiguous prefix and overshoots by at most one face.
func SelectByFaceCount(m *kernel.Mesh, sorted []FaceRef, target int, budget FaceBudget) Selection {
	union := make(map[uint32]struct{})
	var faces []int
	for _, fr := range sorted {
		measure := len(faces)
		if budget == BudgetVertices {
			measure = len(union)
		}
		if measure >= target {
			break
		}
		faces = append(faces, fr.Index)
		for _, v := range fr.Vertices {
			union[v] = struct{}{}
		}
	}
	return NewSelection(m, faces)
}
