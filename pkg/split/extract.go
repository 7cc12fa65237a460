package split

import (
	"fmt"

	"github.com/chazu/meshsplit/pkg/kernel"
)

// ExtractFaces builds an independent mesh from the selected faces of src.
// Vertices keep their ascending original order and are re-indexed
// contiguously from zero. The new mesh carries the source's transform and
// name. An empty selection yields a nil mesh.
func ExtractFaces(src *kernel.Mesh, sel Selection) (*kernel.Mesh, error) {
	if sel.Empty() {
		return nil, nil
	}

	n := src.VertexCount()
	part := kernel.NewMesh(src.Name)
	part.Transform = src.Transform
	part.Vertices = make([]float64, 0, len(sel.Vertices)*3)
	part.Faces = make([]kernel.Face, 0, len(sel.Faces))

	remap := make(map[uint32]uint32, len(sel.Vertices))
	for _, old := range sel.Vertices {
		if int(old) >= n {
			return nil, fmt.Errorf("vertex %d of %d: %w", old, n, ErrCorruptSelection)
		}
		remap[old] = part.AddVertex(src.Vertex(int(old)))
	}

	for _, fi := range sel.Faces {
		if fi < 0 || fi >= len(src.Faces) {
			return nil, fmt.Errorf("face %d of %d: %w", fi, len(src.Faces), ErrCorruptSelection)
		}
		face := src.Faces[fi]
		nf := make(kernel.Face, len(face))
		for j, old := range face {
			idx, ok := remap[old]
			if !ok {
				return nil, fmt.Errorf("face %d vertex %d not in selection: %w", fi, old, ErrCorruptSelection)
			}
			nf[j] = idx
		}
		part.Faces = append(part.Faces, nf)
	}
	return part, nil
}

// RemoveFaces deletes the selected faces from src, along with every vertex
// that only removed faces referenced. Vertices used by no face before the
// call are kept. Remaining faces are re-indexed; the vertex and face
// slices are replaced, never shared with an extracted part.
func RemoveFaces(src *kernel.Mesh, sel Selection) error {
	if sel.Empty() {
		return nil
	}

	removed := make([]bool, len(src.Faces))
	for _, fi := range sel.Faces {
		if fi < 0 || fi >= len(src.Faces) {
			return fmt.Errorf("face %d of %d: %w", fi, len(src.Faces), ErrCorruptSelection)
		}
		removed[fi] = true
	}

	n := src.VertexCount()
	orphan := make([]bool, n)
	used := make([]bool, n)
	for fi, f := range src.Faces {
		for _, idx := range f {
			if int(idx) >= n {
				return fmt.Errorf("face %d vertex %d of %d: %w", fi, idx, n, ErrCorruptSelection)
			}
			if removed[fi] {
				orphan[idx] = true
			} else {
				used[idx] = true
			}
		}
	}

	remap := make([]uint32, n)
	verts := make([]float64, 0, len(src.Vertices))
	var next uint32
	for i := 0; i < n; i++ {
		if orphan[i] && !used[i] {
			continue
		}
		remap[i] = next
		next++
		verts = append(verts, src.Vertices[i*3:i*3+3]...)
	}

	faces := make([]kernel.Face, 0, len(src.Faces)-len(sel.Faces))
	for fi, f := range src.Faces {
		if removed[fi] {
			continue
		}
		nf := make(kernel.Face, len(f))
		for j, idx := range f {
			nf[j] = remap[idx]
		}
		faces = append(faces, nf)
	}

	src.Vertices = verts
	src.Faces = faces
	return nil
}

// Extractor moves a selection out of the active mesh into a new part
// owned by the host. It returns the part and the mesh the driver must
// continue with.
type Extractor interface {
	Extract(host Host, src *kernel.Mesh, sel Selection) (part, remainder *kernel.Mesh, err error)
}

// NewExtractor returns the backend for a strategy.
func NewExtractor(s Strategy) Extractor {
	if s == StrategyOperator {
		return operatorExtractor{}
	}
	return bmeshExtractor{}
}

// bmeshExtractor edits the active mesh in place.
type bmeshExtractor struct{}

func (bmeshExtractor) Extract(host Host, src *kernel.Mesh, sel Selection) (*kernel.Mesh, *kernel.Mesh, error) {
	if sel.Empty() {
		return nil, src, nil
	}
	part, err := ExtractFaces(src, sel)
	if err != nil {
		return nil, src, err
	}
	// The source keeps its faces until the host owns the part.
	if err := host.AddPart(part); err != nil {
		return nil, src, fmt.Errorf("add part: %w", err)
	}
	if err := RemoveFaces(src, sel); err != nil {
		return part, src, err
	}
	return part, src, nil
}

// operatorExtractor lets the host separate the selection and re-reads the
// active mesh afterwards.
type operatorExtractor struct{}

func (operatorExtractor) Extract(host Host, src *kernel.Mesh, sel Selection) (*kernel.Mesh, *kernel.Mesh, error) {
	if sel.Empty() {
		return nil, src, nil
	}
	if err := host.Select(sel); err != nil {
		return nil, src, fmt.Errorf("select: %w", err)
	}
	if err := host.SetMode(ModeEdit); err != nil {
		return nil, src, fmt.Errorf("enter edit mode: %w", err)
	}
	part, sepErr := host.SeparateSelected()
	if err := host.SetMode(ModeObject); err != nil && sepErr == nil {
		sepErr = fmt.Errorf("leave edit mode: %w", err)
	}
	if sepErr != nil {
		return nil, src, fmt.Errorf("separate: %w", sepErr)
	}
	remainder, err := host.ActiveMesh()
	if err != nil {
		return part, src, fmt.Errorf("reload active mesh: %w", err)
	}
	if remainder == nil {
		return part, src, ErrNoActiveMesh
	}
	return part, remainder, nil
}
