package graph

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeebo/xxh3"
)

// NodeID identifies a node. IDs are derived from the recipe path that
// created the node, so re-evaluating an unchanged recipe yields the same
// IDs.
type NodeID string

// NewNodeID hashes a creation path into a NodeID.
func NewNodeID(path string) NodeID {
	return NodeID(fmt.Sprintf("%016x", xxh3.HashString(path)))
}

// IsZero reports whether the ID is unset.
func (id NodeID) IsZero() bool {
	return id == ""
}

// Short returns the first 8 characters of the ID.
func (id NodeID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// NodeKind enumerates the types of nodes in the source graph.
type NodeKind int

const (
	NodePrimitive NodeKind = iota // solid primitive (box, cylinder, sphere)
	NodeTransform                 // translation and rotation of one child
	NodeGroup                     // union of children
	NodeImport                    // mesh loaded from a file
)

func (k NodeKind) String() string {
	switch k {
	case NodePrimitive:
		return "primitive"
	case NodeTransform:
		return "transform"
	case NodeGroup:
		return "group"
	case NodeImport:
		return "import"
	default:
		return "unknown"
	}
}

// Node is the fundamental element of the source graph.
type Node struct {
	ID       NodeID   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Name     string   `json:"name,omitempty"`
	Children []NodeID `json:"children,omitempty"`
	Data     NodeData `json:"data"`
}

// NodeData is the interface for kind-specific node payloads.
type NodeData interface {
	nodeData() // marker method restricting implementations to this package
}

// PrimKind enumerates solid primitives.
type PrimKind int

const (
	PrimBox PrimKind = iota
	PrimCylinder
	PrimSphere
)

func (k PrimKind) String() string {
	switch k {
	case PrimBox:
		return "box"
	case PrimCylinder:
		return "cylinder"
	case PrimSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// PrimitiveData sizes a primitive. Box uses Size as x, y, z extents;
// cylinder uses Height and Radius; sphere uses Radius.
type PrimitiveData struct {
	Prim   PrimKind   `json:"prim"`
	Size   mgl64.Vec3 `json:"size,omitempty"`
	Height float64    `json:"height,omitempty"`
	Radius float64    `json:"radius,omitempty"`
}

func (PrimitiveData) nodeData() {}

// TransformData moves its single child. Rotation is in degrees, applied
// X then Y then Z, before the translation.
type TransformData struct {
	Translation mgl64.Vec3 `json:"translation"`
	Rotation    mgl64.Vec3 `json:"rotation"`
}

func (TransformData) nodeData() {}

// Matrix returns the local-to-parent matrix of the transform.
func (t TransformData) Matrix() mgl64.Mat4 {
	rot := mgl64.HomogRotate3DZ(mgl64.DegToRad(t.Rotation[2])).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(t.Rotation[1]))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(t.Rotation[0])))
	return mgl64.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2]).Mul4(rot)
}

// GroupData marks a union of children.
type GroupData struct{}

func (GroupData) nodeData() {}

// ImportData names a mesh file to load.
type ImportData struct {
	Path string `json:"path"`
}

func (ImportData) nodeData() {}
