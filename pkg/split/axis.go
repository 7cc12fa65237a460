package split

import (
	"fmt"
	"strings"
)

// Axis is the coordinate used to order geometry. Its value is the
// component index into a position vector.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// ParseAxis accepts "x", "y" or "z" in any case.
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return AxisX, fmt.Errorf("split: unknown axis %q", s)
}

// Mode is the host's interaction mode.
type Mode int

const (
	ModeObject Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "object"
}

// Policy chooses how a cut is sized.
type Policy int

const (
	// PolicyVertexCount takes the first N vertices along the axis and
	// selects the faces lying wholly inside them.
	PolicyVertexCount Policy = iota

	// PolicyFaceCount walks faces in centroid order until a budget is met.
	PolicyFaceCount
)

func (p Policy) String() string {
	if p == PolicyFaceCount {
		return "face"
	}
	return "vertex"
}

// ParsePolicy accepts "vertex"/"verts" and "face"/"faces", with an
// optional "_count" suffix.
func ParsePolicy(s string) (Policy, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "_count") {
	case "vertex", "verts", "vertices":
		return PolicyVertexCount, nil
	case "face", "faces":
		return PolicyFaceCount, nil
	}
	return PolicyVertexCount, fmt.Errorf("split: unknown mode %q", s)
}

// FaceBudget is the unit the face-count policy measures its cut in.
type FaceBudget int

const (
	// BudgetFaces counts the faces selected so far against an even share
	// of the remaining faces.
	BudgetFaces FaceBudget = iota

	// BudgetVertices counts the distinct vertices of the faces selected so
	// far against an even share of the remaining vertices.
	BudgetVertices
)

func (b FaceBudget) String() string {
	if b == BudgetVertices {
		return "vertices"
	}
	return "faces"
}

// ParseFaceBudget accepts "faces" or "vertices".
func ParseFaceBudget(s string) (FaceBudget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "faces", "face":
		return BudgetFaces, nil
	case "vertices", "verts", "vertex":
		return BudgetVertices, nil
	}
	return BudgetFaces, fmt.Errorf("split: unknown face budget %q", s)
}

// Strategy selects the extraction backend.
type Strategy int

const (
	// StrategyBMesh edits the mesh arrays directly and hands each new part
	// to the host.
	StrategyBMesh Strategy = iota

	// StrategyOperator marks the selection on the host and asks it to
	// separate the selected faces itself.
	StrategyOperator
)

func (s Strategy) String() string {
	if s == StrategyOperator {
		return "operator"
	}
	return "bmesh"
}

// ParseStrategy accepts "bmesh" or "operator".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bmesh", "bm":
		return StrategyBMesh, nil
	case "operator", "op":
		return StrategyOperator, nil
	}
	return StrategyBMesh, fmt.Errorf("split: unknown strategy %q", s)
}
