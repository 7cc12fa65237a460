package split_test

import (
	"testing"

	"github.com/chazu/meshsplit/pkg/split"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		remaining, parts, want int
	}{
		{100, 5, 20},
		{82, 4, 20}, // 20.5
		{90, 4, 22}, // 22.5
		{3, 2, 2},   // 1.5
		{1, 2, 0},   // 0.5
		{64, 3, 21},
		{10, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, split.Target(tt.remaining, tt.parts), "%d/%d", tt.remaining, tt.parts)
	}
}

func TestVerticesInPart(t *testing.T) {
	assert.Equal(t, 20.0, split.VerticesInPart(stripMesh(50), 5))
	assert.Equal(t, 0.0, split.VerticesInPart(stripMesh(50), 0))
	assert.Equal(t, 0.0, split.VerticesInPart(nil, 3))
}

func TestSelectByVertexCountLeavesStraddlingFaces(t *testing.T) {
	m := stripMesh(5)
	sorted := split.SortVerticesByAxis(m, split.AxisX)

	// Five vertices cover columns 0, 1 and half of 2; only quad 0 is inside.
	sel := split.SelectByVertexCount(m, sorted, 5)
	assert.Equal(t, []int{0}, sel.Faces)
	assert.Equal(t, []uint32{0, 1, 2, 3}, sel.Vertices)

	assert.True(t, split.SelectByVertexCount(m, sorted, 0).Empty())
	assert.Len(t, split.SelectByVertexCount(m, sorted, 100).Faces, 4)
}

func TestSelectByFaceCount(t *testing.T) {
	m := cubeMesh()
	sorted, err := split.SortFacesByCentroidAxis(m, split.AxisZ)
	require.NoError(t, err)

	sel := split.SelectByFaceCount(m, sorted, 3, split.BudgetFaces)
	assert.Equal(t, []int{0, 1, 2}, sel.Faces)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6}, sel.Vertices)

	// The bottom face alone already reaches four vertices.
	sel = split.SelectByFaceCount(m, sorted, 4, split.BudgetVertices)
	assert.Equal(t, []int{0}, sel.Faces)

	// One face's worth of overshoot is allowed.
	sel = split.SelectByFaceCount(m, sorted, 5, split.BudgetVertices)
	assert.Equal(t, []int{0, 1}, sel.Faces)

	assert.True(t, split.SelectByFaceCount(m, sorted, 0, split.BudgetFaces).Empty())
}

func TestNewSelectionSortsAndDedupes(t *testing.T) {
	m := cubeMesh()
	sel := split.NewSelection(m, []int{5, 0, 5})
	assert.Equal(t, []int{0, 5}, sel.Faces)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5, 6, 7}, sel.Vertices)
	assert.True(t, split.NewSelection(m, nil).Empty())
}
