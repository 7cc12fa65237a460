package tessellate_test

import (
	"errors"
	"testing"

	"github.com/chazu/meshsplit/pkg/graph"
	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/chazu/meshsplit/pkg/kernel/sdfx"
	"github.com/chazu/meshsplit/pkg/tessellate"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newKernel returns a coarse sdfx kernel to keep tests fast.
func newKernel() kernel.Kernel {
	return sdfx.NewWithCells(16)
}

func makeBox(name string, x, y, z float64) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("box/" + name),
		Kind: graph.NodePrimitive,
		Name: name,
		Data: graph.PrimitiveData{Prim: graph.PrimBox, Size: mgl64.Vec3{x, y, z}},
	}
}

func makeTranslate(name string, tx, ty, tz float64, child graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("translate/" + name),
		Kind:     graph.NodeTransform,
		Name:     name,
		Children: []graph.NodeID{child},
		Data:     graph.TransformData{Translation: mgl64.Vec3{tx, ty, tz}},
	}
}

func makeGroup(name string, children ...graph.NodeID) *graph.Node {
	return &graph.Node{
		ID:       graph.NewNodeID("group/" + name),
		Kind:     graph.NodeGroup,
		Name:     name,
		Children: children,
		Data:     graph.GroupData{},
	}
}

func makeImport(name, path string) *graph.Node {
	return &graph.Node{
		ID:   graph.NewNodeID("import/" + name),
		Kind: graph.NodeImport,
		Name: name,
		Data: graph.ImportData{Path: path},
	}
}

// quadLoader returns a unit quad for any path.
var quadLoader = tessellate.LoaderFunc(func(path string) (*kernel.Mesh, error) {
	m := kernel.NewMesh(path)
	m.Vertices = []float64{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}
	m.AddFace(0, 1, 2, 3)
	return m, nil
})

func TestTessellateNilGraph(t *testing.T) {
	meshes, err := tessellate.Tessellate(nil, newKernel(), nil)
	require.NoError(t, err)
	assert.Nil(t, meshes)
}

func TestTessellateSingleBox(t *testing.T) {
	g := graph.New()
	b := makeBox("slab", 10, 4, 2)
	g.AddNode(b)
	g.AddRoot(b.ID)

	meshes, err := tessellate.Tessellate(g, newKernel(), nil)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "slab", m.Name)
	require.NoError(t, m.Validate())
	min, max := m.Bounds()
	assert.InDelta(t, 0, min[0], 0.5)
	assert.InDelta(t, 10, max[0], 0.5)
	assert.Equal(t, mgl64.Ident4(), m.Transform)
}

func TestTessellateRootTransformBecomesObjectTransform(t *testing.T) {
	g := graph.New()
	b := makeBox("inner", 2, 2, 2)
	tr := makeTranslate("moved", 100, 0, 0, b.ID)
	g.AddNode(b)
	g.AddNode(tr)
	g.AddRoot(tr.ID)

	meshes, err := tessellate.Tessellate(g, newKernel(), nil)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	m := meshes[0]
	assert.Equal(t, "moved", m.Name)
	lmin, _ := m.Bounds()
	wmin, _ := m.WorldBounds()
	assert.InDelta(t, 0, lmin[0], 0.5)
	assert.InDelta(t, 100, wmin[0], 0.5)
}

func TestTessellateGroupWithImportMergesMeshes(t *testing.T) {
	g := graph.New()
	imp := makeImport("scan", "scan.obj")
	moved := makeTranslate("lifted", 0, 0, 5, imp.ID)
	b := makeBox("base", 1, 1, 1)
	grp := makeGroup("assembly", b.ID, moved.ID)
	for _, n := range []*graph.Node{imp, moved, b, grp} {
		g.AddNode(n)
	}
	g.AddRoot(grp.ID)

	k := newKernel()
	meshes, err := tessellate.Tessellate(g, k, quadLoader)
	require.NoError(t, err)
	require.Len(t, meshes, 1)

	boxMesh, err := k.ToMesh(k.Box(1, 1, 1))
	require.NoError(t, err)

	m := meshes[0]
	require.NoError(t, m.Validate())
	assert.Equal(t, boxMesh.FaceCount()+1, m.FaceCount())
	assert.Equal(t, boxMesh.VertexCount()+4, m.VertexCount())

	// The imported quad was lifted to z=5.
	_, max := m.Bounds()
	assert.InDelta(t, 5, max[2], 1e-9)
}

func TestTessellateMultipleRootsKeepOrder(t *testing.T) {
	g := graph.New()
	a := makeBox("a", 1, 1, 1)
	b := makeBox("b", 2, 2, 2)
	g.AddNode(a)
	g.AddNode(b)
	g.AddRoot(b.ID)
	g.AddRoot(a.ID)

	meshes, err := tessellate.Tessellate(g, newKernel(), nil)
	require.NoError(t, err)
	require.Len(t, meshes, 2)
	assert.Equal(t, "b", meshes[0].Name)
	assert.Equal(t, "a", meshes[1].Name)
}

func TestTessellateImportErrors(t *testing.T) {
	g := graph.New()
	imp := makeImport("scan", "missing.obj")
	g.AddNode(imp)
	g.AddRoot(imp.ID)

	_, err := tessellate.Tessellate(g, newKernel(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no loader configured")

	boom := errors.New("boom")
	_, err = tessellate.Tessellate(g, newKernel(), tessellate.LoaderFunc(func(string) (*kernel.Mesh, error) {
		return nil, boom
	}))
	assert.True(t, errors.Is(err, boom))
}

func TestTessellateRejectsInvalidGraph(t *testing.T) {
	g := graph.New()
	b := makeBox("", 1, 1, 1)
	g.AddNode(b)
	g.AddRoot(b.ID)

	_, err := tessellate.Tessellate(g, newKernel(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root has no name")
}
