package recipe

import (
	"testing"

	"github.com/chazu/meshsplit/pkg/graph"
	"github.com/chazu/meshsplit/pkg/split"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, source string) *Result {
	t.Helper()
	res, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, res)
	return res
}

func evalErrors(t *testing.T, source string) []EvalError {
	t.Helper()
	res, evalErrs, err := NewEngine().Evaluate(source)
	require.NoError(t, err)
	require.Nil(t, res)
	require.NotEmpty(t, evalErrs)
	return evalErrs
}

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"simple keyword", `(split "bar" :parts 4)`, `(split "bar" "__kw_parts" 4)`},
		{"keyword value", `:axis :z`, `"__kw_axis" "__kw_z"`},
		{"keyword in string preserved", `"thing with :keyword inside"`, `"thing with :keyword inside"`},
		{"keyword in backtick string preserved", "`raw :kw`", "`raw :kw`"},
		{"escaped quote in string", `"a \" :b"`, `"a \" :b"`},
		{"assignment operator preserved", `(def x := 10)`, `(def x := 10)`},
		{"kebab-case identifier", `(def bar-len 10)`, `(def bar_len 10)`},
		{"minus operator preserved", `(- 10 5)`, `(- 10 5)`},
		{"negative number preserved", `(translate b -5 0 0)`, `(translate b -5 0 0)`},
		{"comment converted", `;; comment with :keyword`, `// comment with :keyword`},
		{"single semicolon comment", `; simple comment`, `// simple comment`},
		{"hyphen in keyword preserved", `:face-count`, `"__kw_face-count"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, preprocessSource(tt.input))
		})
	}
}

func TestPrimitives(t *testing.T) {
	res := evaluate(t, `
(defmesh "b" (box 10 2 3))
(defmesh "c" (cylinder 4 1.5))
(defmesh "s" (sphere 2))
`)
	g := res.Graph
	assert.Equal(t, 3, g.NodeCount())
	require.Len(t, g.Roots, 3)

	b := g.MustLookup("b")
	assert.Equal(t, graph.NodePrimitive, b.Kind)
	assert.Equal(t, graph.PrimitiveData{Prim: graph.PrimBox, Size: mgl64.Vec3{10, 2, 3}}, b.Data)

	c := g.MustLookup("c").Data.(graph.PrimitiveData)
	assert.Equal(t, graph.PrimCylinder, c.Prim)
	assert.Equal(t, 4.0, c.Height)
	assert.Equal(t, 1.5, c.Radius)

	s := g.MustLookup("s").Data.(graph.PrimitiveData)
	assert.Equal(t, graph.PrimSphere, s.Prim)
	assert.Equal(t, 2.0, s.Radius)

	assert.Empty(t, graph.Validate(g))
}

func TestTransformsAndUnion(t *testing.T) {
	res := evaluate(t, `
(def leg (box 1 1 4))
(defmesh "frame"
  (union
    (translate leg 0 0 0)
    (translate leg 5 0 0)
    (rotate (cylinder 5 0.5) 0 90 0)))
`)
	g := res.Graph
	frame := g.MustLookup("frame")
	assert.Equal(t, graph.NodeGroup, frame.Kind)
	require.Len(t, frame.Children, 3)

	second := g.Get(frame.Children[1])
	require.Equal(t, graph.NodeTransform, second.Kind)
	assert.Equal(t, mgl64.Vec3{5, 0, 0}, second.Data.(graph.TransformData).Translation)

	rot := g.Get(frame.Children[2]).Data.(graph.TransformData)
	assert.Equal(t, mgl64.Vec3{0, 90, 0}, rot.Rotation)

	// Both translations share the single leg node.
	first := g.Get(frame.Children[0])
	assert.Equal(t, first.Children, second.Children)
	assert.Empty(t, graph.Validate(g))
}

func TestUnionAcceptsArray(t *testing.T) {
	res := evaluate(t, `(defmesh "u" (union [(box 1 1 1) (sphere 1)]))`)
	assert.Len(t, res.Graph.MustLookup("u").Children, 2)
}

func TestLoad(t *testing.T) {
	res := evaluate(t, `(defmesh "scan" (load "parts/scan.obj"))`)
	n := res.Graph.MustLookup("scan")
	assert.Equal(t, graph.NodeImport, n.Kind)
	assert.Equal(t, graph.ImportData{Path: "parts/scan.obj"}, n.Data)
}

func TestDefmeshCopiesNamedSource(t *testing.T) {
	res := evaluate(t, `
(def b (box 1 1 1))
(defmesh "a" b)
(defmesh "c" b)
(defmesh "d" (mesh "a"))
`)
	g := res.Graph
	require.Len(t, g.Roots, 3)
	a, c, d := g.MustLookup("a"), g.MustLookup("c"), g.MustLookup("d")
	assert.NotEqual(t, a.ID, c.ID)
	assert.NotEqual(t, a.ID, d.ID)
	assert.Equal(t, a.Data, c.Data)
	assert.Empty(t, graph.Validate(g))
}

func TestSplitDefaults(t *testing.T) {
	res := evaluate(t, `
(defmesh "bar" (box 10 1 1))
(split "bar")
`)
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, DefaultJob("bar"), res.Jobs[0])
	assert.Empty(t, res.Warnings)
}

func TestSplitOptions(t *testing.T) {
	res := evaluate(t, `
(defmesh "bar" (box 10 1 1))
(split "bar" :parts 3 :mode :face :axis :z :strategy :operator :refine :y :budget :vertices)
`)
	require.Len(t, res.Jobs, 1)
	job := res.Jobs[0]
	assert.Equal(t, split.Params{Parts: 3, Policy: split.PolicyFaceCount, Axis: split.AxisZ}, job.Params)
	assert.Equal(t, split.StrategyOperator, job.Strategy)
	assert.Equal(t, split.BudgetVertices, job.Budget)
	require.NotNil(t, job.Refine)
	assert.Equal(t, split.AxisY, *job.Refine)
	assert.Len(t, job.Options(nil), 4)
}

func TestSplitSinglePartWarns(t *testing.T) {
	res := evaluate(t, `
(defmesh "bar" (box 10 1 1))
(split "bar" :parts 1)
`)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, res.Graph.MustLookup("bar").ID, res.Warnings[0].NodeID)
	assert.Contains(t, res.Warnings[0].Message, `"bar"`)
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"box arity", `(box 1 2)`},
		{"box negative", `(box 1 -2 3)`},
		{"box non-number", `(box 1 "2" 3)`},
		{"cylinder arity", `(cylinder 1)`},
		{"sphere zero", `(sphere 0)`},
		{"load empty", `(load "")`},
		{"translate non-node", `(translate 1 2 3 4)`},
		{"union empty", `(union)`},
		{"defmesh duplicate", `(defmesh "a" (box 1 1 1)) (defmesh "a" (box 1 1 1))`},
		{"mesh missing", `(mesh "nope")`},
		{"split unknown mesh", `(split "nope")`},
		{"split unknown option", `(defmesh "a" (box 1 1 1)) (split "a" :pieces 3)`},
		{"split bad axis", `(defmesh "a" (box 1 1 1)) (split "a" :axis :w)`},
		{"split fractional parts", `(defmesh "a" (box 1 1 1)) (split "a" :parts 2.5)`},
		{"split twice", `(defmesh "a" (box 1 1 1)) (split "a") (split "a")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := evalErrors(t, tt.source)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}

func TestArithmeticInArguments(t *testing.T) {
	res := evaluate(t, `
(def w 4)
(defmesh "bar" (box (* w 5) 2 2))
(split "bar" :parts (/ w 2))
`)
	assert.Equal(t, mgl64.Vec3{20, 2, 2}, res.Graph.MustLookup("bar").Data.(graph.PrimitiveData).Size)
	assert.Equal(t, 2, res.Jobs[0].Params.Parts)
}
