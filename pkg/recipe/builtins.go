package recipe

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/chazu/meshsplit/pkg/graph"
	"github.com/chazu/meshsplit/pkg/split"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// ---------------------------------------------------------------------------
// Graph builder
// ---------------------------------------------------------------------------

// builder accumulates the graph and jobs of one evaluation. Node IDs come
// from a per-evaluation sequence, so the same recipe always yields the
// same IDs.
type builder struct {
	g        *graph.Graph
	jobs     []Job
	warnings []EvalWarning
	seq      int
}

func newBuilder() *builder {
	return &builder{g: graph.New()}
}

func (b *builder) result() *Result {
	return &Result{Graph: b.g, Jobs: b.jobs, Warnings: b.warnings}
}

func (b *builder) add(kind graph.NodeKind, label string, data graph.NodeData, children ...graph.NodeID) *sexpNodeRef {
	b.seq++
	n := &graph.Node{
		ID:       graph.NewNodeID(fmt.Sprintf("%s/%d", label, b.seq)),
		Kind:     kind,
		Children: children,
		Data:     data,
	}
	b.g.AddNode(n)
	return &sexpNodeRef{id: n.ID}
}

func (b *builder) isRoot(id graph.NodeID) bool {
	return slices.Contains(b.g.Roots, id)
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a graph.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   graph.NodeID
	name string // mesh name, for printing
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(mesh %q)", n.name)
	}
	return fmt.Sprintf("(node %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// unknownKeywords returns the keywords in pa not listed in known, sorted.
func (pa kwArgs) unknownKeywords(known ...string) []string {
	extra := lo.Without(lo.Keys(pa.kw), known...)
	slices.Sort(extra)
	return extra
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number.
func toInt(s zygo.Sexp) (int, error) {
	f, err := toFloat64(s)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("expected whole number, got %v", f)
	}
	return int(f), nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Both :z and "z" yield "z".
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toVec3 reads three numbers.
func toVec3(args []zygo.Sexp) (mgl64.Vec3, error) {
	var v mgl64.Vec3
	if len(args) != 3 {
		return v, fmt.Errorf("expected 3 numbers, got %d", len(args))
	}
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (graph.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return "", fmt.Errorf("expected mesh source, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// keywordOption parses pa.kw[key] with parse when present.
func keywordOption[T any](pa kwArgs, key string, parse func(string) (T, error), dst *T) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	s, err := toKeywordString(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	out, err := parse(s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = out
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the recipe builtins into env. They populate b
// as the program runs. Source must go through preprocessSource first so
// :keyword tokens arrive as recognizable strings.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// (box x y z)
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		size, err := toVec3(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: dimensions must be positive, got %v", size)
		}
		return b.add(graph.NodePrimitive, "box", graph.PrimitiveData{Prim: graph.PrimBox, Size: size}), nil
	})

	// (cylinder height radius)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("cylinder requires height and radius, got %d arguments", len(args))
		}
		h, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: height: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: radius: %w", err)
		}
		if h <= 0 || r <= 0 {
			return zygo.SexpNull, fmt.Errorf("cylinder: height and radius must be positive")
		}
		return b.add(graph.NodePrimitive, "cylinder", graph.PrimitiveData{Prim: graph.PrimCylinder, Height: h, Radius: r}), nil
	})

	// (sphere radius)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("sphere requires a radius")
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("sphere: radius must be positive, got %v", r)
		}
		return b.add(graph.NodePrimitive, "sphere", graph.PrimitiveData{Prim: graph.PrimSphere, Radius: r}), nil
	})

	// (load "path/to/file.obj")
	env.AddFunction("load", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("load requires a file path")
		}
		path, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load: %w", err)
		}
		if path == "" {
			return zygo.SexpNull, fmt.Errorf("load: empty path")
		}
		return b.add(graph.NodeImport, "load:"+path, graph.ImportData{Path: path}), nil
	})

	transform := func(fn string, set func(*graph.TransformData, mgl64.Vec3)) zygo.ZlispUserFunction {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 4 {
				return zygo.SexpNull, fmt.Errorf("%s requires a source and 3 numbers, got %d arguments", fn, len(args))
			}
			src, err := toNodeRef(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			v, err := toVec3(args[1:])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", fn, err)
			}
			var td graph.TransformData
			set(&td, v)
			return b.add(graph.NodeTransform, fn, td, src), nil
		}
	}

	// (translate src x y z)
	env.AddFunction("translate", transform("translate", func(td *graph.TransformData, v mgl64.Vec3) {
		td.Translation = v
	}))

	// (rotate src x y z), degrees
	env.AddFunction("rotate", transform("rotate", func(td *graph.TransformData, v mgl64.Vec3) {
		td.Rotation = v
	}))

	// (union a b ...) or (union [a b ...])
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var items []zygo.Sexp
		for _, a := range args {
			if _, ok := a.(*sexpNodeRef); ok {
				items = append(items, a)
				continue
			}
			list, err := sexpListToSlice(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: %w", err)
			}
			items = append(items, list...)
		}
		if len(items) == 0 {
			return zygo.SexpNull, fmt.Errorf("union requires at least one source")
		}
		children := make([]graph.NodeID, 0, len(items))
		for _, it := range items {
			id, err := toNodeRef(it)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("union: %w", err)
			}
			children = append(children, id)
		}
		return b.add(graph.NodeGroup, "union", graph.GroupData{}, children...), nil
	})

	// (defmesh "name" src) registers src as a named output mesh.
	env.AddFunction("defmesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defmesh requires a name and a source expression")
		}
		meshName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh: name: %w", err)
		}
		if meshName == "" {
			return zygo.SexpNull, fmt.Errorf("defmesh: empty name")
		}
		if b.g.Lookup(meshName) != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh: mesh %q already defined", meshName)
		}
		id, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh %q: %w", meshName, err)
		}

		n := b.g.Get(id)
		if n.Name != "" || b.isRoot(id) {
			// Already a mesh of its own; give this one a copy of the node.
			ref := b.add(n.Kind, "defmesh:"+meshName, n.Data, slices.Clone(n.Children)...)
			n = b.g.Get(ref.id)
		}
		n.Name = meshName
		b.g.NameIndex[meshName] = n.ID
		b.g.AddRoot(n.ID)
		return &sexpNodeRef{id: n.ID, name: meshName}, nil
	})

	// (mesh "name") looks up a mesh defined earlier.
	env.AddFunction("mesh", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("mesh requires a name argument")
		}
		meshName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("mesh: %w", err)
		}
		n := b.g.Lookup(meshName)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("mesh: no mesh named %q", meshName)
		}
		return &sexpNodeRef{id: n.ID, name: meshName}, nil
	})

	// (split "name" :parts 5 :mode :vertex :axis :x :strategy :bmesh
	//        :refine :y :budget :faces)
	env.AddFunction("split", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("split requires exactly one mesh name")
		}
		meshName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("split: mesh: %w", err)
		}
		target := b.g.Lookup(meshName)
		if target == nil || !b.isRoot(target.ID) {
			return zygo.SexpNull, fmt.Errorf("split: no mesh named %q", meshName)
		}
		if _, dup := lo.Find(b.jobs, func(j Job) bool { return j.Mesh == meshName }); dup {
			return zygo.SexpNull, fmt.Errorf("split: mesh %q already has a split", meshName)
		}
		if extra := pa.unknownKeywords("parts", "mode", "axis", "strategy", "refine", "budget"); len(extra) > 0 {
			return zygo.SexpNull, fmt.Errorf("split: unknown option :%s", extra[0])
		}

		job := DefaultJob(meshName)
		if v, ok := pa.kw["parts"]; ok {
			if job.Params.Parts, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("split: parts: %w", err)
			}
		}
		for _, err := range []error{
			keywordOption(pa, "mode", split.ParsePolicy, &job.Params.Policy),
			keywordOption(pa, "axis", split.ParseAxis, &job.Params.Axis),
			keywordOption(pa, "strategy", split.ParseStrategy, &job.Strategy),
			keywordOption(pa, "budget", split.ParseFaceBudget, &job.Budget),
		} {
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("split: %w", err)
			}
		}
		if _, ok := pa.kw["refine"]; ok {
			var axis split.Axis
			if err := keywordOption(pa, "refine", split.ParseAxis, &axis); err != nil {
				return zygo.SexpNull, fmt.Errorf("split: %w", err)
			}
			job.Refine = &axis
		}

		if job.Params.Parts <= 1 {
			b.warnings = append(b.warnings, EvalWarning{
				Message: fmt.Sprintf("split of %q into %d parts leaves the mesh as it is", meshName, job.Params.Parts),
				NodeID:  target.ID,
			})
		}
		b.jobs = append(b.jobs, job)
		return &sexpNodeRef{id: target.ID, name: meshName}, nil
	})
}
