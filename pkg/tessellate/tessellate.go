// Package tessellate walks a source graph and produces one named mesh per
// root using a geometry kernel for primitives and a Loader for imported
// files.
package tessellate

import (
	"fmt"

	"github.com/chazu/meshsplit/pkg/graph"
	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/go-gl/mathgl/mgl64"
)

// Loader reads mesh files referenced by import nodes.
type Loader interface {
	Load(path string) (*kernel.Mesh, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*kernel.Mesh, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*kernel.Mesh, error) {
	return f(path)
}

// noLoader rejects every import.
type noLoader struct{}

func (noLoader) Load(path string) (*kernel.Mesh, error) {
	return nil, fmt.Errorf("no loader configured for %q", path)
}

// Tessellate produces one mesh per root, in root order. Subtrees made only
// of primitives, transforms and groups are combined as solids with the
// kernel's boolean union before meshing; subtrees containing imports are
// merged at mesh level. A transform at the root becomes the mesh's
// Transform instead of being baked into its vertices. The graph is never
// modified.
func Tessellate(g *graph.Graph, k kernel.Kernel, loader Loader) ([]*kernel.Mesh, error) {
	if g == nil {
		return nil, nil
	}
	if errs := graph.Validate(g); len(errs) > 0 {
		return nil, fmt.Errorf("tessellate: invalid graph (%d problems): %w", len(errs), errs[0])
	}
	if loader == nil {
		loader = noLoader{}
	}

	w := &walker{g: g, k: k, loader: loader}
	meshes := make([]*kernel.Mesh, 0, len(g.Roots))
	for _, rootID := range g.Roots {
		root := g.Get(rootID)
		m, err := w.root(root)
		if err != nil {
			return nil, fmt.Errorf("tessellate: error walking root %q: %w", root.Name, err)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

type walker struct {
	g      *graph.Graph
	k      kernel.Kernel
	loader Loader
}

func (w *walker) root(n *graph.Node) (*kernel.Mesh, error) {
	body := n
	objectTransform := mgl64.Ident4()
	if td, ok := n.Data.(graph.TransformData); ok {
		objectTransform = td.Matrix()
		body = w.g.Get(n.Children[0])
	}

	out := kernel.NewMesh(n.Name)
	if err := w.walk(body, mgl64.Ident4(), out); err != nil {
		return nil, err
	}
	if out.IsEmpty() {
		return nil, fmt.Errorf("produced no geometry")
	}
	out.Transform = objectTransform
	return out, nil
}

// walk merges the geometry of n, placed by mat, into out.
func (w *walker) walk(n *graph.Node, mat mgl64.Mat4, out *kernel.Mesh) error {
	solid, ok, err := w.solid(n)
	if err != nil {
		return err
	}
	if ok {
		m, err := w.k.ToMesh(solid)
		if err != nil {
			return fmt.Errorf("ToMesh failed for node %s: %w", n.ID.Short(), err)
		}
		m.Transform = mat
		out.Merge(m)
		return nil
	}

	switch data := n.Data.(type) {
	case graph.TransformData:
		return w.walk(w.g.Get(n.Children[0]), mat.Mul4(data.Matrix()), out)
	case graph.GroupData:
		for _, child := range w.g.Children(n) {
			if err := w.walk(child, mat, out); err != nil {
				return err
			}
		}
		return nil
	case graph.ImportData:
		m, err := w.loader.Load(data.Path)
		if err != nil {
			return fmt.Errorf("import %s: %w", data.Path, err)
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("import %s: %w", data.Path, err)
		}
		m.Transform = mat.Mul4(m.Transform)
		out.Merge(m)
		return nil
	default:
		return fmt.Errorf("node %s has unsupported data type %T", n.ID.Short(), n.Data)
	}
}

// solid builds n as a kernel solid. ok is false when the subtree contains
// an import and has to be handled at mesh level.
func (w *walker) solid(n *graph.Node) (s kernel.Solid, ok bool, err error) {
	switch data := n.Data.(type) {
	case graph.PrimitiveData:
		switch data.Prim {
		case graph.PrimBox:
			return w.k.Box(data.Size[0], data.Size[1], data.Size[2]), true, nil
		case graph.PrimCylinder:
			return w.k.Cylinder(data.Height, data.Radius, 32), true, nil
		case graph.PrimSphere:
			return w.k.Sphere(data.Radius), true, nil
		}
		return nil, false, fmt.Errorf("primitive node %s has unknown kind %v", n.ID.Short(), data.Prim)

	case graph.TransformData:
		child, ok, err := w.solid(w.g.Get(n.Children[0]))
		if err != nil || !ok {
			return nil, ok, err
		}
		// Rotation first, then translation.
		r := data.Rotation
		if r[0] != 0 || r[1] != 0 || r[2] != 0 {
			child = w.k.Rotate(child, r[0], r[1], r[2])
		}
		t := data.Translation
		if t[0] != 0 || t[1] != 0 || t[2] != 0 {
			child = w.k.Translate(child, t[0], t[1], t[2])
		}
		return child, true, nil

	case graph.GroupData:
		var acc kernel.Solid
		for _, c := range w.g.Children(n) {
			cs, ok, err := w.solid(c)
			if err != nil || !ok {
				return nil, ok, err
			}
			if acc == nil {
				acc = cs
			} else {
				acc = w.k.Union(acc, cs)
			}
		}
		return acc, acc != nil, nil

	case graph.ImportData:
		return nil, false, nil
	}
	return nil, false, fmt.Errorf("node %s has unsupported data type %T", n.ID.Short(), n.Data)
}
