package graph

import "fmt"

// ValidationError describes a single structural problem.
type ValidationError struct {
	NodeID  NodeID // which node has the problem (zero if graph-level)
	Message string
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return e.Message
	}
	return fmt.Sprintf("node %s: %s", e.NodeID.Short(), e.Message)
}

// Validate runs structural checks on the graph and returns every problem
// found. An empty slice means the graph can be tessellated. The graph is
// never modified.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateData(g)...)
	return errs
}

// validateReferences checks that every child ID resolves to a node.
func validateReferences(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Nodes {
		for _, cid := range n.Children {
			if g.Nodes[cid] == nil {
				errs = append(errs, ValidationError{
					NodeID:  n.ID,
					Message: fmt.Sprintf("child %s does not exist", cid.Short()),
				})
			}
		}
	}
	return errs
}

// validateDAG reports each node that can reach itself.
func validateDAG(g *Graph) []ValidationError {
	const (
		white = iota
		grey
		black
	)
	color := make(map[NodeID]int, len(g.Nodes))
	var errs []ValidationError

	var visit func(id NodeID)
	visit = func(id NodeID) {
		color[id] = grey
		n := g.Nodes[id]
		if n != nil {
			for _, cid := range n.Children {
				switch color[cid] {
				case grey:
					errs = append(errs, ValidationError{NodeID: id, Message: fmt.Sprintf("cycle through %s", cid.Short())})
				case white:
					if g.Nodes[cid] != nil {
						visit(cid)
					}
				}
			}
		}
		color[id] = black
	}
	for id := range g.Nodes {
		if color[id] == white {
			visit(id)
		}
	}
	return errs
}

// validateRoots checks that roots exist and carry names, since each root
// becomes a named mesh.
func validateRoots(g *Graph) []ValidationError {
	var errs []ValidationError
	seen := make(map[NodeID]bool, len(g.Roots))
	for _, id := range g.Roots {
		n := g.Nodes[id]
		if n == nil {
			errs = append(errs, ValidationError{Message: fmt.Sprintf("root %s does not exist", id.Short())})
			continue
		}
		if seen[id] {
			errs = append(errs, ValidationError{NodeID: id, Message: "registered as root twice"})
		}
		seen[id] = true
		if n.Name == "" {
			errs = append(errs, ValidationError{NodeID: id, Message: "root has no name"})
		}
	}
	return errs
}

// validateData checks kind-specific payloads.
func validateData(g *Graph) []ValidationError {
	var errs []ValidationError
	bad := func(n *Node, format string, args ...any) {
		errs = append(errs, ValidationError{NodeID: n.ID, Message: fmt.Sprintf(format, args...)})
	}
	for _, n := range g.Nodes {
		switch d := n.Data.(type) {
		case PrimitiveData:
			switch d.Prim {
			case PrimBox:
				if d.Size[0] <= 0 || d.Size[1] <= 0 || d.Size[2] <= 0 {
					bad(n, "box dimensions must be positive, got %v", d.Size)
				}
			case PrimCylinder:
				if d.Height <= 0 || d.Radius <= 0 {
					bad(n, "cylinder height and radius must be positive")
				}
			case PrimSphere:
				if d.Radius <= 0 {
					bad(n, "sphere radius must be positive")
				}
			}
		case TransformData:
			if len(n.Children) != 1 {
				bad(n, "transform needs exactly one child, has %d", len(n.Children))
			}
		case GroupData:
			if len(n.Children) == 0 {
				bad(n, "group is empty")
			}
		case ImportData:
			if d.Path == "" {
				bad(n, "import has no path")
			}
		case nil:
			bad(n, "%s node has no data", n.Kind)
		}
	}
	return errs
}
