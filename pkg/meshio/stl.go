package meshio

import (
	"fmt"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// ReadSTL loads an STL file and welds its triangle soup into an indexed
// mesh.
func ReadSTL(path string) (*kernel.Mesh, error) {
	tris, err := render.LoadSTL(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: read stl: %w", err)
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: %s has no triangles", ErrMalformed, path)
	}
	w := kernel.NewWelder("", 0)
	for _, t := range tris {
		w.Polygon(fromVec(t[0]), fromVec(t[1]), fromVec(t[2]))
	}
	return w.Mesh(), nil
}

// WriteSTL fan-triangulates m and saves it as binary STL in world space.
func WriteSTL(path string, m *kernel.Mesh) error {
	idx := m.Triangles()
	tris := make([]*sdf.Triangle3, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		tris = append(tris, &sdf.Triangle3{
			toVec(m.WorldVertex(int(idx[i]))),
			toVec(m.WorldVertex(int(idx[i+1]))),
			toVec(m.WorldVertex(int(idx[i+2]))),
		})
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("meshio: write stl: %w", err)
	}
	return nil
}

func fromVec(v v3.Vec) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func toVec(v mgl64.Vec3) v3.Vec {
	return v3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
