package kernel

import "github.com/go-gl/mathgl/mgl64"

// Grid returns a flat quad grid in the XY plane with cols x rows faces,
// spanning [0,width] x [0,depth]. Vertices are laid out row by row.
func Grid(name string, cols, rows int, width, depth float64) *Mesh {
	m := NewMesh(name)
	if cols < 1 || rows < 1 {
		return m
	}
	for r := 0; r <= rows; r++ {
		for c := 0; c <= cols; c++ {
			m.AddVertex(mgl64.Vec3{
				width * float64(c) / float64(cols),
				depth * float64(r) / float64(rows),
				0,
			})
		}
	}
	stride := uint32(cols + 1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := uint32(r)*stride + uint32(c)
			m.AddFace(i, i+1, i+stride+1, i+stride)
		}
	}
	return m
}
