package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chazu/meshsplit/pkg/kernel"
)

// ReadOBJ parses vertices and faces from Wavefront OBJ text. Texture and
// normal references in faces (v/vt/vn) are ignored, negative indices are
// resolved relative to the vertices read so far, and the first "o" name
// becomes the mesh name. Other statements are skipped.
func ReadOBJ(r io.Reader) (*kernel.Mesh, error) {
	m := kernel.NewMesh("")
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: vertex needs 3 coordinates", ErrMalformed, lineNo)
			}
			for _, f := range fields[1:4] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
				}
				m.Vertices = append(m.Vertices, v)
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 vertices", ErrMalformed, lineNo)
			}
			face := make(kernel.Face, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := objIndex(ref, m.VertexCount())
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
				}
				face = append(face, idx)
			}
			m.Faces = append(m.Faces, face)
		case "o":
			if m.Name == "" && len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("meshio: read obj: %w", err)
	}
	return m, nil
}

// objIndex converts a face vertex reference to a 0-based index.
func objIndex(ref string, count int) (uint32, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", ref)
	}
	switch {
	case n > 0 && n <= count:
		return uint32(n - 1), nil
	case n < 0 && -n <= count:
		return uint32(count + n), nil
	}
	return 0, fmt.Errorf("vertex reference %d out of range (have %d)", n, count)
}

// ReadOBJFile reads an OBJ file from disk.
func ReadOBJFile(path string) (*kernel.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("meshio: %w", err)
	}
	defer f.Close()
	return ReadOBJ(f)
}

// WriteOBJ writes m as OBJ text with world-space positions.
func WriteOBJ(w io.Writer, m *kernel.Mesh) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for i := 0; i < m.VertexCount(); i++ {
		v := m.WorldVertex(i)
		bw.WriteString("v ")
		bw.WriteString(strconv.FormatFloat(v[0], 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v[1], 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(v[2], 'g', -1, 64))
		bw.WriteByte('\n')
	}
	for _, f := range m.Faces {
		bw.WriteByte('f')
		for _, idx := range f {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatUint(uint64(idx)+1, 10))
		}
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("meshio: write obj: %w", err)
	}
	return nil
}

// WriteOBJFile writes m to path as OBJ.
func WriteOBJFile(path string, m *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("meshio: %w", err)
	}
	if err := WriteOBJ(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
