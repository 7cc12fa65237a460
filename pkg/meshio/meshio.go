// Package meshio reads and writes meshes as Wavefront OBJ and STL files.
//
// Readers return meshes in local space with an identity transform.
// Writers bake the mesh transform into the written positions, so a split
// part exported on its own lands where it sat in the source scene.
package meshio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chazu/meshsplit/pkg/kernel"
)

// Format is a supported file format.
type Format string

const (
	FormatOBJ Format = "obj"
	FormatSTL Format = "stl"
)

var (
	ErrUnsupportedFormat = errors.New("meshio: unsupported format")
	ErrMalformed         = errors.New("meshio: malformed file")
)

// ParseFormat accepts a format name or extension, with or without a dot.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "obj":
		return FormatOBJ, nil
	case "stl":
		return FormatSTL, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatOf returns the format implied by a path's extension.
func FormatOf(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Load reads a mesh, choosing the format from the extension. The mesh is
// named after the file.
func Load(path string) (*kernel.Mesh, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	var m *kernel.Mesh
	switch format {
	case FormatOBJ:
		m, err = ReadOBJFile(path)
	case FormatSTL:
		m, err = ReadSTL(path)
	}
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// Save writes a mesh, choosing the format from the extension.
func Save(path string, m *kernel.Mesh) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatOBJ:
		return WriteOBJFile(path, m)
	case FormatSTL:
		return WriteSTL(path, m)
	}
	return nil
}
