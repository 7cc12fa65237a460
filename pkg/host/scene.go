// Package host is an in-memory scene standing in for the 3D application
// that owns meshes during a split. It tracks named objects, the active
// object, per-element selection flags and the interaction mode, and
// implements split.Host.
package host

import (
	"errors"
	"fmt"
	"regexp"
	"slices"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/chazu/meshsplit/pkg/logging"
	"github.com/chazu/meshsplit/pkg/split"
	"github.com/samber/lo"
)

var (
	ErrNotEditMode    = errors.New("host: operation requires edit mode")
	ErrNoSelection    = errors.New("host: nothing selected")
	ErrObjectNotFound = errors.New("host: object not found")
	ErrNoActiveObject = errors.New("host: no active object")
)

// Object is a named mesh in the scene with its selection state.
type Object struct {
	Name             string
	Mesh             *kernel.Mesh
	SelectedFaces    []bool
	SelectedVertices []bool
}

// syncFlags resizes the selection flags to the mesh, clearing them when
// the geometry changed size underneath.
func (o *Object) syncFlags() {
	if len(o.SelectedFaces) != o.Mesh.FaceCount() {
		o.SelectedFaces = make([]bool, o.Mesh.FaceCount())
	}
	if len(o.SelectedVertices) != o.Mesh.VertexCount() {
		o.SelectedVertices = make([]bool, o.Mesh.VertexCount())
	}
}

// Scene holds objects in insertion order.
type Scene struct {
	objects []*Object
	byName  map[string]*Object
	active  *Object
	mode    split.Mode
	log     logging.Logger
}

var _ split.Host = (*Scene)(nil)

// NewScene returns an empty scene in object mode.
func NewScene(log logging.Logger) *Scene {
	if log == nil {
		log = logging.NewNop()
	}
	return &Scene{
		byName: make(map[string]*Object),
		log:    log,
	}
}

var numberSuffix = regexp.MustCompile(`\.\d{3,}$`)

// uniqueName returns name if free, otherwise the first free
// "<base>.NNN" where base is name without a numeric suffix.
func (s *Scene) uniqueName(name string) string {
	if name == "" {
		name = "Mesh"
	}
	if _, taken := s.byName[name]; !taken {
		return name
	}
	base := numberSuffix.ReplaceAllString(name, "")
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", base, i)
		if _, taken := s.byName[candidate]; !taken {
			return candidate
		}
	}
}

// Add inserts a mesh as a new object, renaming it if its name is taken.
// The first object added becomes active.
func (s *Scene) Add(m *kernel.Mesh) *Object {
	m.Name = s.uniqueName(m.Name)
	obj := &Object{Name: m.Name, Mesh: m}
	obj.syncFlags()
	s.objects = append(s.objects, obj)
	s.byName[obj.Name] = obj
	if s.active == nil {
		s.active = obj
	}
	return obj
}

// Object looks up an object by name.
func (s *Scene) Object(name string) (*Object, error) {
	obj, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, name)
	}
	return obj, nil
}

// Objects returns all objects in insertion order.
func (s *Scene) Objects() []*Object {
	return slices.Clone(s.objects)
}

// Meshes returns the meshes of all objects in insertion order.
func (s *Scene) Meshes() []*kernel.Mesh {
	return lo.Map(s.objects, func(o *Object, _ int) *kernel.Mesh {
		return o.Mesh
	})
}

// SetActive makes the named object active.
func (s *Scene) SetActive(name string) error {
	obj, err := s.Object(name)
	if err != nil {
		return err
	}
	s.active = obj
	return nil
}

// Active returns the active object, or nil.
func (s *Scene) Active() *Object {
	return s.active
}

// Remove deletes the named object. Removing the active object leaves the
// scene without one.
func (s *Scene) Remove(name string) error {
	obj, err := s.Object(name)
	if err != nil {
		return err
	}
	delete(s.byName, name)
	s.objects = lo.Without(s.objects, obj)
	if s.active == obj {
		s.active = nil
	}
	return nil
}

// Mode returns the interaction mode.
func (s *Scene) Mode() split.Mode {
	return s.mode
}

// SetMode switches the interaction mode. Edit mode needs an active object.
func (s *Scene) SetMode(m split.Mode) error {
	if m == split.ModeEdit && s.active == nil {
		return ErrNoActiveObject
	}
	if m != s.mode {
		s.log.Debug("mode set", "from", s.mode.String(), "to", m.String())
	}
	s.mode = m
	return nil
}

// ActiveMesh returns the live mesh of the active object.
func (s *Scene) ActiveMesh() (*kernel.Mesh, error) {
	if s.active == nil {
		return nil, ErrNoActiveObject
	}
	return s.active.Mesh, nil
}

// DeselectAll clears the selection flags of the active object.
func (s *Scene) DeselectAll() {
	if s.active == nil {
		return
	}
	s.active.SelectedFaces = make([]bool, s.active.Mesh.FaceCount())
	s.active.SelectedVertices = make([]bool, s.active.Mesh.VertexCount())
}

// Select replaces the selection flags of the active object with sel.
func (s *Scene) Select(sel split.Selection) error {
	if s.active == nil {
		return ErrNoActiveObject
	}
	s.DeselectAll()
	obj := s.active
	for _, fi := range sel.Faces {
		if fi < 0 || fi >= len(obj.SelectedFaces) {
			return fmt.Errorf("select face %d of %d: %w", fi, len(obj.SelectedFaces), split.ErrCorruptSelection)
		}
		obj.SelectedFaces[fi] = true
	}
	for _, vi := range sel.Vertices {
		if int(vi) >= len(obj.SelectedVertices) {
			return fmt.Errorf("select vertex %d of %d: %w", vi, len(obj.SelectedVertices), split.ErrCorruptSelection)
		}
		obj.SelectedVertices[vi] = true
	}
	return nil
}

// SelectedFaces returns the indices of the selected faces of the active
// object.
func (s *Scene) SelectedFaces() []int {
	if s.active == nil {
		return nil
	}
	s.active.syncFlags()
	var out []int
	for i, sel := range s.active.SelectedFaces {
		if sel {
			out = append(out, i)
		}
	}
	return out
}

// SeparateSelected moves the selected faces of the active object into a
// new object. The active object keeps the rest and stays active.
func (s *Scene) SeparateSelected() (*kernel.Mesh, error) {
	if s.mode != split.ModeEdit {
		return nil, ErrNotEditMode
	}
	if s.active == nil {
		return nil, ErrNoActiveObject
	}
	faces := s.SelectedFaces()
	if len(faces) == 0 {
		return nil, ErrNoSelection
	}

	src := s.active.Mesh
	sel := split.NewSelection(src, faces)
	part, err := split.ExtractFaces(src, sel)
	if err != nil {
		return nil, err
	}
	if err := split.RemoveFaces(src, sel); err != nil {
		return nil, err
	}
	s.DeselectAll()

	obj := s.Add(part)
	s.log.Debug("separated selection", "from", src.Name, "to", obj.Name, "faces", part.FaceCount())
	return part, nil
}

// AddPart adds a mesh extracted outside the scene as a new object. The
// active object is unchanged.
func (s *Scene) AddPart(part *kernel.Mesh) error {
	if part == nil || part.IsEmpty() {
		return fmt.Errorf("host: refusing to add empty part")
	}
	obj := s.Add(part)
	s.log.Debug("part added", "name", obj.Name, "vertices", part.VertexCount(), "faces", part.FaceCount())
	return nil
}
