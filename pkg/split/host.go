package split

import "github.com/chazu/meshsplit/pkg/kernel"

// Host is the application owning the mesh being split. It exposes the
// minimal editing capabilities the driver and the extraction backends
// need.
type Host interface {
	// Mode returns the current interaction mode.
	Mode() Mode
	// SetMode switches the interaction mode.
	SetMode(Mode) error

	// ActiveMesh returns the live mesh of the active object. Changes made
	// to it are changes to the host's geometry.
	ActiveMesh() (*kernel.Mesh, error)

	// DeselectAll clears every face and vertex selection flag.
	DeselectAll()
	// Select sets the selection flags of the active object to sel.
	Select(sel Selection) error
	// SeparateSelected moves the selected faces of the active object into
	// a new object and returns its mesh. Requires edit mode.
	SeparateSelected() (*kernel.Mesh, error)

	// AddPart adds a mesh built outside the host as a new object.
	AddPart(part *kernel.Mesh) error
}
