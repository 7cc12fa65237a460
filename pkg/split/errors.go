package split

import "errors"

var (
	// ErrNoActiveMesh is returned when the host has no mesh to split.
	ErrNoActiveMesh = errors.New("split: no active mesh")

	// ErrInvalidPartCount marks a part count below one. The driver logs it
	// and returns without error.
	ErrInvalidPartCount = errors.New("split: invalid part count")

	// ErrInvalidGeometry is returned for empty meshes and faces with fewer
	// than three vertices.
	ErrInvalidGeometry = errors.New("split: invalid geometry")

	// ErrCorruptSelection means a selection referenced geometry that does
	// not exist in the mesh it was built for. It indicates a bug.
	ErrCorruptSelection = errors.New("split: corrupt selection")
)
