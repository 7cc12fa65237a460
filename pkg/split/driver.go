package split

import (
	"errors"
	"fmt"
	"time"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/samber/lo"
)

// State is the driver's position in a run.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateExtracting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateExtracting:
		return "extracting"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Params are the user-facing split settings.
type Params struct {
	Parts  int
	Policy Policy
	Axis   Axis
}

// Iteration records one cut.
type Iteration struct {
	Index             int    `json:"index"`
	Axis              string `json:"axis"`
	Target            int    `json:"target"`
	SelectedFaces     int    `json:"selected_faces"`
	SelectedVertices  int    `json:"selected_vertices"`
	Skipped           bool   `json:"skipped"`
	Part              string `json:"part,omitempty"`
	RemainingVertices int    `json:"remaining_vertices"`
	RemainingFaces    int    `json:"remaining_faces"`
}

// Result summarizes a run. Parts counts the pieces the mesh ended up in,
// including the remainder; it is zero when the run was a no-op.
type Result struct {
	State      State         `json:"-"`
	Parts      int           `json:"parts"`
	Extracted  []string      `json:"extracted"`
	Remainder  string        `json:"remainder"`
	Iterations []Iteration   `json:"iterations"`
	Elapsed    time.Duration `json:"elapsed"`
}

// CutAxis returns the axis the named extracted part was cut along.
func (r *Result) CutAxis(part string) (Axis, bool) {
	it, ok := lo.Find(r.Iterations, func(it Iteration) bool { return it.Part == part })
	if !ok {
		return AxisX, false
	}
	axis, err := ParseAxis(it.Axis)
	return axis, err == nil
}

// Driver runs the split loop against a Host.
type Driver struct {
	params    Params
	opts      driverOptions
	extractor Extractor
	state     State
}

// NewDriver returns a driver for the given settings.
func NewDriver(params Params, opts ...Option) *Driver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ex := o.extractor
	if ex == nil {
		ex = NewExtractor(o.strategy)
	}
	return &Driver{params: params, opts: o, extractor: ex}
}

// State returns the driver's current state.
func (d *Driver) State() State {
	return d.state
}

func (d *Driver) transition(s State) {
	d.opts.logger.Debug("split state", "from", d.state.String(), "to", s.String())
	d.state = s
}

// Run splits the host's active mesh. Preconditions are checked before
// anything is modified. A failure in the middle of the loop returns the
// error together with a result describing the parts already handed to
// the host, which remain valid.
func (d *Driver) Run(host Host) (*Result, error) {
	start := time.Now()
	log := d.opts.logger
	d.state = StateIdle
	res := &Result{State: StateIdle}

	if d.params.Parts < 1 {
		log.Warn("split skipped", "parts", d.params.Parts, "error", ErrInvalidPartCount)
		d.transition(StateDone)
		res.State = StateDone
		return res, nil
	}
	if d.params.Parts < 2 {
		log.Info("split skipped", "parts", d.params.Parts, "reason", "single part")
		d.transition(StateDone)
		res.State = StateDone
		return res, nil
	}

	mesh, err := host.ActiveMesh()
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrNoActiveMesh, err)
	}
	if mesh == nil {
		return res, ErrNoActiveMesh
	}
	if err := mesh.Validate(); err != nil {
		return res, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	prevMode := host.Mode()
	if prevMode != ModeObject {
		if err := host.SetMode(ModeObject); err != nil {
			return res, fmt.Errorf("split: enter object mode: %w", err)
		}
	}
	defer func() {
		if host.Mode() == prevMode {
			return
		}
		if err := host.SetMode(prevMode); err != nil {
			log.Error("restore mode failed", "mode", prevMode.String(), "error", err)
		}
	}()
	host.DeselectAll()

	perPart := Target(mesh.VertexCount(), d.params.Parts)
	log.Debug("split started",
		"object", mesh.Name,
		"parts", d.params.Parts,
		"policy", d.params.Policy.String(),
		"axis", d.params.Axis.String(),
		"strategy", d.opts.strategy.String(),
		"vertices", mesh.VertexCount(),
		"faces", mesh.FaceCount(),
		"vertices_per_part", perPart,
	)

	for i := 0; i < d.params.Parts-1; i++ {
		mesh, err = d.iterate(host, mesh, res, i, d.params.Parts-i, d.params.Axis)
		if err != nil {
			return d.finish(res, mesh, start), err
		}
	}

	if d.opts.refineAxis != nil && mesh.VertexCount() >= perPart {
		log.Debug("refining remainder", "axis", d.opts.refineAxis.String(), "vertices", mesh.VertexCount())
		mesh, err = d.iterate(host, mesh, res, len(res.Iterations), 2, *d.opts.refineAxis)
		if err != nil {
			return d.finish(res, mesh, start), err
		}
	}

	d.finish(res, mesh, start)
	log.Info("split finished",
		"object", res.Remainder,
		"parts", res.Parts,
		"skipped", len(res.Iterations)-len(res.Extracted),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

func (d *Driver) finish(res *Result, remainder *kernel.Mesh, start time.Time) *Result {
	d.transition(StateDone)
	res.State = StateDone
	if remainder != nil {
		res.Remainder = remainder.Name
		res.Parts = len(res.Extracted)
		if remainder.FaceCount() > 0 {
			res.Parts++
		}
	}
	res.Elapsed = time.Since(start)
	return res
}

// iterate performs one sort, select and extract cycle and returns the mesh
// the next cycle must work on.
func (d *Driver) iterate(host Host, mesh *kernel.Mesh, res *Result, index, remainingParts int, axis Axis) (*kernel.Mesh, error) {
	log := d.opts.logger
	d.transition(StateSelecting)

	sel, target, err := d.selectPart(mesh, axis, remainingParts)
	if err != nil {
		return mesh, fmt.Errorf("split: iteration %d: %w", index, err)
	}
	it := Iteration{
		Index:            index,
		Axis:             axis.String(),
		Target:           target,
		SelectedFaces:    len(sel.Faces),
		SelectedVertices: len(sel.Vertices),
	}

	// A selection covering every remaining face would leave an empty
	// remainder behind.
	if sel.Empty() || len(sel.Faces) == mesh.FaceCount() {
		it.Skipped = true
		it.RemainingVertices = mesh.VertexCount()
		it.RemainingFaces = mesh.FaceCount()
		res.Iterations = append(res.Iterations, it)
		log.Info("split iteration skipped",
			"iteration", index,
			"target", target,
			"selected_faces", len(sel.Faces),
			"remaining_faces", mesh.FaceCount(),
		)
		return mesh, nil
	}

	d.transition(StateExtracting)
	part, remainder, err := d.extractor.Extract(host, mesh, sel)
	if part != nil {
		res.Extracted = append(res.Extracted, part.Name)
		it.Part = part.Name
	}
	if remainder == nil {
		remainder = mesh
	}
	it.RemainingVertices = remainder.VertexCount()
	it.RemainingFaces = remainder.FaceCount()
	res.Iterations = append(res.Iterations, it)
	if err != nil {
		if errors.Is(err, ErrCorruptSelection) {
			log.Error("split selection corrupt", "iteration", index, "error", err)
		}
		return remainder, fmt.Errorf("split: iteration %d: %w", index, err)
	}

	log.Debug("split iteration",
		"iteration", index,
		"axis", axis.String(),
		"target", target,
		"selected_faces", it.SelectedFaces,
		"selected_vertices", it.SelectedVertices,
		"part", it.Part,
		"remaining_vertices", it.RemainingVertices,
	)
	return remainder, nil
}

func (d *Driver) selectPart(mesh *kernel.Mesh, axis Axis, remainingParts int) (Selection, int, error) {
	if d.params.Policy == PolicyFaceCount {
		sorted, err := SortFacesByCentroidAxis(mesh, axis)
		if err != nil {
			return Selection{}, 0, err
		}
		total := mesh.FaceCount()
		if d.opts.budget == BudgetVertices {
			total = mesh.VertexCount()
		}
		target := Target(total, remainingParts)
		return SelectByFaceCount(mesh, sorted, target, d.opts.budget), target, nil
	}

	sorted := SortVerticesByAxis(mesh, axis)
	target := Target(mesh.VertexCount(), remainingParts)
	return SelectByVertexCount(mesh, sorted, target), target, nil
}
