// Package report summarizes the parts a split produced: per-part counts and
// bounds, whether consecutive parts overlap along the axis that separated
// them, and which parts touch each other.
package report

import (
	"encoding/binary"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/chazu/meshsplit/pkg/kernel"
	"github.com/chazu/meshsplit/pkg/split"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
	"github.com/zeebo/xxh3"
)

// DefaultTolerance is the gap below which two parts count as touching.
const DefaultTolerance = 1e-6

// PartStats describes one part in world space.
type PartStats struct {
	Name        string     `json:"name"`
	Vertices    int        `json:"vertices"`
	Faces       int        `json:"faces"`
	Min         mgl64.Vec3 `json:"min"`
	Max         mgl64.Vec3 `json:"max"`
	AxisMin     float64    `json:"axis_min"`
	AxisMax     float64    `json:"axis_max"`
	CutAxis     string     `json:"cut_axis"`
	Fingerprint string     `json:"fingerprint"`
}

// Overlap is a pair of consecutive parts whose intervals along A's cut
// axis overlap by more than the tolerance.
type Overlap struct {
	A     string  `json:"a"`
	B     string  `json:"b"`
	Axis  string  `json:"axis"`
	Depth float64 `json:"depth"`
}

// Neighbours is a pair of parts whose bounding boxes touch or intersect.
type Neighbours struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Report is the summary of one split result.
type Report struct {
	Axis          string       `json:"axis"`
	Parts         []PartStats  `json:"parts"`
	TotalVertices int          `json:"total_vertices"`
	TotalFaces    int          `json:"total_faces"`
	Overlaps      []Overlap    `json:"overlaps"`
	Neighbours    []Neighbours `json:"neighbours"`
	Fingerprint   string       `json:"fingerprint"`
}

// Option configures Build.
type Option func(*options)

type options struct {
	tolerance float64
	cutAxes   []split.Axis
}

// WithTolerance sets the touching/overlap tolerance. Negative values are
// ignored.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		if tol >= 0 {
			o.tolerance = tol
		}
	}
}

// WithCutAxes records the axis each part was cut along, in part order.
// Parts without an entry were cut along the report axis.
func WithCutAxes(axes ...split.Axis) Option {
	return func(o *options) { o.cutAxes = axes }
}

// Build summarizes parts, which are expected in cut order along axis. A
// part is compared with the next one along its own cut axis, so a
// refinement cut on another axis is not mistaken for an overlap.
func Build(parts []*kernel.Mesh, axis split.Axis, opts ...Option) (*Report, error) {
	o := options{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Report{
		Axis:       axis.String(),
		Parts:      make([]PartStats, 0, len(parts)),
		Overlaps:   []Overlap{},
		Neighbours: []Neighbours{},
	}
	digest := xxh3.New()
	var buf [8]byte
	for i, m := range parts {
		cut := axis
		if i < len(o.cutAxes) {
			cut = o.cutAxes[i]
		}
		if m.IsEmpty() {
			return nil, fmt.Errorf("report: part %q is empty", m.Name)
		}
		bmin, bmax := m.WorldBounds()
		fp := m.Fingerprint()
		binary.LittleEndian.PutUint64(buf[:], fp)
		_, _ = digest.Write(buf[:])

		r.Parts = append(r.Parts, PartStats{
			Name:        m.Name,
			Vertices:    m.VertexCount(),
			Faces:       m.FaceCount(),
			Min:         bmin,
			Max:         bmax,
			AxisMin:     bmin[axis],
			AxisMax:     bmax[axis],
			CutAxis:     cut.String(),
			Fingerprint: fmt.Sprintf("%016x", fp),
		})
		r.TotalVertices += m.VertexCount()
		r.TotalFaces += m.FaceCount()
	}
	r.Fingerprint = fmt.Sprintf("%016x", digest.Sum64())

	for i := 1; i < len(r.Parts); i++ {
		prev, cur := r.Parts[i-1], r.Parts[i]
		cut, _ := split.ParseAxis(prev.CutAxis)
		if depth := prev.Max[cut] - cur.Min[cut]; depth > o.tolerance {
			r.Overlaps = append(r.Overlaps, Overlap{A: prev.Name, B: cur.Name, Axis: prev.CutAxis, Depth: depth})
		}
	}

	neighbours, err := findNeighbours(r.Parts, o.tolerance)
	if err != nil {
		return nil, err
	}
	r.Neighbours = neighbours
	return r, nil
}

// Part returns the stats for the named part.
func (r *Report) Part(name string) (PartStats, bool) {
	return lo.Find(r.Parts, func(p PartStats) bool { return p.Name == name })
}

// NeighboursOf returns the names of the parts touching name, sorted.
func (r *Report) NeighboursOf(name string) []string {
	out := lo.FilterMap(r.Neighbours, func(n Neighbours, _ int) (string, bool) {
		switch name {
		case n.A:
			return n.B, true
		case n.B:
			return n.A, true
		}
		return "", false
	})
	slices.Sort(out)
	return out
}

// WriteText renders the report as an aligned table.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "PART\tVERTICES\tFACES\t%s RANGE\tFINGERPRINT\n", r.Axis)
	for _, p := range r.Parts {
		fmt.Fprintf(tw, "%s\t%d\t%d\t[%.4g, %.4g]\t%s\n", p.Name, p.Vertices, p.Faces, p.AxisMin, p.AxisMax, p.Fingerprint)
	}
	fmt.Fprintf(tw, "total\t%d\t%d\t\t%s\n", r.TotalVertices, r.TotalFaces, r.Fingerprint)
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, o := range r.Overlaps {
		if _, err := fmt.Fprintf(w, "overlap: %s and %s by %.4g along %s\n", o.A, o.B, o.Depth, o.Axis); err != nil {
			return err
		}
	}
	for _, n := range r.Neighbours {
		if _, err := fmt.Fprintf(w, "touching: %s - %s\n", n.A, n.B); err != nil {
			return err
		}
	}
	return nil
}
