package report

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/dhconnelly/rtreego"
)

// boxEntry is a part's bounding box grown by the tolerance.
type boxEntry struct {
	index int
	rect  rtreego.Rect
}

func (b *boxEntry) Bounds() rtreego.Rect { return b.rect }

// findNeighbours indexes every part's box in an R-tree and reports each
// pair whose grown boxes intersect, ordered by part position.
func findNeighbours(parts []PartStats, tol float64) ([]Neighbours, error) {
	// rtreego treats touching boxes as disjoint, so always grow a little.
	grow := max(tol, DefaultTolerance) / 2

	entries := make([]*boxEntry, len(parts))
	objs := make([]rtreego.Spatial, len(parts))
	for i, p := range parts {
		lo, hi := make(rtreego.Point, 3), make(rtreego.Point, 3)
		for k := 0; k < 3; k++ {
			lo[k] = p.Min[k] - grow
			hi[k] = p.Max[k] + grow
		}
		rect, err := rtreego.NewRectFromPoints(lo, hi)
		if err != nil {
			return nil, fmt.Errorf("report: bounds of %q: %w", p.Name, err)
		}
		entries[i] = &boxEntry{index: i, rect: rect}
		objs[i] = entries[i]
	}
	tree := rtreego.NewTree(3, 25, 50, objs...)

	var pairs [][2]int
	for _, e := range entries {
		for _, hit := range tree.SearchIntersect(e.rect) {
			if other := hit.(*boxEntry); other.index > e.index {
				pairs = append(pairs, [2]int{e.index, other.index})
			}
		}
	}
	slices.SortFunc(pairs, func(a, b [2]int) int {
		return cmp.Or(cmp.Compare(a[0], b[0]), cmp.Compare(a[1], b[1]))
	})

	out := make([]Neighbours, 0, len(pairs))
	for _, pr := range pairs {
		out = append(out, Neighbours{A: parts[pr[0]].Name, B: parts[pr[1]].Name})
	}
	return out, nil
}
