package scene

import (
	"sort"

	"github.com/milk9111/pathedit/model"
)

// Positions is an exact geometry snapshot of a set of items.
type Positions map[model.Handle]Geometry

// Snapshot captures the current geometry of hs. Unknown handles are skipped.
func (s *Scene) Snapshot(hs ...model.Handle) Positions {
	out := make(Positions, len(hs))
	for _, h := range hs {
		if it, ok := s.items[h]; ok {
			out[h] = it.Geometry
		}
	}
	return out
}

// Restore puts every item in p back to its captured geometry and writes
// the result to the document.
func (p Positions) Restore(s *Scene) {
	for _, h := range p.Handles() {
		s.SetGeometry(h, p[h])
	}
}

// Handles returns the snapshot's handles in ascending order.
func (p Positions) Handles() []model.Handle {
	out := make([]model.Handle, 0, len(p))
	for h := range p {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal reports whether both snapshots hold the same items at the same
// geometry.
func (p Positions) Equal(o Positions) bool {
	if len(p) != len(o) {
		return false
	}
	for h, g := range p {
		if og, ok := o[h]; !ok || og != g {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (p Positions) Clone() Positions {
	out := make(Positions, len(p))
	for h, g := range p {
		out[h] = g
	}
	return out
}
